package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"proprime.com/site-backend/internal/store"
)

// Handlers for the site content collaborators (pages, systems, social
// links). Plain validation + persistence; the chat core is not involved.

func (h *APIHandler) GetPageHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	page, err := h.contentStore.GetPublishedPage(name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Page not found", http.StatusNotFound)
			return
		}
		log.Printf("Error getting page %s: %v", name, err)
		http.Error(w, "Failed to get page", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(page)
}

func (h *APIHandler) CreatePageHandler(w http.ResponseWriter, r *http.Request) {
	var page store.Page
	if err := json.NewDecoder(r.Body).Decode(&page); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if page.Name == "" || page.Title == "" || page.Content == "" {
		http.Error(w, "Name, title and content are required", http.StatusBadRequest)
		return
	}

	if err := h.contentStore.CreatePage(&page); err != nil {
		log.Printf("Error creating page %s: %v", page.Name, err)
		http.Error(w, "Failed to create page", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(page)
}

func (h *APIHandler) UpdatePageHandler(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")

	var upd store.PageUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.contentStore.UpdatePage(pageID, upd); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Page not found", http.StatusNotFound)
			return
		}
		log.Printf("Error updating page %s: %v", pageID, err)
		http.Error(w, "Failed to update page", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "Page updated"})
}

func (h *APIHandler) ListSystemsHandler(w http.ResponseWriter, r *http.Request) {
	systems, err := h.contentStore.ListActiveSystems()
	if err != nil {
		log.Printf("Error listing systems: %v", err)
		http.Error(w, "Failed to list systems", http.StatusInternalServerError)
		return
	}
	if systems == nil {
		systems = []store.System{}
	}
	json.NewEncoder(w).Encode(systems)
}

func (h *APIHandler) GetSystemHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	system, err := h.contentStore.GetActiveSystemBySlug(slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "System not found", http.StatusNotFound)
			return
		}
		log.Printf("Error getting system %s: %v", slug, err)
		http.Error(w, "Failed to get system", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(system)
}

func (h *APIHandler) CreateSystemHandler(w http.ResponseWriter, r *http.Request) {
	var system store.System
	if err := json.NewDecoder(r.Body).Decode(&system); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if system.Name == "" || system.Slug == "" || system.Title == "" || system.Description == "" {
		http.Error(w, "Name, slug, title and description are required", http.StatusBadRequest)
		return
	}
	if system.LearnMoreURL == "" {
		system.LearnMoreURL = "#"
	}

	if err := h.contentStore.CreateSystem(&system); err != nil {
		log.Printf("Error creating system %s: %v", system.Slug, err)
		http.Error(w, "Failed to create system", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(system)
}

func (h *APIHandler) UpdateSystemHandler(w http.ResponseWriter, r *http.Request) {
	systemID := chi.URLParam(r, "systemID")

	var upd store.SystemUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.contentStore.UpdateSystem(systemID, upd); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "System not found", http.StatusNotFound)
			return
		}
		log.Printf("Error updating system %s: %v", systemID, err)
		http.Error(w, "Failed to update system", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "System updated"})
}

func (h *APIHandler) DeleteSystemHandler(w http.ResponseWriter, r *http.Request) {
	systemID := chi.URLParam(r, "systemID")

	if err := h.contentStore.DeleteSystem(systemID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "System not found", http.StatusNotFound)
			return
		}
		log.Printf("Error deleting system %s: %v", systemID, err)
		http.Error(w, "Failed to delete system", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) ListSocialLinksHandler(w http.ResponseWriter, r *http.Request) {
	links, err := h.contentStore.ListActiveSocialLinks()
	if err != nil {
		log.Printf("Error listing social links: %v", err)
		http.Error(w, "Failed to list social links", http.StatusInternalServerError)
		return
	}
	if links == nil {
		links = []store.SocialLink{}
	}
	json.NewEncoder(w).Encode(links)
}

func (h *APIHandler) CreateSocialLinkHandler(w http.ResponseWriter, r *http.Request) {
	var link store.SocialLink
	if err := json.NewDecoder(r.Body).Decode(&link); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if link.Platform == "" || link.URL == "" {
		http.Error(w, "Platform and url are required", http.StatusBadRequest)
		return
	}

	if err := h.contentStore.CreateSocialLink(&link); err != nil {
		log.Printf("Error creating social link %s: %v", link.Platform, err)
		http.Error(w, "Failed to create social link", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(link)
}

func (h *APIHandler) UpdateSocialLinkHandler(w http.ResponseWriter, r *http.Request) {
	linkID := chi.URLParam(r, "linkID")

	var upd store.SocialLinkUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.contentStore.UpdateSocialLink(linkID, upd); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Social link not found", http.StatusNotFound)
			return
		}
		log.Printf("Error updating social link %s: %v", linkID, err)
		http.Error(w, "Failed to update social link", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "Social link updated"})
}

func (h *APIHandler) DeleteSocialLinkHandler(w http.ResponseWriter, r *http.Request) {
	linkID := chi.URLParam(r, "linkID")

	if err := h.contentStore.DeleteSocialLink(linkID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Social link not found", http.StatusNotFound)
			return
		}
		log.Printf("Error deleting social link %s: %v", linkID, err)
		http.Error(w, "Failed to delete social link", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
