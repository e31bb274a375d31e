package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"proprime.com/site-backend/internal/auth"
	"proprime.com/site-backend/internal/core"
	"proprime.com/site-backend/internal/store"
)

// answerPreviewLimit bounds the answer text in list views. The stored value
// is never truncated; this is presentation only.
const answerPreviewLimit = 100

type APIHandler struct {
	chatService  *core.ChatService
	contentStore *store.SQLiteStore
	authManager  *auth.Manager
}

func NewAPIHandler(cs *core.ChatService, contentStore *store.SQLiteStore, am *auth.Manager) *APIHandler {
	return &APIHandler{chatService: cs, contentStore: contentStore, authManager: am}
}

func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		principal, err := h.authManager.ValidateToken(tokenString)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), "principal", principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if !h.authManager.CheckCredentials(req.Username, req.Password) {
		http.Error(w, "Incorrect username or password", http.StatusUnauthorized)
		return
	}

	token, err := h.authManager.GenerateToken(req.Username)
	if err != nil {
		log.Printf("Error generating token for %s: %v", req.Username, err)
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

type QueryRequest struct {
	Question  string  `json:"question"`
	SessionID *string `json:"session_id,omitempty"`
	PageURL   *string `json:"page_url,omitempty"`
}

func (h *APIHandler) QueryHandler(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.chatService.Answer(req.Question, req.SessionID, req.PageURL)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("Error answering query %q: %v", req.Question, err)
		http.Error(w, "Failed to process query", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(result)
}

type CreateScriptRequest struct {
	QuestionPattern  string `json:"question_pattern"`
	Answer           string `json:"answer"`
	Category         string `json:"category"`
	PageContext      string `json:"page_context"`
	IsLearned        bool   `json:"is_learned"`
	RequiresApproval bool   `json:"requires_approval"`
}

func (h *APIHandler) CreateScriptHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateScriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	id, err := h.chatService.CreateScript(store.ChatScript{
		QuestionPattern:  req.QuestionPattern,
		Answer:           req.Answer,
		Category:         req.Category,
		PageContext:      req.PageContext,
		IsLearned:        req.IsLearned,
		RequiresApproval: req.RequiresApproval,
	})
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidInput):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, store.ErrDuplicatePattern):
			http.Error(w, "Question pattern already exists", http.StatusConflict)
		default:
			log.Printf("Error creating script: %v", err)
			http.Error(w, "Failed to create script", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"id": id, "message": "Script added successfully"})
}

type ScriptListItem struct {
	ID               string  `json:"id"`
	Question         string  `json:"question"`
	Answer           string  `json:"answer"`
	Category         string  `json:"category"`
	UsageCount       int64   `json:"usage_count"`
	IsLearned        bool    `json:"is_learned"`
	RequiresApproval bool    `json:"requires_approval"`
	Confidence       float64 `json:"confidence"`
}

func (h *APIHandler) ListScriptsHandler(w http.ResponseWriter, r *http.Request) {
	var category *string
	if c := r.URL.Query().Get("category"); c != "" {
		category = &c
	}
	var isLearned *bool
	if l := r.URL.Query().Get("is_learned"); l != "" {
		v, err := strconv.ParseBool(l)
		if err != nil {
			http.Error(w, "Invalid is_learned value", http.StatusBadRequest)
			return
		}
		isLearned = &v
	}

	scripts, err := h.chatService.ListScripts(category, isLearned)
	if err != nil {
		log.Printf("Error listing scripts: %v", err)
		http.Error(w, "Failed to list scripts", http.StatusInternalServerError)
		return
	}

	items := make([]ScriptListItem, 0, len(scripts))
	for _, s := range scripts {
		items = append(items, ScriptListItem{
			ID:               s.ID,
			Question:         s.QuestionPattern,
			Answer:           truncateAnswer(s.Answer),
			Category:         s.Category,
			UsageCount:       s.UsageCount,
			IsLearned:        s.IsLearned,
			RequiresApproval: s.RequiresApproval,
			Confidence:       s.ConfidenceScore,
		})
	}
	json.NewEncoder(w).Encode(items)
}

func truncateAnswer(answer string) string {
	runes := []rune(answer)
	if len(runes) <= answerPreviewLimit {
		return answer
	}
	return string(runes[:answerPreviewLimit]) + "..."
}

func (h *APIHandler) UpdateScriptHandler(w http.ResponseWriter, r *http.Request) {
	scriptID := chi.URLParam(r, "scriptID")

	var upd store.ScriptUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.chatService.UpdateScript(scriptID, upd); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Script not found", http.StatusNotFound)
			return
		}
		log.Printf("Error updating script %s: %v", scriptID, err)
		http.Error(w, "Failed to update script", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "Script updated"})
}

func (h *APIHandler) DeleteScriptHandler(w http.ResponseWriter, r *http.Request) {
	scriptID := chi.URLParam(r, "scriptID")

	if err := h.chatService.DeleteScript(scriptID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Script not found", http.StatusNotFound)
			return
		}
		log.Printf("Error deleting script %s: %v", scriptID, err)
		http.Error(w, "Failed to delete script", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) ListUnansweredHandler(w http.ResponseWriter, r *http.Request) {
	resolved := false
	if v := r.URL.Query().Get("resolved"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "Invalid resolved value", http.StatusBadRequest)
			return
		}
		resolved = parsed
	}

	questions, err := h.chatService.ListUnanswered(resolved)
	if err != nil {
		log.Printf("Error listing unanswered questions: %v", err)
		http.Error(w, "Failed to list unanswered questions", http.StatusInternalServerError)
		return
	}
	if questions == nil {
		questions = []store.UnansweredQuestion{}
	}
	json.NewEncoder(w).Encode(questions)
}

func (h *APIHandler) ResolveQuestionHandler(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionID")

	var res core.Resolution
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	scriptID, err := h.chatService.ResolveQuestion(questionID, res)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidInput):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, store.ErrNotFound):
			http.Error(w, "Question not found", http.StatusNotFound)
		default:
			log.Printf("Error resolving question %s: %v", questionID, err)
			http.Error(w, "Failed to resolve question", http.StatusInternalServerError)
		}
		return
	}

	json.NewEncoder(w).Encode(map[string]string{
		"script_id": scriptID,
		"message":   "Question resolved and added to knowledge base",
	})
}

func (h *APIHandler) GetPageContextHandler(w http.ResponseWriter, r *http.Request) {
	// Routes are stored slash-prefixed ("/", "/system/goat"), so the path
	// segment after the prefix is matched as a wildcard.
	route := "/" + chi.URLParam(r, "*")

	pc, err := h.chatService.GetPageContext(route)
	if err != nil {
		log.Printf("Error getting page context for %s: %v", route, err)
		http.Error(w, "Failed to get page context", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(pc)
}

func (h *APIHandler) SetPageContextHandler(w http.ResponseWriter, r *http.Request) {
	var pc store.PageContext
	if err := json.NewDecoder(r.Body).Decode(&pc); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.chatService.SetPageContext(pc); err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("Error setting page context for %s: %v", pc.PageRoute, err)
		http.Error(w, "Failed to set page context", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "Page context updated"})
}

func (h *APIHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.chatService.Stats()
	if err != nil {
		log.Printf("Error getting stats: %v", err)
		http.Error(w, "Failed to get stats", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(stats)
}
