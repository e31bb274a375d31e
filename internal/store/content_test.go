package store

import (
	"errors"
	"testing"
)

func TestUpdatePagePartialMerge(t *testing.T) {
	s := newTestStore(t)

	page := Page{
		Name:            "home",
		Title:           "Home",
		Content:         "Welcome to Pro Prime.",
		MetaDescription: "Landing page",
		IsPublished:     true,
	}
	if err := s.CreatePage(&page); err != nil {
		t.Fatalf("CreatePage failed: %v", err)
	}

	newTitle := "New Home"
	if err := s.UpdatePage(page.ID, PageUpdate{Title: &newTitle}); err != nil {
		t.Fatalf("UpdatePage failed: %v", err)
	}

	// The page must stay published and keep its content; only the title
	// changes.
	got, err := s.GetPublishedPage("home")
	if err != nil {
		t.Fatalf("GetPublishedPage failed: %v", err)
	}
	if got.Title != "New Home" {
		t.Fatalf("expected updated title, got %q", got.Title)
	}
	if got.Content != "Welcome to Pro Prime." {
		t.Fatalf("content should be untouched, got %q", got.Content)
	}
	if got.MetaDescription != "Landing page" {
		t.Fatalf("meta description should be untouched, got %q", got.MetaDescription)
	}

	if err := s.UpdatePage("missing-id", PageUpdate{Title: &newTitle}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing page, got %v", err)
	}
}

func TestUpdateSystemPartialMerge(t *testing.T) {
	s := newTestStore(t)

	system := System{
		Name:        "GOAT",
		Slug:        "goat",
		Title:       "GOAT",
		Description: "Analytics platform",
		KeyFeatures: []string{"analytics", "optimization"},
		Icon:        "chart",
		Order:       1,
		IsActive:    true,
	}
	if err := s.CreateSystem(&system); err != nil {
		t.Fatalf("CreateSystem failed: %v", err)
	}

	newDescription := "Content analytics platform"
	if err := s.UpdateSystem(system.ID, SystemUpdate{Description: &newDescription}); err != nil {
		t.Fatalf("UpdateSystem failed: %v", err)
	}

	got, err := s.GetActiveSystemBySlug("goat")
	if err != nil {
		t.Fatalf("GetActiveSystemBySlug failed: %v", err)
	}
	if got.Description != newDescription {
		t.Fatalf("expected updated description, got %q", got.Description)
	}
	if len(got.KeyFeatures) != 2 {
		t.Fatalf("key features should be untouched, got %v", got.KeyFeatures)
	}
	if got.Icon != "chart" || got.Order != 1 || !got.IsActive {
		t.Fatalf("unrelated fields should be untouched, got %+v", got)
	}

	features := []string{"reporting"}
	if err := s.UpdateSystem(system.ID, SystemUpdate{KeyFeatures: &features}); err != nil {
		t.Fatalf("UpdateSystem failed: %v", err)
	}
	got, err = s.GetActiveSystemBySlug("goat")
	if err != nil {
		t.Fatalf("GetActiveSystemBySlug failed: %v", err)
	}
	if len(got.KeyFeatures) != 1 || got.KeyFeatures[0] != "reporting" {
		t.Fatalf("expected replaced key features, got %v", got.KeyFeatures)
	}
	if got.Description != newDescription {
		t.Fatalf("description should be untouched, got %q", got.Description)
	}

	if err := s.UpdateSystem("missing-id", SystemUpdate{Description: &newDescription}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing system, got %v", err)
	}
}

func TestUpdateSocialLinkPartialMerge(t *testing.T) {
	s := newTestStore(t)

	link := SocialLink{
		Platform: "twitter",
		URL:      "https://twitter.com/proprime",
		Icon:     "bird",
		IsActive: true,
		Order:    1,
	}
	if err := s.CreateSocialLink(&link); err != nil {
		t.Fatalf("CreateSocialLink failed: %v", err)
	}

	newURL := "https://x.com/proprime"
	if err := s.UpdateSocialLink(link.ID, SocialLinkUpdate{URL: &newURL}); err != nil {
		t.Fatalf("UpdateSocialLink failed: %v", err)
	}

	links, err := s.ListActiveSocialLinks()
	if err != nil {
		t.Fatalf("ListActiveSocialLinks failed: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("the link must stay active after a sparse update, got %d links", len(links))
	}
	if links[0].URL != newURL {
		t.Fatalf("expected updated url, got %q", links[0].URL)
	}
	if links[0].Platform != "twitter" || links[0].Icon != "bird" || links[0].Order != 1 {
		t.Fatalf("unrelated fields should be untouched, got %+v", links[0])
	}

	if err := s.UpdateSocialLink("missing-id", SocialLinkUpdate{URL: &newURL}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing link, got %v", err)
	}
}
