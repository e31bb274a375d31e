package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Site content CRUD. These tables back the public site; the chat core never
// touches them.

// Page methods

func (s *SQLiteStore) GetPublishedPage(name string) (*Page, error) {
	var p Page
	var meta sql.NullString
	err := s.db.QueryRow(
		"SELECT id, name, title, content, meta_description, is_published, created_at, updated_at FROM pages WHERE name = ? AND is_published = 1",
		name,
	).Scan(&p.ID, &p.Name, &p.Title, &p.Content, &meta, &p.IsPublished, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query page: %w", err)
	}
	p.MetaDescription = meta.String
	return &p, nil
}

func (s *SQLiteStore) CreatePage(p *Page) error {
	p.ID = uuid.NewString()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.Exec(
		"INSERT INTO pages (id, name, title, content, meta_description, is_published, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Name, p.Title, p.Content, p.MetaDescription, p.IsPublished, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert page: %w", err)
	}
	return nil
}

// UpdatePage merges the non-nil fields of upd into the stored row.
func (s *SQLiteStore) UpdatePage(id string, upd PageUpdate) error {
	var sets []string
	var args []any
	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *upd.Content)
	}
	if upd.MetaDescription != nil {
		sets = append(sets, "meta_description = ?")
		args = append(args, *upd.MetaDescription)
	}
	if upd.IsPublished != nil {
		sets = append(sets, "is_published = ?")
		args = append(args, *upd.IsPublished)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now(), id)

	res, err := s.db.Exec("UPDATE pages SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("failed to update page: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// System methods

const systemColumns = "id, name, slug, title, description, key_features_json, learn_more_url, icon, sort_order, is_active, created_at, updated_at"

func scanSystem(row interface{ Scan(...any) error }) (*System, error) {
	var sys System
	var features, icon sql.NullString
	err := row.Scan(&sys.ID, &sys.Name, &sys.Slug, &sys.Title, &sys.Description,
		&features, &sys.LearnMoreURL, &icon, &sys.Order, &sys.IsActive, &sys.CreatedAt, &sys.UpdatedAt)
	if err != nil {
		return nil, err
	}
	sys.Icon = icon.String
	if features.Valid && features.String != "" {
		if err := json.Unmarshal([]byte(features.String), &sys.KeyFeatures); err != nil {
			return nil, fmt.Errorf("failed to unmarshal key features for system %s: %w", sys.Slug, err)
		}
	}
	return &sys, nil
}

func (s *SQLiteStore) ListActiveSystems() ([]System, error) {
	rows, err := s.db.Query("SELECT " + systemColumns + " FROM systems WHERE is_active = 1 ORDER BY sort_order ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query systems: %w", err)
	}
	defer rows.Close()

	var systems []System
	for rows.Next() {
		sys, err := scanSystem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan system row: %w", err)
		}
		systems = append(systems, *sys)
	}
	return systems, rows.Err()
}

func (s *SQLiteStore) GetActiveSystemBySlug(slug string) (*System, error) {
	sys, err := scanSystem(s.db.QueryRow("SELECT "+systemColumns+" FROM systems WHERE slug = ? AND is_active = 1", slug))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query system: %w", err)
	}
	return sys, nil
}

func (s *SQLiteStore) CreateSystem(sys *System) error {
	featuresBytes, err := json.Marshal(sys.KeyFeatures)
	if err != nil {
		return fmt.Errorf("failed to marshal key features: %w", err)
	}
	sys.ID = uuid.NewString()
	now := time.Now()
	sys.CreatedAt = now
	sys.UpdatedAt = now

	_, err = s.db.Exec(
		"INSERT INTO systems ("+systemColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		sys.ID, sys.Name, sys.Slug, sys.Title, sys.Description, string(featuresBytes),
		sys.LearnMoreURL, sys.Icon, sys.Order, sys.IsActive, sys.CreatedAt, sys.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert system: %w", err)
	}
	return nil
}

// UpdateSystem merges the non-nil fields of upd into the stored row.
func (s *SQLiteStore) UpdateSystem(id string, upd SystemUpdate) error {
	var sets []string
	var args []any
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Slug != nil {
		sets = append(sets, "slug = ?")
		args = append(args, *upd.Slug)
	}
	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.KeyFeatures != nil {
		featuresBytes, err := json.Marshal(*upd.KeyFeatures)
		if err != nil {
			return fmt.Errorf("failed to marshal key features: %w", err)
		}
		sets = append(sets, "key_features_json = ?")
		args = append(args, string(featuresBytes))
	}
	if upd.LearnMoreURL != nil {
		sets = append(sets, "learn_more_url = ?")
		args = append(args, *upd.LearnMoreURL)
	}
	if upd.Icon != nil {
		sets = append(sets, "icon = ?")
		args = append(args, *upd.Icon)
	}
	if upd.Order != nil {
		sets = append(sets, "sort_order = ?")
		args = append(args, *upd.Order)
	}
	if upd.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, *upd.IsActive)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now(), id)

	res, err := s.db.Exec("UPDATE systems SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("failed to update system: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteSystem(id string) error {
	res, err := s.db.Exec("DELETE FROM systems WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete system: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Social link methods

func (s *SQLiteStore) ListActiveSocialLinks() ([]SocialLink, error) {
	rows, err := s.db.Query("SELECT id, platform, url, icon, is_active, sort_order, created_at, updated_at FROM social_links WHERE is_active = 1 ORDER BY sort_order ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query social links: %w", err)
	}
	defer rows.Close()

	var links []SocialLink
	for rows.Next() {
		var link SocialLink
		var icon sql.NullString
		if err := rows.Scan(&link.ID, &link.Platform, &link.URL, &icon, &link.IsActive, &link.Order, &link.CreatedAt, &link.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan social link row: %w", err)
		}
		link.Icon = icon.String
		links = append(links, link)
	}
	return links, rows.Err()
}

func (s *SQLiteStore) CreateSocialLink(link *SocialLink) error {
	link.ID = uuid.NewString()
	now := time.Now()
	link.CreatedAt = now
	link.UpdatedAt = now

	_, err := s.db.Exec(
		"INSERT INTO social_links (id, platform, url, icon, is_active, sort_order, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		link.ID, link.Platform, link.URL, link.Icon, link.IsActive, link.Order, link.CreatedAt, link.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert social link: %w", err)
	}
	return nil
}

// UpdateSocialLink merges the non-nil fields of upd into the stored row.
func (s *SQLiteStore) UpdateSocialLink(id string, upd SocialLinkUpdate) error {
	var sets []string
	var args []any
	if upd.Platform != nil {
		sets = append(sets, "platform = ?")
		args = append(args, *upd.Platform)
	}
	if upd.URL != nil {
		sets = append(sets, "url = ?")
		args = append(args, *upd.URL)
	}
	if upd.Icon != nil {
		sets = append(sets, "icon = ?")
		args = append(args, *upd.Icon)
	}
	if upd.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, *upd.IsActive)
	}
	if upd.Order != nil {
		sets = append(sets, "sort_order = ?")
		args = append(args, *upd.Order)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now(), id)

	res, err := s.db.Exec("UPDATE social_links SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("failed to update social link: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteSocialLink(id string) error {
	res, err := s.db.Exec("DELETE FROM social_links WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete social link: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
