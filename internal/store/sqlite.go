package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicatePattern is returned by CreateScript when the question
	// pattern already exists. Only direct creation checks this; the learning
	// path inserts without the check, so duplicates can accumulate there.
	ErrDuplicatePattern = errors.New("question pattern already exists")
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite allows a single writer; one connection avoids SQLITE_BUSY under
	// concurrent queries and makes the usage-count increment serializable.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS chat_scripts (
        id TEXT PRIMARY KEY, -- UUID
        question_pattern TEXT NOT NULL,
        answer TEXT NOT NULL,
        category TEXT DEFAULT 'general',
        confidence_score REAL DEFAULT 1.0,
        usage_count INTEGER DEFAULT 0,
        is_learned BOOLEAN DEFAULT FALSE,
        requires_approval BOOLEAN DEFAULT FALSE,
        page_context TEXT DEFAULT 'global',
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    CREATE INDEX IF NOT EXISTS idx_chat_scripts_pattern ON chat_scripts (question_pattern);

    CREATE TABLE IF NOT EXISTS unanswered_questions (
        id TEXT PRIMARY KEY, -- UUID
        question TEXT NOT NULL,
        user_session TEXT,
        page_url TEXT,
        suggested_answer TEXT,
        is_resolved BOOLEAN DEFAULT FALSE,
        admin_notes TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS page_contexts (
        id TEXT PRIMARY KEY, -- UUID
        page_route TEXT UNIQUE NOT NULL,
        page_name TEXT,
        description TEXT,
        key_topics_json TEXT, -- JSON string of []string
        design_notes TEXT,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS pages (
        id TEXT PRIMARY KEY, -- UUID
        name TEXT UNIQUE NOT NULL,
        title TEXT NOT NULL,
        content TEXT NOT NULL,
        meta_description TEXT,
        is_published BOOLEAN DEFAULT TRUE,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS systems (
        id TEXT PRIMARY KEY, -- UUID
        name TEXT UNIQUE NOT NULL,
        slug TEXT UNIQUE NOT NULL,
        title TEXT NOT NULL,
        description TEXT NOT NULL,
        key_features_json TEXT, -- JSON string of []string
        learn_more_url TEXT DEFAULT '#',
        icon TEXT,
        sort_order INTEGER DEFAULT 0,
        is_active BOOLEAN DEFAULT TRUE,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS social_links (
        id TEXT PRIMARY KEY, -- UUID
        platform TEXT UNIQUE NOT NULL,
        url TEXT NOT NULL,
        icon TEXT,
        is_active BOOLEAN DEFAULT TRUE,
        sort_order INTEGER DEFAULT 0,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// Script methods

const scriptColumns = "id, question_pattern, answer, category, confidence_score, usage_count, is_learned, requires_approval, page_context, created_at, updated_at"

func scanScript(row interface{ Scan(...any) error }) (*ChatScript, error) {
	var script ChatScript
	err := row.Scan(&script.ID, &script.QuestionPattern, &script.Answer, &script.Category,
		&script.ConfidenceScore, &script.UsageCount, &script.IsLearned, &script.RequiresApproval,
		&script.PageContext, &script.CreatedAt, &script.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &script, nil
}

// CreateScript inserts a new script after checking that no script with the
// same pattern exists. The check is case-sensitive and creation-time only.
func (s *SQLiteStore) CreateScript(script *ChatScript) error {
	var existing int
	err := s.db.QueryRow("SELECT COUNT(*) FROM chat_scripts WHERE question_pattern = ?", script.QuestionPattern).Scan(&existing)
	if err != nil {
		return fmt.Errorf("failed to check for duplicate pattern: %w", err)
	}
	if existing > 0 {
		return ErrDuplicatePattern
	}
	return s.insertScript(s.db, script)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStore) insertScript(e execer, script *ChatScript) error {
	script.ID = uuid.NewString()
	now := time.Now()
	script.CreatedAt = now
	script.UpdatedAt = now

	_, err := e.Exec(
		"INSERT INTO chat_scripts ("+scriptColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		script.ID, script.QuestionPattern, script.Answer, script.Category,
		script.ConfidenceScore, script.UsageCount, script.IsLearned, script.RequiresApproval,
		script.PageContext, script.CreatedAt, script.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert script: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetScriptByID(id string) (*ChatScript, error) {
	script, err := scanScript(s.db.QueryRow("SELECT "+scriptColumns+" FROM chat_scripts WHERE id = ?", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query script: %w", err)
	}
	return script, nil
}

// ListEligibleScripts returns the scripts considered for automatic matching,
// in a stable order so tie-breaks are deterministic.
func (s *SQLiteStore) ListEligibleScripts() ([]ChatScript, error) {
	return s.queryScripts("SELECT " + scriptColumns + " FROM chat_scripts WHERE requires_approval = 0 ORDER BY id ASC")
}

// ListAllScripts returns every script, including ones pending approval.
func (s *SQLiteStore) ListAllScripts() ([]ChatScript, error) {
	return s.queryScripts("SELECT " + scriptColumns + " FROM chat_scripts ORDER BY id ASC")
}

// ListScripts returns scripts for the admin view, most used first. Nil
// filters are ignored.
func (s *SQLiteStore) ListScripts(category *string, isLearned *bool) ([]ChatScript, error) {
	query := "SELECT " + scriptColumns + " FROM chat_scripts"
	var conds []string
	var args []any
	if category != nil {
		conds = append(conds, "category = ?")
		args = append(args, *category)
	}
	if isLearned != nil {
		conds = append(conds, "is_learned = ?")
		args = append(args, *isLearned)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY usage_count DESC"
	return s.queryScripts(query, args...)
}

func (s *SQLiteStore) queryScripts(query string, args ...any) ([]ChatScript, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scripts: %w", err)
	}
	defer rows.Close()

	var scripts []ChatScript
	for rows.Next() {
		script, err := scanScript(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan script row: %w", err)
		}
		scripts = append(scripts, *script)
	}
	return scripts, rows.Err()
}

// IncrementScriptUsage bumps usage_count by one in a single UPDATE so
// concurrent matches against the same script never lose counts.
func (s *SQLiteStore) IncrementScriptUsage(id string) error {
	res, err := s.db.Exec("UPDATE chat_scripts SET usage_count = usage_count + 1, updated_at = ? WHERE id = ?", time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to increment usage count: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateScript merges the non-nil fields of upd into the stored row. Pattern
// uniqueness is not re-checked here.
func (s *SQLiteStore) UpdateScript(id string, upd ScriptUpdate) error {
	var sets []string
	var args []any
	if upd.QuestionPattern != nil {
		sets = append(sets, "question_pattern = ?")
		args = append(args, *upd.QuestionPattern)
	}
	if upd.Answer != nil {
		sets = append(sets, "answer = ?")
		args = append(args, *upd.Answer)
	}
	if upd.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *upd.Category)
	}
	if upd.ConfidenceScore != nil {
		sets = append(sets, "confidence_score = ?")
		args = append(args, *upd.ConfidenceScore)
	}
	if upd.RequiresApproval != nil {
		sets = append(sets, "requires_approval = ?")
		args = append(args, *upd.RequiresApproval)
	}
	if len(sets) == 0 {
		// Nothing to merge; still verify the row exists.
		if _, err := s.GetScriptByID(id); err != nil {
			return err
		}
		return nil
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now(), id)

	res, err := s.db.Exec("UPDATE chat_scripts SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("failed to update script: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteScript(id string) error {
	res, err := s.db.Exec("DELETE FROM chat_scripts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete script: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Unanswered question methods

func (s *SQLiteStore) CreateUnanswered(q *UnansweredQuestion) error {
	q.ID = uuid.NewString()
	q.CreatedAt = time.Now()

	_, err := s.db.Exec(
		"INSERT INTO unanswered_questions (id, question, user_session, page_url, is_resolved, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		q.ID, q.Question, q.UserSession, q.PageURL, q.IsResolved, q.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert unanswered question: %w", err)
	}
	return nil
}

func scanUnanswered(row interface{ Scan(...any) error }) (*UnansweredQuestion, error) {
	var q UnansweredQuestion
	var session, pageURL, suggested, notes sql.NullString
	err := row.Scan(&q.ID, &q.Question, &session, &pageURL, &suggested, &q.IsResolved, &notes, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	if session.Valid {
		q.UserSession = &session.String
	}
	if pageURL.Valid {
		q.PageURL = &pageURL.String
	}
	if suggested.Valid {
		q.SuggestedAnswer = &suggested.String
	}
	if notes.Valid {
		q.AdminNotes = &notes.String
	}
	return &q, nil
}

const unansweredColumns = "id, question, user_session, page_url, suggested_answer, is_resolved, admin_notes, created_at"

func (s *SQLiteStore) GetUnansweredByID(id string) (*UnansweredQuestion, error) {
	q, err := scanUnanswered(s.db.QueryRow("SELECT "+unansweredColumns+" FROM unanswered_questions WHERE id = ?", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query unanswered question: %w", err)
	}
	return q, nil
}

func (s *SQLiteStore) ListUnanswered(resolved bool) ([]UnansweredQuestion, error) {
	rows, err := s.db.Query("SELECT "+unansweredColumns+" FROM unanswered_questions WHERE is_resolved = ? ORDER BY created_at DESC", resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to query unanswered questions: %w", err)
	}
	defer rows.Close()

	var questions []UnansweredQuestion
	for rows.Next() {
		q, err := scanUnanswered(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan unanswered row: %w", err)
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

// ResolveUnanswered inserts the learned script and marks the question
// resolved in one transaction. It does not guard against the question
// already being resolved; calling it twice creates a second script.
func (s *SQLiteStore) ResolveUnanswered(questionID string, script *ChatScript, notes string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin resolve transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.insertScript(tx, script); err != nil {
		return err
	}

	res, err := tx.Exec("UPDATE unanswered_questions SET is_resolved = 1, admin_notes = ? WHERE id = ?", notes, questionID)
	if err != nil {
		return fmt.Errorf("failed to mark question resolved: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit resolve transaction: %w", err)
	}
	return nil
}

// Page context methods

func (s *SQLiteStore) GetPageContext(route string) (*PageContext, error) {
	var pc PageContext
	var topicsJSON sql.NullString
	err := s.db.QueryRow(
		"SELECT id, page_route, page_name, description, key_topics_json, design_notes, updated_at FROM page_contexts WHERE page_route = ?",
		route,
	).Scan(&pc.ID, &pc.PageRoute, &pc.PageName, &pc.Description, &topicsJSON, &pc.DesignNotes, &pc.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query page context: %w", err)
	}
	if topicsJSON.Valid && topicsJSON.String != "" {
		if err := json.Unmarshal([]byte(topicsJSON.String), &pc.KeyTopics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal key topics for route %s: %w", route, err)
		}
	}
	return &pc, nil
}

// UpsertPageContext creates or replaces the context for a route. The single
// ON CONFLICT statement keeps the upsert atomic; an existing row keeps its id.
func (s *SQLiteStore) UpsertPageContext(pc *PageContext) error {
	topicsBytes, err := json.Marshal(pc.KeyTopics)
	if err != nil {
		return fmt.Errorf("failed to marshal key topics: %w", err)
	}
	pc.ID = uuid.NewString()
	pc.UpdatedAt = time.Now()

	_, err = s.db.Exec(`
        INSERT INTO page_contexts (id, page_route, page_name, description, key_topics_json, design_notes, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(page_route) DO UPDATE SET
            page_name = excluded.page_name,
            description = excluded.description,
            key_topics_json = excluded.key_topics_json,
            design_notes = excluded.design_notes,
            updated_at = excluded.updated_at`,
		pc.ID, pc.PageRoute, pc.PageName, pc.Description, string(topicsBytes), pc.DesignNotes, pc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert page context: %w", err)
	}
	return nil
}

// Stats

// GetStats aggregates the dashboard counters. LearningRate is derived by the
// service layer.
func (s *SQLiteStore) GetStats() (*Stats, error) {
	var stats Stats
	err := s.db.QueryRow(`
        SELECT
            (SELECT COUNT(*) FROM chat_scripts),
            (SELECT COUNT(*) FROM chat_scripts WHERE is_learned = 1),
            (SELECT COUNT(*) FROM unanswered_questions WHERE is_resolved = 0),
            (SELECT COALESCE(SUM(usage_count), 0) FROM chat_scripts)
    `).Scan(&stats.TotalScripts, &stats.LearnedScripts, &stats.PendingQuestions, &stats.TotalQueriesAnswered)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	return &stats, nil
}
