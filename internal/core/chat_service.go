package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"proprime.com/site-backend/internal/store"
)

const (
	// MatchThreshold is the minimum similarity for an authoritative answer.
	MatchThreshold = 0.7
	// SuggestionLimit caps the near-miss suggestions on the fallback path.
	SuggestionLimit = 3

	// FallbackAnswer is returned whenever no script clears the threshold.
	// A no-match query is a successful response, never an error.
	FallbackAnswer = "I'm not sure about that yet, but I'm learning! I've noted your question."
)

// ErrInvalidInput marks validation failures (missing or empty required
// fields), checked with errors.Is at the API boundary.
var ErrInvalidInput = errors.New("invalid input")

// Repository is the persistence capability set the chat service needs. The
// sqlite store satisfies it; tests may substitute their own.
type Repository interface {
	CreateScript(script *store.ChatScript) error
	ListEligibleScripts() ([]store.ChatScript, error)
	ListAllScripts() ([]store.ChatScript, error)
	ListScripts(category *string, isLearned *bool) ([]store.ChatScript, error)
	UpdateScript(id string, upd store.ScriptUpdate) error
	DeleteScript(id string) error
	IncrementScriptUsage(id string) error

	CreateUnanswered(q *store.UnansweredQuestion) error
	GetUnansweredByID(id string) (*store.UnansweredQuestion, error)
	ListUnanswered(resolved bool) ([]store.UnansweredQuestion, error)
	ResolveUnanswered(questionID string, script *store.ChatScript, notes string) error

	GetPageContext(route string) (*store.PageContext, error)
	UpsertPageContext(pc *store.PageContext) error

	GetStats() (*store.Stats, error)
}

// ChatService answers visitor questions from the script store and runs the
// learning loop that turns unanswered questions into new scripts.
type ChatService struct {
	repo Repository
}

func NewChatService(repo Repository) *ChatService {
	return &ChatService{repo: repo}
}

// QueryResult is the outcome of one visitor query.
type QueryResult struct {
	Answer      string       `json:"answer"`
	Confidence  float64      `json:"confidence"`
	Source      string       `json:"source"` // "database" or "learning"
	ScriptID    *string      `json:"script_id,omitempty"`
	Suggestions []Suggestion `json:"suggestions"`
}

// Suggestion is a near-miss script offered alongside the fallback answer.
type Suggestion struct {
	Question string `json:"question"`
	ID       string `json:"id"`
}

// Answer matches a question against the approved scripts. Above the
// threshold it returns the stored answer and bumps the script's usage count;
// below it, it records the question for admin review and returns the
// fallback with suggestions. Exactly one write happens either way.
func (s *ChatService) Answer(question string, sessionID, pageURL *string) (*QueryResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is required", ErrInvalidInput)
	}

	eligible, err := s.repo.ListEligibleScripts()
	if err != nil {
		return nil, fmt.Errorf("failed to load scripts: %w", err)
	}

	var bestMatch *store.ChatScript
	bestScore := 0.0
	for i := range eligible {
		// Strictly greater, so the first script encountered wins ties.
		if score := Similarity(question, eligible[i].QuestionPattern); score > bestScore {
			bestScore = score
			bestMatch = &eligible[i]
		}
	}

	if bestMatch != nil && bestScore >= MatchThreshold {
		if err := s.repo.IncrementScriptUsage(bestMatch.ID); err != nil {
			return nil, fmt.Errorf("failed to record script usage: %w", err)
		}
		return &QueryResult{
			Answer:      bestMatch.Answer,
			Confidence:  bestScore,
			Source:      "database",
			ScriptID:    &bestMatch.ID,
			Suggestions: []Suggestion{},
		}, nil
	}

	unanswered := store.UnansweredQuestion{
		Question:    question,
		UserSession: sessionID,
		PageURL:     pageURL,
	}
	if err := s.repo.CreateUnanswered(&unanswered); err != nil {
		return nil, fmt.Errorf("failed to record unanswered question: %w", err)
	}

	// Suggestions rank the full script set, including ones still pending
	// approval; only automatic matching filters on requires_approval.
	all, err := s.repo.ListAllScripts()
	if err != nil {
		return nil, fmt.Errorf("failed to load scripts for suggestions: %w", err)
	}

	return &QueryResult{
		Answer:      FallbackAnswer,
		Confidence:  0.0,
		Source:      "learning",
		Suggestions: rankSuggestions(question, all, SuggestionLimit),
	}, nil
}

// rankSuggestions sorts scripts by descending similarity to the question and
// keeps the top limit. The sort is stable, so equal scores retain the input
// order.
func rankSuggestions(question string, scripts []store.ChatScript, limit int) []Suggestion {
	type scored struct {
		script *store.ChatScript
		score  float64
	}
	candidates := make([]scored, 0, len(scripts))
	for i := range scripts {
		candidates = append(candidates, scored{
			script: &scripts[i],
			score:  Similarity(question, scripts[i].QuestionPattern),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	suggestions := make([]Suggestion, 0, limit)
	for i := 0; i < len(candidates) && i < limit; i++ {
		suggestions = append(suggestions, Suggestion{
			Question: candidates[i].script.QuestionPattern,
			ID:       candidates[i].script.ID,
		})
	}
	return suggestions
}

// CreateScript validates and stores a new script. Defaults: category
// "general", page context "global", confidence 1.0.
func (s *ChatService) CreateScript(script store.ChatScript) (string, error) {
	if strings.TrimSpace(script.QuestionPattern) == "" {
		return "", fmt.Errorf("%w: question_pattern is required", ErrInvalidInput)
	}
	if strings.TrimSpace(script.Answer) == "" {
		return "", fmt.Errorf("%w: answer is required", ErrInvalidInput)
	}
	if script.Category == "" {
		script.Category = "general"
	}
	if script.PageContext == "" {
		script.PageContext = "global"
	}
	if script.ConfidenceScore == 0 {
		script.ConfidenceScore = 1.0
	}

	if err := s.repo.CreateScript(&script); err != nil {
		return "", err
	}
	return script.ID, nil
}

func (s *ChatService) ListScripts(category *string, isLearned *bool) ([]store.ChatScript, error) {
	return s.repo.ListScripts(category, isLearned)
}

func (s *ChatService) UpdateScript(id string, upd store.ScriptUpdate) error {
	return s.repo.UpdateScript(id, upd)
}

func (s *ChatService) DeleteScript(id string) error {
	return s.repo.DeleteScript(id)
}

func (s *ChatService) ListUnanswered(resolved bool) ([]store.UnansweredQuestion, error) {
	return s.repo.ListUnanswered(resolved)
}

// Resolution is the admin's answer to an unanswered question.
type Resolution struct {
	QuestionPattern string `json:"question_pattern"`
	Answer          string `json:"answer"`
	Category        string `json:"category"`
	Notes           string `json:"notes"`
}

// ResolveQuestion promotes an unanswered question into a learned script and
// marks the question resolved, returning the new script's id. Resolving the
// same question again creates another script; the original behavior is
// deliberately permissive here.
func (s *ChatService) ResolveQuestion(questionID string, res Resolution) (string, error) {
	if strings.TrimSpace(res.Answer) == "" {
		return "", fmt.Errorf("%w: answer is required", ErrInvalidInput)
	}

	question, err := s.repo.GetUnansweredByID(questionID)
	if err != nil {
		return "", err
	}

	pattern := res.QuestionPattern
	if pattern == "" {
		pattern = question.Question
	}
	category := res.Category
	if category == "" {
		category = "learned"
	}
	pageContext := "global"
	if question.PageURL != nil && *question.PageURL != "" {
		pageContext = *question.PageURL
	}

	script := store.ChatScript{
		QuestionPattern:  pattern,
		Answer:           res.Answer,
		Category:         category,
		ConfidenceScore:  1.0,
		IsLearned:        true,
		RequiresApproval: false,
		PageContext:      pageContext,
	}
	if err := s.repo.ResolveUnanswered(questionID, &script, res.Notes); err != nil {
		return "", err
	}
	return script.ID, nil
}

// GetPageContext returns the context for a route, or an empty default when
// none is stored.
func (s *ChatService) GetPageContext(route string) (*store.PageContext, error) {
	pc, err := s.repo.GetPageContext(route)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &store.PageContext{PageRoute: route, KeyTopics: []string{}}, nil
		}
		return nil, err
	}
	if pc.KeyTopics == nil {
		pc.KeyTopics = []string{}
	}
	return pc, nil
}

func (s *ChatService) SetPageContext(pc store.PageContext) error {
	if strings.TrimSpace(pc.PageRoute) == "" {
		return fmt.Errorf("%w: page_route is required", ErrInvalidInput)
	}
	return s.repo.UpsertPageContext(&pc)
}

// Stats reports the learning metrics for the admin dashboard.
func (s *ChatService) Stats() (*store.Stats, error) {
	stats, err := s.repo.GetStats()
	if err != nil {
		return nil, err
	}
	if stats.TotalScripts > 0 {
		stats.LearningRate = float64(stats.LearnedScripts) / float64(stats.TotalScripts)
	}
	return stats, nil
}
