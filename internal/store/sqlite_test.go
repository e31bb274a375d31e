package store

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "site-backend-test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustCreateScript(t *testing.T, s *SQLiteStore, script ChatScript) ChatScript {
	t.Helper()
	if script.Category == "" {
		script.Category = "general"
	}
	if script.PageContext == "" {
		script.PageContext = "global"
	}
	if script.ConfidenceScore == 0 {
		script.ConfidenceScore = 1.0
	}
	if err := s.CreateScript(&script); err != nil {
		t.Fatalf("CreateScript failed: %v", err)
	}
	return script
}

func TestCreateScriptRejectsDuplicatePattern(t *testing.T) {
	s := newTestStore(t)
	mustCreateScript(t, s, ChatScript{QuestionPattern: "What is GOAT?", Answer: "A platform."})

	err := s.CreateScript(&ChatScript{QuestionPattern: "What is GOAT?", Answer: "Another answer."})
	if !errors.Is(err, ErrDuplicatePattern) {
		t.Fatalf("expected ErrDuplicatePattern, got %v", err)
	}

	scripts, err := s.ListAllScripts()
	if err != nil {
		t.Fatalf("ListAllScripts failed: %v", err)
	}
	if len(scripts) != 1 {
		t.Fatalf("expected store unchanged with 1 script, got %d", len(scripts))
	}
}

func TestListEligibleScriptsExcludesApprovalGated(t *testing.T) {
	s := newTestStore(t)
	mustCreateScript(t, s, ChatScript{QuestionPattern: "approved", Answer: "a"})
	mustCreateScript(t, s, ChatScript{QuestionPattern: "gated", Answer: "b", RequiresApproval: true})

	eligible, err := s.ListEligibleScripts()
	if err != nil {
		t.Fatalf("ListEligibleScripts failed: %v", err)
	}
	if len(eligible) != 1 || eligible[0].QuestionPattern != "approved" {
		t.Fatalf("expected only the approved script, got %+v", eligible)
	}

	all, err := s.ListAllScripts()
	if err != nil {
		t.Fatalf("ListAllScripts failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 scripts in the unfiltered set, got %d", len(all))
	}
}

func TestListScriptsFiltersAndUsageOrder(t *testing.T) {
	s := newTestStore(t)
	a := mustCreateScript(t, s, ChatScript{QuestionPattern: "a", Answer: "x", Category: "pricing"})
	b := mustCreateScript(t, s, ChatScript{QuestionPattern: "b", Answer: "y", Category: "general", IsLearned: true})
	mustCreateScript(t, s, ChatScript{QuestionPattern: "c", Answer: "z", Category: "pricing"})

	for i := 0; i < 3; i++ {
		if err := s.IncrementScriptUsage(b.ID); err != nil {
			t.Fatalf("IncrementScriptUsage failed: %v", err)
		}
	}
	if err := s.IncrementScriptUsage(a.ID); err != nil {
		t.Fatalf("IncrementScriptUsage failed: %v", err)
	}

	scripts, err := s.ListScripts(nil, nil)
	if err != nil {
		t.Fatalf("ListScripts failed: %v", err)
	}
	if len(scripts) != 3 {
		t.Fatalf("expected 3 scripts, got %d", len(scripts))
	}
	for i := 1; i < len(scripts); i++ {
		if scripts[i].UsageCount > scripts[i-1].UsageCount {
			t.Fatalf("scripts not ordered by usage_count desc: %+v", scripts)
		}
	}

	category := "pricing"
	pricing, err := s.ListScripts(&category, nil)
	if err != nil {
		t.Fatalf("ListScripts with category failed: %v", err)
	}
	if len(pricing) != 2 {
		t.Fatalf("expected 2 pricing scripts, got %d", len(pricing))
	}

	learned := true
	learnedScripts, err := s.ListScripts(nil, &learned)
	if err != nil {
		t.Fatalf("ListScripts with is_learned failed: %v", err)
	}
	if len(learnedScripts) != 1 || learnedScripts[0].ID != b.ID {
		t.Fatalf("expected only the learned script, got %+v", learnedScripts)
	}
}

func TestUpdateScriptMergesOnlySetFields(t *testing.T) {
	s := newTestStore(t)
	script := mustCreateScript(t, s, ChatScript{QuestionPattern: "original pattern", Answer: "original answer"})

	newAnswer := "updated answer"
	if err := s.UpdateScript(script.ID, ScriptUpdate{Answer: &newAnswer}); err != nil {
		t.Fatalf("UpdateScript failed: %v", err)
	}

	got, err := s.GetScriptByID(script.ID)
	if err != nil {
		t.Fatalf("GetScriptByID failed: %v", err)
	}
	if got.Answer != newAnswer {
		t.Fatalf("answer not updated: %q", got.Answer)
	}
	if got.QuestionPattern != "original pattern" {
		t.Fatalf("pattern should be untouched, got %q", got.QuestionPattern)
	}

	if err := s.UpdateScript("missing-id", ScriptUpdate{Answer: &newAnswer}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}
}

func TestIncrementScriptUsageConcurrent(t *testing.T) {
	s := newTestStore(t)
	script := mustCreateScript(t, s, ChatScript{QuestionPattern: "popular", Answer: "a"})

	const workers = 25
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.IncrementScriptUsage(script.ID)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("IncrementScriptUsage failed: %v", err)
		}
	}

	got, err := s.GetScriptByID(script.ID)
	if err != nil {
		t.Fatalf("GetScriptByID failed: %v", err)
	}
	if got.UsageCount != workers {
		t.Fatalf("expected usage_count %d, got %d (lost updates)", workers, got.UsageCount)
	}
}

func TestResolveUnansweredIsTransactional(t *testing.T) {
	s := newTestStore(t)

	pageURL := "/system/goat"
	q := UnansweredQuestion{Question: "what is apex doc", PageURL: &pageURL}
	if err := s.CreateUnanswered(&q); err != nil {
		t.Fatalf("CreateUnanswered failed: %v", err)
	}

	script := ChatScript{
		QuestionPattern: q.Question,
		Answer:          "APEX Doc is a document management system.",
		Category:        "learned",
		ConfidenceScore: 1.0,
		IsLearned:       true,
		PageContext:     pageURL,
	}
	if err := s.ResolveUnanswered(q.ID, &script, "reviewed"); err != nil {
		t.Fatalf("ResolveUnanswered failed: %v", err)
	}

	got, err := s.GetUnansweredByID(q.ID)
	if err != nil {
		t.Fatalf("GetUnansweredByID failed: %v", err)
	}
	if !got.IsResolved {
		t.Fatal("question should be resolved")
	}
	if got.AdminNotes == nil || *got.AdminNotes != "reviewed" {
		t.Fatalf("unexpected admin notes: %v", got.AdminNotes)
	}

	// A missing question must roll back the script insert too.
	before, _ := s.ListAllScripts()
	err = s.ResolveUnanswered("missing-id", &ChatScript{QuestionPattern: "x", Answer: "y"}, "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	after, _ := s.ListAllScripts()
	if len(after) != len(before) {
		t.Fatalf("script insert should have rolled back: before=%d after=%d", len(before), len(after))
	}
}

func TestListUnansweredNewestFirst(t *testing.T) {
	s := newTestStore(t)
	for _, question := range []string{"first", "second", "third"} {
		q := UnansweredQuestion{Question: question}
		if err := s.CreateUnanswered(&q); err != nil {
			t.Fatalf("CreateUnanswered failed: %v", err)
		}
	}

	questions, err := s.ListUnanswered(false)
	if err != nil {
		t.Fatalf("ListUnanswered failed: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(questions))
	}
	for i := 1; i < len(questions); i++ {
		if questions[i].CreatedAt.After(questions[i-1].CreatedAt) {
			t.Fatalf("questions not ordered newest first: %+v", questions)
		}
	}

	resolvedList, err := s.ListUnanswered(true)
	if err != nil {
		t.Fatalf("ListUnanswered(true) failed: %v", err)
	}
	if len(resolvedList) != 0 {
		t.Fatalf("expected no resolved questions, got %d", len(resolvedList))
	}
}

func TestPageContextUpsert(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetPageContext("/missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing route, got %v", err)
	}

	pc := PageContext{
		PageRoute:   "/system/goat",
		PageName:    "GOAT",
		Description: "Analytics platform",
		KeyTopics:   []string{"analytics", "optimization"},
		DesignNotes: "hero section",
	}
	if err := s.UpsertPageContext(&pc); err != nil {
		t.Fatalf("UpsertPageContext insert failed: %v", err)
	}

	pc.Description = "Updated description"
	if err := s.UpsertPageContext(&pc); err != nil {
		t.Fatalf("UpsertPageContext update failed: %v", err)
	}

	got, err := s.GetPageContext("/system/goat")
	if err != nil {
		t.Fatalf("GetPageContext failed: %v", err)
	}
	if got.Description != "Updated description" {
		t.Fatalf("unexpected description: %q", got.Description)
	}
	if len(got.KeyTopics) != 2 || got.KeyTopics[0] != "analytics" {
		t.Fatalf("unexpected key topics: %v", got.KeyTopics)
	}
}

func TestConcurrentUpsertPageContextKeepsOneRow(t *testing.T) {
	s := newTestStore(t)

	const writers = 10
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pc := PageContext{
				PageRoute:   "/",
				PageName:    "Home",
				Description: "Landing page",
				KeyTopics:   []string{"overview"},
			}
			errs <- s.UpsertPageContext(&pc)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent UpsertPageContext failed: %v", err)
		}
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM page_contexts WHERE page_route = '/'").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one row for the route, got %d", count)
	}
}

func TestGetStatsEmptyStore(t *testing.T) {
	s := newTestStore(t)
	stats, err := s.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalScripts != 0 || stats.LearnedScripts != 0 || stats.PendingQuestions != 0 || stats.TotalQueriesAnswered != 0 {
		t.Fatalf("expected all-zero stats, got %+v", stats)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.Seed(); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	first, err := s.ListAllScripts()
	if err != nil {
		t.Fatalf("ListAllScripts failed: %v", err)
	}
	if len(first) == 0 {
		t.Fatal("expected seeded scripts")
	}

	if err := s.Seed(); err != nil {
		t.Fatalf("second Seed failed: %v", err)
	}
	second, err := s.ListAllScripts()
	if err != nil {
		t.Fatalf("ListAllScripts failed: %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("re-seeding should replace rows, got %d then %d", len(first), len(second))
	}
}
