package store

import "time"

// ChatScript is one matchable question/answer pair in the knowledge base.
type ChatScript struct {
	ID               string    `json:"id"` // UUID
	QuestionPattern  string    `json:"question"`
	Answer           string    `json:"answer"`
	Category         string    `json:"category"`
	ConfidenceScore  float64   `json:"confidence"`
	UsageCount       int64     `json:"usage_count"`
	IsLearned        bool      `json:"is_learned"`
	RequiresApproval bool      `json:"requires_approval"`
	PageContext      string    `json:"page_context"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ScriptUpdate is a sparse update: nil fields are left untouched. Each field
// is merged explicitly in UpdateScript; pattern uniqueness is not re-checked
// on update.
type ScriptUpdate struct {
	QuestionPattern  *string  `json:"question_pattern"`
	Answer           *string  `json:"answer"`
	Category         *string  `json:"category"`
	ConfidenceScore  *float64 `json:"confidence_score"`
	RequiresApproval *bool    `json:"requires_approval"`
}

// UnansweredQuestion is a query that failed to clear the match threshold,
// captured for admin review. Repeated identical questions each get a row.
type UnansweredQuestion struct {
	ID              string    `json:"id"` // UUID
	Question        string    `json:"question"`
	UserSession     *string   `json:"user_session,omitempty"`
	PageURL         *string   `json:"page_url"`
	SuggestedAnswer *string   `json:"suggested_answer"`
	IsResolved      bool      `json:"is_resolved"`
	AdminNotes      *string   `json:"admin_notes"`
	CreatedAt       time.Time `json:"created_at"`
}

// PageContext carries per-route background info consumed by the chat widget.
type PageContext struct {
	ID          string    `json:"id"` // UUID
	PageRoute   string    `json:"page_route"`
	PageName    string    `json:"page_name"`
	Description string    `json:"description"`
	KeyTopics   []string  `json:"key_topics"`
	DesignNotes string    `json:"design_notes"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Stats are the aggregate counters behind the admin dashboard.
type Stats struct {
	TotalScripts         int64   `json:"total_scripts"`
	LearnedScripts       int64   `json:"learned_scripts"`
	PendingQuestions     int64   `json:"pending_questions"`
	TotalQueriesAnswered int64   `json:"total_queries_answered"`
	LearningRate         float64 `json:"learning_rate"`
}

// Site content entities. These are plain CRUD collaborators of the chat core;
// no logic beyond validation and persistence.

// PageUpdate, SystemUpdate and SocialLinkUpdate are sparse updates in the
// same style as ScriptUpdate: nil fields are left untouched and each field is
// merged explicitly.

type PageUpdate struct {
	Title           *string `json:"title"`
	Content         *string `json:"content"`
	MetaDescription *string `json:"meta_description"`
	IsPublished     *bool   `json:"is_published"`
}

type SystemUpdate struct {
	Name         *string   `json:"name"`
	Slug         *string   `json:"slug"`
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	KeyFeatures  *[]string `json:"key_features"`
	LearnMoreURL *string   `json:"learn_more_url"`
	Icon         *string   `json:"icon"`
	Order        *int      `json:"order"`
	IsActive     *bool     `json:"is_active"`
}

type SocialLinkUpdate struct {
	Platform *string `json:"platform"`
	URL      *string `json:"url"`
	Icon     *string `json:"icon"`
	IsActive *bool   `json:"is_active"`
	Order    *int    `json:"order"`
}

type Page struct {
	ID              string    `json:"id"` // UUID
	Name            string    `json:"name"` // e.g. "home", "contact"
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	MetaDescription string    `json:"meta_description"`
	IsPublished     bool      `json:"is_published"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type System struct {
	ID           string    `json:"id"` // UUID
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	KeyFeatures  []string  `json:"key_features"`
	LearnMoreURL string    `json:"learn_more_url"`
	Icon         string    `json:"icon"`
	Order        int       `json:"order"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type SocialLink struct {
	ID        string    `json:"id"` // UUID
	Platform  string    `json:"platform"`
	URL       string    `json:"url"`
	Icon      string    `json:"icon"`
	IsActive  bool      `json:"is_active"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
