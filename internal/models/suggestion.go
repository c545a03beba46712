package models

import "time"

// SuggestionStatus tracks the response lifecycle. The only legal
// transition is new -> responded.
type SuggestionStatus string

const (
	StatusNew       SuggestionStatus = "new"
	StatusResponded SuggestionStatus = "responded"
)

// Submitter roles as stored in the sheet. Teachers are displayed as
// "Lecturer" but stored as "Teacher".
const (
	RoleStudent = "Student"
	RoleTeacher = "Teacher"
)

// AnonymousEmailSentinel replaces the submitter email on anonymous
// submissions so the real address never reaches the sheet.
const AnonymousEmailSentinel = "ANONYMOUS"

// MaxSuggestionLength caps suggestion content.
const MaxSuggestionLength = 5000

// Suggestion mirrors one row of the remote spreadsheet.
type Suggestion struct {
	ID             string           `json:"id"`
	Department     string           `json:"department"`
	Role           string           `json:"role"`
	Content        string           `json:"content"`
	SubmitterEmail string           `json:"submitter_email,omitempty"`
	Status         SuggestionStatus `json:"status"`
	SubmittedAt    time.Time        `json:"submitted_at"`
	Response       string           `json:"response,omitempty"`
	RespondedBy    string           `json:"responded_by,omitempty"`
	IsAnonymous    bool             `json:"is_anonymous"`
	TrackingID     string           `json:"tracking_id,omitempty"`
	// RowIndex is the opaque handle back to the sheet row; it is only
	// meaningful to the remote service.
	RowIndex int `json:"row_index"`
}

// Responded reports whether the record already carries a response.
func (s *Suggestion) Responded() bool {
	return s.Status == StatusResponded
}

// FilterState captures the dashboard's local filter controls. Zero
// values mean "all". It is never persisted.
type FilterState struct {
	Status     string `form:"status" json:"status"`
	Department string `form:"department" json:"department"`
	UserType   string `form:"userType" json:"user_type"`
}

// SortKey orders the dashboard list.
type SortKey string

const (
	SortNewest SortKey = "newest"
	SortOldest SortKey = "oldest"
)

// SuggestionView is a filtered, ordered projection of the snapshot
// together with the auto-selected record. SelectedID is empty when the
// view is empty, never stale.
type SuggestionView struct {
	Suggestions []Suggestion `json:"suggestions"`
	Total       int          `json:"total"`
	SelectedID  string       `json:"selected_id,omitempty"`
}
