package sheet

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fms-portal/suggestion-api/internal/models"
)

// flexID tolerates the Apps Script endpoint emitting row ids as either
// numbers or strings.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		*f = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// Record is the wire format of one suggestion row.
type Record struct {
	ID            flexID `json:"id"`
	Department    string `json:"department"`
	Role          string `json:"role"`
	Suggestion    string `json:"suggestion"`
	SenderEmail   string `json:"senderEmail"`
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
	AdminResponse string `json:"adminResponse"`
	RespondedBy   string `json:"respondedBy"`
	IsAnonymous   bool   `json:"isAnonymous"`
	TrackingID    string `json:"trackingId"`
	RowIndex      int    `json:"rowIndex"`
}

// ToSuggestion converts a wire record into the domain shape. index is
// the record's position in the payload, used as an id fallback for
// legacy rows written before the sheet assigned ids.
func (r Record) ToSuggestion(index int) models.Suggestion {
	id := string(r.ID)
	if id == "" {
		id = strconv.Itoa(index + 1)
	}

	status := models.SuggestionStatus(r.Status)
	if status != models.StatusResponded {
		status = models.StatusNew
	}

	return models.Suggestion{
		ID:             id,
		Department:     r.Department,
		Role:           r.Role,
		Content:        r.Suggestion,
		SubmitterEmail: r.SenderEmail,
		Status:         status,
		SubmittedAt:    parseTimestamp(r.Timestamp),
		Response:       r.AdminResponse,
		RespondedBy:    r.RespondedBy,
		IsAnonymous:    r.IsAnonymous,
		TrackingID:     r.TrackingID,
		RowIndex:       r.RowIndex,
	}
}

func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}

// Submission is the public form payload written to the sheet.
type Submission struct {
	Role        string `json:"role"`
	Department  string `json:"department"`
	Suggestion  string `json:"suggestion"`
	SenderEmail string `json:"senderEmail"`
	Timestamp   string `json:"timestamp"`
	IsAnonymous bool   `json:"isAnonymous"`
	TrackingID  string `json:"trackingId,omitempty"`
}

type listEnvelope struct {
	Success     bool     `json:"success"`
	Suggestions []Record `json:"suggestions"`
	Message     string   `json:"message"`
}

type searchEnvelope struct {
	Success bool     `json:"success"`
	Results []Record `json:"results"`
	Message string   `json:"message"`
}

type ackEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type responsePayload struct {
	Action      string `json:"action"`
	RowIndex    int    `json:"rowIndex"`
	Response    string `json:"response"`
	RespondedBy string `json:"respondedBy"`
	RespondedAt string `json:"respondedAt"`
}

func (e ackEnvelope) err() error {
	if e.Message != "" {
		return fmt.Errorf("sheet rejected request: %s", e.Message)
	}
	return fmt.Errorf("sheet rejected request")
}
