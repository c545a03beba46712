package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fms-portal/suggestion-api/internal/models"
	appErrors "github.com/fms-portal/suggestion-api/pkg/errors"
)

type sheetReader interface {
	GetSuggestions(ctx context.Context) ([]models.Suggestion, error)
	SubmitResponse(ctx context.Context, rowIndex int, responseText, respondedBy string, respondedAt time.Time) error
}

type suggestionSnapshot interface {
	BeginBusy() bool
	EndBusy()
	Replace(records []models.Suggestion)
	Fail(err error)
	Records() []models.Suggestion
	Loaded() (bool, time.Time)
	LastError() error
	Patch(id string, mutate func(*models.Suggestion)) bool
	Find(id string) (models.Suggestion, bool)
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// SuggestionService serves the admin dashboard: it keeps the in-memory
// snapshot of the sheet in sync and mediates every read and response
// through the access policy.
type SuggestionService struct {
	client   sheetReader
	snapshot suggestionSnapshot
	audit    auditWriter
	logger   *zap.Logger
}

// NewSuggestionService constructs a SuggestionService instance.
func NewSuggestionService(client sheetReader, snapshot suggestionSnapshot, audit auditWriter, logger *zap.Logger) *SuggestionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SuggestionService{client: client, snapshot: snapshot, audit: audit, logger: logger}
}

// RespondRequest is the payload for answering a suggestion.
type RespondRequest struct {
	SuggestionID string `json:"suggestion_id" validate:"required"`
	Response     string `json:"response" validate:"required"`
}

// Reload fetches the full record set from the sheet and replaces the
// snapshot. Only one reload or response submission runs at a time;
// contention is surfaced as a retryable conflict, never queued.
func (s *SuggestionService) Reload(ctx context.Context) error {
	if !s.snapshot.BeginBusy() {
		return appErrors.ErrBusy
	}
	defer s.snapshot.EndBusy()

	return s.reloadLocked(ctx)
}

// reloadLocked performs the fetch while the caller holds the busy
// region. A failed reload drops the previous records: the dashboard
// shows the error with a retry rather than a stale list.
func (s *SuggestionService) reloadLocked(ctx context.Context) error {
	records, err := s.client.GetSuggestions(ctx)
	if err != nil {
		s.snapshot.Fail(err)
		s.logger.Error("suggestion reload failed", zap.Error(err))
		return err
	}

	// Canonical order: newest first, fetch order breaking ties.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].SubmittedAt.After(records[j].SubmittedAt)
	})

	s.snapshot.Replace(records)
	s.logger.Info("suggestion snapshot reloaded", zap.Int("count", len(records)))
	return nil
}

// View returns the filtered, sorted dashboard projection for the admin.
// The first request after startup loads the snapshot lazily.
func (s *SuggestionService) View(ctx context.Context, admin models.AdminInfo, filter models.FilterState, key models.SortKey) (models.SuggestionView, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return models.SuggestionView{}, err
	}

	visible := VisibleSuggestions(admin, s.snapshot.Records())
	return BuildView(visible, filter, key, admin), nil
}

// Get returns a single record, subject to tier visibility. A record
// outside the admin's tier reads as not found rather than forbidden, so
// the response does not leak that the row exists.
func (s *SuggestionService) Get(ctx context.Context, admin models.AdminInfo, id string) (models.Suggestion, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return models.Suggestion{}, err
	}

	record, ok := s.snapshot.Find(id)
	if !ok || !CanView(admin, record) {
		return models.Suggestion{}, appErrors.Clone(appErrors.ErrNotFound, "suggestion not found")
	}
	return record, nil
}

// Respond writes an admin response to the sheet, patches the local copy
// and then reconciles with a full reload. The tier check runs before any
// network traffic, so a read-only superadmin is rejected locally.
func (s *SuggestionService) Respond(ctx context.Context, admin models.AdminInfo, req RespondRequest) (models.Suggestion, error) {
	if !CanRespond(admin.AccessLevel) {
		return models.Suggestion{}, appErrors.Clone(appErrors.ErrForbidden, "read-only access level cannot respond")
	}

	responseText := strings.TrimSpace(req.Response)
	if responseText == "" {
		return models.Suggestion{}, appErrors.Clone(appErrors.ErrValidation, "response must not be empty")
	}

	if !s.snapshot.BeginBusy() {
		return models.Suggestion{}, appErrors.ErrBusy
	}
	defer s.snapshot.EndBusy()

	// The snapshot may be empty right after startup or after a failed
	// reload. Load it here so the lookup below judges current data.
	if loaded, _ := s.snapshot.Loaded(); !loaded {
		if err := s.reloadLocked(ctx); err != nil {
			return models.Suggestion{}, err
		}
	}

	record, ok := s.snapshot.Find(req.SuggestionID)
	if !ok || !CanView(admin, record) {
		return models.Suggestion{}, appErrors.Clone(appErrors.ErrNotFound, "suggestion not found")
	}
	if record.Responded() {
		return models.Suggestion{}, appErrors.Clone(appErrors.ErrValidation, "suggestion already has a response")
	}

	respondedAt := time.Now().UTC()
	if err := s.client.SubmitResponse(ctx, record.RowIndex, responseText, admin.DisplayName, respondedAt); err != nil {
		return models.Suggestion{}, err
	}

	// Optimistic local patch so the record reads consistently even if the
	// reconciling reload below fails.
	s.snapshot.Patch(record.ID, func(r *models.Suggestion) {
		r.Status = models.StatusResponded
		r.Response = responseText
		r.RespondedBy = admin.DisplayName
	})

	if err := s.reloadLocked(ctx); err != nil {
		s.logger.Warn("reload after response failed", zap.Error(err))
	}

	s.recordRespondAudit(ctx, admin, record.ID)

	updated, ok := s.snapshot.Find(record.ID)
	if !ok {
		// The reconciling reload failed and dropped the snapshot. The
		// write itself succeeded, so report the patched record.
		record.Status = models.StatusResponded
		record.Response = responseText
		record.RespondedBy = admin.DisplayName
		return record, nil
	}
	return updated, nil
}

// Status describes the snapshot freshness for the dashboard header.
type SnapshotStatus struct {
	Loaded    bool       `json:"loaded"`
	LoadedAt  *time.Time `json:"loaded_at,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

// Status reports whether the snapshot holds a successful load.
func (s *SuggestionService) Status() SnapshotStatus {
	loaded, loadedAt := s.snapshot.Loaded()
	status := SnapshotStatus{Loaded: loaded}
	if loaded {
		status.LoadedAt = &loadedAt
	}
	if err := s.snapshot.LastError(); err != nil {
		status.LastError = err.Error()
	}
	return status
}

func (s *SuggestionService) ensureLoaded(ctx context.Context) error {
	if loaded, _ := s.snapshot.Loaded(); loaded {
		return nil
	}
	err := s.Reload(ctx)
	if err == nil {
		return nil
	}
	// A concurrent caller may have finished the first load while this one
	// was rejected by the busy guard.
	if loaded, _ := s.snapshot.Loaded(); loaded {
		return nil
	}
	return err
}

func (s *SuggestionService) recordRespondAudit(ctx context.Context, admin models.AdminInfo, suggestionID string) {
	if s.audit == nil {
		return
	}
	details, _ := json.Marshal(map[string]string{"suggestion_id": suggestionID})
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		AdminID:    &admin.ID,
		Action:     models.AuditActionRespond,
		Resource:   "suggestion",
		ResourceID: &suggestionID,
		Details:    details,
	}); err != nil {
		s.logger.Warn("failed to record response audit log", zap.Error(err))
	}
}
