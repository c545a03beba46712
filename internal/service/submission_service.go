package service

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fms-portal/suggestion-api/internal/models"
	"github.com/fms-portal/suggestion-api/internal/sheet"
	appErrors "github.com/fms-portal/suggestion-api/pkg/errors"
)

type sheetSubmitter interface {
	SubmitSuggestion(ctx context.Context, submission sheet.Submission) error
	SearchByTrackingID(ctx context.Context, trackingID string) ([]models.Suggestion, error)
	SearchByEmail(ctx context.Context, email string) ([]models.Suggestion, error)
}

// SubmissionService handles the public suggestion form: validation,
// anonymity handling and the tracking id contract for anonymous senders.
type SubmissionService struct {
	client    sheetSubmitter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(client sheetSubmitter, validate *validator.Validate, logger *zap.Logger) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SubmissionService{client: client, validator: validate, logger: logger}
}

// SubmitRequest is the public submission payload. Website is a honeypot
// field: humans never see it, bots fill it.
type SubmitRequest struct {
	Role        string `json:"role" validate:"required"`
	Department  string `json:"department" validate:"required"`
	Suggestion  string `json:"suggestion" validate:"required"`
	SenderEmail string `json:"sender_email"`
	IsAnonymous bool   `json:"is_anonymous"`
	Website     string `json:"website"`
}

// SubmitResult is returned after a successful submission. TrackingID is
// only set for anonymous submissions; it is the sender's sole handle on
// their entry.
type SubmitResult struct {
	TrackingID  string    `json:"tracking_id,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Submit validates and forwards a suggestion to the sheet.
func (s *SubmissionService) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	// Honeypot trip: report success so the bot learns nothing, write
	// nothing.
	if strings.TrimSpace(req.Website) != "" {
		s.logger.Info("honeypot tripped, submission dropped")
		return &SubmitResult{SubmittedAt: time.Now().UTC()}, nil
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}

	content := strings.TrimSpace(req.Suggestion)
	if content == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "suggestion must not be empty")
	}
	// The cap counts characters, not bytes, so multibyte scripts get the
	// same room as ASCII.
	if utf8.RuneCountInString(content) > models.MaxSuggestionLength {
		return nil, appErrors.Clone(appErrors.ErrValidation, "suggestion exceeds maximum length")
	}

	if req.Role != models.RoleStudent && req.Role != models.RoleTeacher {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}
	if !models.KnownDepartment(req.Department) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown department")
	}

	submittedAt := time.Now().UTC()
	submission := sheet.Submission{
		Role:        req.Role,
		Department:  req.Department,
		Suggestion:  content,
		Timestamp:   submittedAt.Format(time.RFC3339),
		IsAnonymous: req.IsAnonymous,
	}

	result := &SubmitResult{SubmittedAt: submittedAt}

	if req.IsAnonymous {
		// Anonymous rows carry a sentinel instead of a blank email so the
		// sheet column stays uniform, plus a tracking id for follow up.
		submission.SenderEmail = models.AnonymousEmailSentinel
		submission.TrackingID = GenerateTrackingID()
		result.TrackingID = submission.TrackingID
	} else {
		email := strings.TrimSpace(req.SenderEmail)
		if err := s.validator.Var(email, "required,email"); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "a valid email is required for attributed submissions")
		}
		submission.SenderEmail = email
	}

	if err := s.client.SubmitSuggestion(ctx, submission); err != nil {
		return nil, err
	}

	s.logger.Info("suggestion submitted",
		zap.String("department", submission.Department),
		zap.String("role", submission.Role),
		zap.Bool("anonymous", submission.IsAnonymous),
	)
	return result, nil
}

// TrackByID looks up anonymous submissions by tracking id.
func (s *SubmissionService) TrackByID(ctx context.Context, trackingID string) ([]models.Suggestion, error) {
	trackingID = strings.ToUpper(strings.TrimSpace(trackingID))
	if trackingID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tracking id is required")
	}
	return s.client.SearchByTrackingID(ctx, trackingID)
}

// TrackByEmail looks up attributed submissions by sender email.
func (s *SubmissionService) TrackByEmail(ctx context.Context, email string) ([]models.Suggestion, error) {
	email = strings.TrimSpace(email)
	if err := s.validator.Var(email, "required,email"); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a valid email is required")
	}
	return s.client.SearchByEmail(ctx, email)
}

// GenerateTrackingID produces an uppercased id of the form
// <base36 unix-millis>-<4 base36 chars>. The millisecond prefix keeps
// ids roughly sortable; the random suffix separates same-millisecond
// submissions.
func GenerateTrackingID() string {
	prefix := strconv.FormatInt(time.Now().UnixMilli(), 36)

	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffix := make([]byte, 4)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			suffix[i] = alphabet[time.Now().UnixNano()%int64(len(alphabet))]
			continue
		}
		suffix[i] = alphabet[n.Int64()]
	}

	return strings.ToUpper(prefix + "-" + string(suffix))
}
