package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fms-portal/suggestion-api/internal/models"
	"github.com/fms-portal/suggestion-api/pkg/config"
	appErrors "github.com/fms-portal/suggestion-api/pkg/errors"
)

type wizardStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// WizardService drives the public submission wizard. Each visitor's
// progress lives in Redis under an opaque session id; the navigation
// stack lets Back retrace visited steps without duplicate entries.
type WizardService struct {
	store  wizardStore
	config config.WizardConfig
	logger *zap.Logger
}

// NewWizardService constructs a WizardService instance.
func NewWizardService(store wizardStore, cfg config.WizardConfig, logger *zap.Logger) *WizardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WizardService{store: store, config: cfg, logger: logger}
}

func wizardKey(id string) string {
	return fmt.Sprintf("wizard:session:%s", id)
}

// Start creates a fresh wizard session positioned on the role step.
func (s *WizardService) Start(ctx context.Context) (*models.WizardState, error) {
	state := &models.WizardState{
		ID:        uuid.NewString(),
		Stack:     []int{models.StepRole},
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Get loads an existing wizard session.
func (s *WizardService) Get(ctx context.Context, sessionID string) (*models.WizardState, error) {
	var state models.WizardState
	if err := s.store.Get(ctx, wizardKey(sessionID), &state); err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrCacheMiss.Code {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "wizard session not found or expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load wizard session")
	}
	return &state, nil
}

// ChooseRole records the visitor's role and advances to the department
// step.
func (s *WizardService) ChooseRole(ctx context.Context, sessionID, role string) (*models.WizardState, error) {
	if role != models.RoleStudent && role != models.RoleTeacher {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}

	state, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	state.Role = role
	state.Visit(models.StepDepartment)
	if err := s.save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// ChooseDepartment records the department, applies its theme and
// advances to the compose step.
func (s *WizardService) ChooseDepartment(ctx context.Context, sessionID, department string) (*models.WizardState, error) {
	var chosen *models.Department
	for i := range models.Departments {
		if models.Departments[i].Name == department {
			chosen = &models.Departments[i]
			break
		}
	}
	if chosen == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown department")
	}

	state, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.Role == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "choose a role first")
	}

	state.Department = chosen.Name
	state.Theme = chosen.Theme
	state.Visit(models.StepCompose)
	if err := s.save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Back pops the navigation stack and returns the restored state.
func (s *WizardService) Back(ctx context.Context, sessionID string) (*models.WizardState, error) {
	state, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	state.Back()
	if err := s.save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Complete finalises a session after a successful submission. Depending
// on configuration the role and department choices either persist for a
// follow-up suggestion or reset to a fresh role step.
func (s *WizardService) Complete(ctx context.Context, sessionID string) (*models.WizardState, error) {
	state, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if s.config.ResetAfterSubmit {
		state.Role = ""
		state.Department = ""
		state.Theme = ""
	}
	state.Stack = []int{models.StepRole}

	if err := s.save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Abandon discards a session outright.
func (s *WizardService) Abandon(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, wizardKey(sessionID)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete wizard session")
	}
	return nil
}

// DepartmentDirectory returns the public faculty directory.
func (s *WizardService) DepartmentDirectory() []models.Department {
	return models.Departments
}

func (s *WizardService) save(ctx context.Context, state *models.WizardState) error {
	state.UpdatedAt = time.Now().UTC()
	if err := s.store.Set(ctx, wizardKey(state.ID), state, s.config.SessionTTL); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist wizard session")
	}
	return nil
}
