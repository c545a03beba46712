package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fms-portal/suggestion-api/internal/models"
	"github.com/fms-portal/suggestion-api/pkg/config"
	appErrors "github.com/fms-portal/suggestion-api/pkg/errors"
)

type memoryStore struct {
	values map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: make(map[string][]byte)}
}

func (m *memoryStore) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = raw
	return nil
}

func (m *memoryStore) Delete(ctx context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func newWizardFixture(reset bool) *WizardService {
	return NewWizardService(newMemoryStore(), config.WizardConfig{ResetAfterSubmit: reset, SessionTTL: 30 * time.Minute}, zap.NewNop())
}

func TestWizardStartAtRoleStep(t *testing.T) {
	svc := newWizardFixture(false)

	state, err := svc.Start(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, state.ID)
	assert.Equal(t, models.StepRole, state.Current())
}

func TestWizardForwardFlow(t *testing.T) {
	svc := newWizardFixture(false)
	ctx := context.Background()

	state, err := svc.Start(ctx)
	require.NoError(t, err)

	state, err = svc.ChooseRole(ctx, state.ID, models.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, models.StepDepartment, state.Current())

	state, err = svc.ChooseDepartment(ctx, state.ID, "Department of Tourism Management")
	require.NoError(t, err)
	assert.Equal(t, models.StepCompose, state.Current())
	assert.Equal(t, "tourism", state.Theme)
}

func TestWizardDepartmentRequiresRole(t *testing.T) {
	svc := newWizardFixture(false)
	ctx := context.Background()

	state, err := svc.Start(ctx)
	require.NoError(t, err)

	_, err = svc.ChooseDepartment(ctx, state.ID, "Department of Tourism Management")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestWizardStackCollapsesAdjacentDuplicates(t *testing.T) {
	svc := newWizardFixture(false)
	ctx := context.Background()

	state, err := svc.Start(ctx)
	require.NoError(t, err)

	// Re-choosing a role while already on the department step must not
	// grow the stack.
	state, err = svc.ChooseRole(ctx, state.ID, models.RoleStudent)
	require.NoError(t, err)
	state, err = svc.ChooseRole(ctx, state.ID, models.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, []int{models.StepRole, models.StepDepartment}, state.Stack)
	assert.Equal(t, models.RoleTeacher, state.Role)
}

func TestWizardBackRetracesAndBottomsOut(t *testing.T) {
	svc := newWizardFixture(false)
	ctx := context.Background()

	state, err := svc.Start(ctx)
	require.NoError(t, err)
	state, err = svc.ChooseRole(ctx, state.ID, models.RoleStudent)
	require.NoError(t, err)
	state, err = svc.ChooseDepartment(ctx, state.ID, "Department of Business Management")
	require.NoError(t, err)

	state, err = svc.Back(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StepDepartment, state.Current())

	state, err = svc.Back(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StepRole, state.Current())

	// Back on the first step stays on the first step.
	state, err = svc.Back(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StepRole, state.Current())
}

func TestWizardCompleteKeepsChoicesByDefault(t *testing.T) {
	svc := newWizardFixture(false)
	ctx := context.Background()

	state, err := svc.Start(ctx)
	require.NoError(t, err)
	state, err = svc.ChooseRole(ctx, state.ID, models.RoleStudent)
	require.NoError(t, err)
	state, err = svc.ChooseDepartment(ctx, state.ID, "Department of Business Management")
	require.NoError(t, err)

	state, err = svc.Complete(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, state.Role)
	assert.Equal(t, "Department of Business Management", state.Department)
	assert.Equal(t, models.StepRole, state.Current())
}

func TestWizardCompleteResetsWhenConfigured(t *testing.T) {
	svc := newWizardFixture(true)
	ctx := context.Background()

	state, err := svc.Start(ctx)
	require.NoError(t, err)
	state, err = svc.ChooseRole(ctx, state.ID, models.RoleTeacher)
	require.NoError(t, err)
	state, err = svc.ChooseDepartment(ctx, state.ID, "Department of Marketing Management")
	require.NoError(t, err)

	state, err = svc.Complete(ctx, state.ID)
	require.NoError(t, err)
	assert.Empty(t, state.Role)
	assert.Empty(t, state.Department)
	assert.Empty(t, state.Theme)
	assert.Equal(t, models.StepRole, state.Current())
}

func TestWizardExpiredSessionReadsAsNotFound(t *testing.T) {
	svc := newWizardFixture(false)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
