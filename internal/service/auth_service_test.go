package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fms-portal/suggestion-api/internal/models"
	appErrors "github.com/fms-portal/suggestion-api/pkg/errors"
)

type mockAuthRepo struct {
	adminByUsername   *models.Admin
	adminByID         *models.Admin
	findErr           error
	refreshTokens     map[string]*models.RefreshToken
	updatePasswordErr error
	auditLogs         []*models.AuditLog
	loginHistory      []*models.LoginHistoryEntry
	failedAttempts    []*models.FailedAttempt
	lastLoginUpdated  bool
	lastSeenUpdated   bool
	revokedAll        bool
}

func (m *mockAuthRepo) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.adminByUsername == nil {
		return nil, sql.ErrNoRows
	}
	return m.adminByUsername, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	if m.adminByID != nil {
		return m.adminByID, nil
	}
	if m.adminByUsername != nil {
		return m.adminByUsername, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthRepo) UpdateLastSeen(ctx context.Context, id string, ts time.Time) error {
	m.lastSeenUpdated = true
	return nil
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if m.updatePasswordErr != nil {
		return m.updatePasswordErr
	}
	if m.adminByUsername != nil && m.adminByUsername.ID == id {
		m.adminByUsername.PasswordHash = passwordHash
	}
	return nil
}

func (m *mockAuthRepo) RevokeAdminRefreshTokens(ctx context.Context, adminID string) error {
	m.revokedAll = true
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range m.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockAuthRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func (m *mockAuthRepo) AppendLoginHistory(ctx context.Context, entry *models.LoginHistoryEntry) error {
	m.loginHistory = append(m.loginHistory, entry)
	return nil
}

func (m *mockAuthRepo) AppendFailedAttempt(ctx context.Context, attempt *models.FailedAttempt) error {
	m.failedAttempts = append(m.failedAttempts, attempt)
	return nil
}

func (m *mockAuthRepo) ListLoginHistory(ctx context.Context) ([]models.LoginHistoryEntry, error) {
	entries := make([]models.LoginHistoryEntry, 0, len(m.loginHistory))
	for _, e := range m.loginHistory {
		entries = append(entries, *e)
	}
	return entries, nil
}

func (m *mockAuthRepo) ListFailedAttempts(ctx context.Context) ([]models.FailedAttempt, error) {
	attempts := make([]models.FailedAttempt, 0, len(m.failedAttempts))
	for _, a := range m.failedAttempts {
		attempts = append(attempts, *a)
	}
	return attempts, nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
	}
}

func activeAdmin(t *testing.T, password string) *models.Admin {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	return &models.Admin{
		ID:           "a1",
		Username:     "bm.admin@fms.edu",
		PasswordHash: string(hash),
		DisplayName:  "BM Department Admin",
		Department:   "Department of Business Management",
		AccessLevel:  models.AccessDepartment,
		Active:       true,
	}
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := &mockAuthRepo{adminByUsername: activeAdmin(t, "password")}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "bm.admin@fms.edu", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, models.AccessDepartment, res.Admin.AccessLevel)
	assert.True(t, repo.lastLoginUpdated)
	require.Len(t, repo.loginHistory, 1)
	assert.Equal(t, models.AuditActionLogin, repo.loginHistory[0].Action)
	require.Len(t, repo.auditLogs, 1)
}

func TestAuthServiceLoginWrongPasswordRecordsFailedAttempt(t *testing.T) {
	repo := &mockAuthRepo{adminByUsername: activeAdmin(t, "password")}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "bm.admin@fms.edu", Password: "wrong", IP: "10.0.0.1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
	require.Len(t, repo.failedAttempts, 1)
	assert.Equal(t, "bm.admin@fms.edu", repo.failedAttempts[0].Username)
	assert.Equal(t, "10.0.0.1", repo.failedAttempts[0].IPAddress)
	assert.Empty(t, repo.loginHistory)
}

func TestAuthServiceLoginUnknownUserRecordsFailedAttempt(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "nobody@fms.edu", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
	assert.Len(t, repo.failedAttempts, 1)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	admin := activeAdmin(t, "password")
	admin.Active = false
	repo := &mockAuthRepo{adminByUsername: admin}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "bm.admin@fms.edu", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshTokenRotates(t *testing.T) {
	admin := activeAdmin(t, "password")
	repo := &mockAuthRepo{adminByUsername: admin, adminByID: admin, refreshTokens: map[string]*models.RefreshToken{
		"token": {ID: "rt1", AdminID: admin.ID, Token: "token", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	res, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "token"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEqual(t, "token", res.RefreshToken)
	assert.True(t, repo.refreshTokens["token"].Revoked)
}

func TestAuthServiceRefreshTokenExpired(t *testing.T) {
	admin := activeAdmin(t, "password")
	repo := &mockAuthRepo{adminByUsername: admin, refreshTokens: map[string]*models.RefreshToken{
		"token": {ID: "rt1", AdminID: admin.ID, Token: "token", ExpiresAt: time.Now().Add(-time.Minute)},
	}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "token"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogout(t *testing.T) {
	admin := activeAdmin(t, "password")
	repo := &mockAuthRepo{adminByUsername: admin, refreshTokens: map[string]*models.RefreshToken{
		"token": {ID: "rt1", AdminID: admin.ID, Token: "token", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	claims := &models.JWTClaims{AdminID: admin.ID, Username: admin.Username, DisplayName: admin.DisplayName, Department: admin.Department, AccessLevel: admin.AccessLevel}
	err := svc.Logout(context.Background(), "token", claims, "10.0.0.1", "test-agent")
	require.NoError(t, err)
	assert.True(t, repo.refreshTokens["token"].Revoked)
	assert.True(t, repo.lastSeenUpdated)
	require.Len(t, repo.loginHistory, 1)
	assert.Equal(t, models.AuditActionLogout, repo.loginHistory[0].Action)
}

func TestAuthServiceLogoutForeignToken(t *testing.T) {
	admin := activeAdmin(t, "password")
	repo := &mockAuthRepo{adminByUsername: admin, refreshTokens: map[string]*models.RefreshToken{
		"token": {ID: "rt1", AdminID: "someone-else", Token: "token", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	claims := &models.JWTClaims{AdminID: admin.ID}
	err := svc.Logout(context.Background(), "token", claims, "", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceChangePassword(t *testing.T) {
	admin := activeAdmin(t, "old-password")
	oldHash := admin.PasswordHash
	repo := &mockAuthRepo{adminByUsername: admin, adminByID: admin}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	err := svc.ChangePassword(context.Background(), admin.ID, ChangePasswordRequest{OldPassword: "old-password", NewPassword: "new-password"})
	require.NoError(t, err)
	assert.NotEqual(t, oldHash, admin.PasswordHash)
	assert.True(t, repo.revokedAll)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())
	admin := activeAdmin(t, "password")

	token, _, err := svc.generateAccessToken(admin)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.AdminID)
	assert.Equal(t, models.AccessDepartment, claims.AccessLevel)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, validator.New(), zap.NewNop(), testAuthConfig())
	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
