package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/b4platform/b4-backend/pkg/auth"
	"github.com/b4platform/b4-backend/pkg/config"
	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
	pkgerrors "github.com/b4platform/b4-backend/pkg/errors"
	"github.com/b4platform/b4-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "b4-test",
	ExpirationMinutes: 15,
}

type fakeUserRepo struct {
	user *models.User
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.user == nil || f.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return f.user, nil
}

func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

type fakeRoleLister struct {
	roles []enums.PlatformRole
}

func (f *fakeRoleLister) RolesFor(ctx context.Context, userID uuid.UUID) ([]models.UserRole, error) {
	grants := make([]models.UserRole, 0, len(f.roles))
	for _, role := range f.roles {
		grants = append(grants, models.UserRole{UserID: userID, Role: role})
	}
	return grants, nil
}

type fakePrimaryRoleLookup struct {
	primary *enums.PrimaryRole
}

func (f *fakePrimaryRoleLookup) PrimaryRoleFor(ctx context.Context, userID uuid.UUID) (*enums.PrimaryRole, error) {
	if f.primary == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.primary, nil
}

type fakeSessionManager struct {
	generated []string
}

func (f *fakeSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	f.generated = append(f.generated, accessID)
	return "refresh-" + accessID, nil
}

func seededUser(t *testing.T, email, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		IsActive:     true,
	}
}

func newLoginService(t *testing.T, userRepo userRepository, roles roleLister, onboarding primaryRoleLookup) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       userRepo,
		RoleRepo:       roles,
		OnboardingRepo: onboarding,
		SessionManager: &fakeSessionManager{},
		JWTConfig:      testJWTConfig,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestLoginMintsRoleAndPrimaryRoleClaims(t *testing.T) {
	user := seededUser(t, "founder@example.com", "pass-word-123")
	primary := enums.PrimaryRoleEntrepreneur
	svc := newLoginService(t,
		&fakeUserRepo{user: user},
		&fakeRoleLister{roles: []enums.PlatformRole{enums.PlatformRoleCoBuilder, enums.PlatformRoleEntrepreneur}},
		&fakePrimaryRoleLookup{primary: &primary},
	)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "Founder@Example.com ", Password: "pass-word-123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.PlatformRoleEntrepreneur {
		t.Fatalf("expected entrepreneur claim to win precedence, got %s", claims.Role)
	}
	if claims.PrimaryRole == nil || *claims.PrimaryRole != enums.PrimaryRoleEntrepreneur {
		t.Fatalf("expected primary role claim, got %v", claims.PrimaryRole)
	}
	if resp.RefreshToken == "" {
		t.Fatal("expected refresh token")
	}
	if len(resp.Roles) != 2 {
		t.Fatalf("expected both granted roles in response, got %v", resp.Roles)
	}
}

func TestLoginWithoutGrantsFallsBackToUserRole(t *testing.T) {
	user := seededUser(t, "new@example.com", "pass-word-123")
	svc := newLoginService(t, &fakeUserRepo{user: user}, &fakeRoleLister{}, &fakePrimaryRoleLookup{})

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "new@example.com", Password: "pass-word-123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.PlatformRoleUser {
		t.Fatalf("expected user role, got %s", claims.Role)
	}
	if claims.PrimaryRole != nil {
		t.Fatalf("expected no primary role, got %v", claims.PrimaryRole)
	}
}

func TestLoginRejectsBadPasswordAndInactiveUser(t *testing.T) {
	user := seededUser(t, "locked@example.com", "pass-word-123")
	svc := newLoginService(t, &fakeUserRepo{user: user}, &fakeRoleLister{}, &fakePrimaryRoleLookup{})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "locked@example.com", Password: "wrong"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED for bad password, got %v", err)
	}

	user.IsActive = false
	_, err = svc.Login(context.Background(), LoginRequest{Email: "locked@example.com", Password: "pass-word-123"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED for inactive user, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newLoginService(t, &fakeUserRepo{}, &fakeRoleLister{}, &fakePrimaryRoleLookup{})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestAdminLoginRequiresSystemRole(t *testing.T) {
	user := seededUser(t, "ops@example.com", "pass-word-123")
	svc := newLoginService(t, &fakeUserRepo{user: user}, &fakeRoleLister{}, &fakePrimaryRoleLookup{})

	_, err := svc.AdminLogin(context.Background(), LoginRequest{Email: "ops@example.com", Password: "pass-word-123"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED without admin system role, got %v", err)
	}

	adminRole := "admin"
	user.SystemRole = &adminRole
	resp, err := svc.AdminLogin(context.Background(), LoginRequest{Email: "ops@example.com", Password: "pass-word-123"})
	if err != nil {
		t.Fatalf("AdminLogin: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.PlatformRoleAdmin {
		t.Fatalf("expected admin claim, got %s", claims.Role)
	}
}
