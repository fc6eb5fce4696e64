package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/ridelinehq/ridegear-backend/pkg/auth"
	"github.com/ridelinehq/ridegear-backend/pkg/auth/session"
	"github.com/ridelinehq/ridegear-backend/pkg/config"
	"github.com/ridelinehq/ridegear-backend/pkg/db/models"
	"github.com/ridelinehq/ridegear-backend/pkg/enums"
	pkgerrors "github.com/ridelinehq/ridegear-backend/pkg/errors"
)

type fakeUsers struct {
	users map[string]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]*models.User{}}
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	if _, exists := f.users[user.Email]; exists {
		return errDuplicate{}
	}
	user.ID = uuid.New()
	f.users[user.Email] = user
	return nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	for _, user := range f.users {
		if user.ID == id {
			user.LastLoginAt = &at
		}
	}
	return nil
}

// errDuplicate mimics a Postgres unique violation.
type errDuplicate struct{}

func (errDuplicate) Error() string    { return "duplicate key value violates unique constraint" }
func (errDuplicate) SQLState() string { return "23505" }

type fakeSession struct {
	tokens  map[string]string
	revoked []string
}

func newFakeSession() *fakeSession {
	return &fakeSession{tokens: map[string]string{}}
}

func (f *fakeSession) Generate(_ context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	f.tokens[accessID] = token
	return token, nil
}

func (f *fakeSession) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := f.tokens[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(f.tokens, oldAccessID)
	newAccessID := session.NewAccessID()
	newToken := "refresh-" + newAccessID
	f.tokens[newAccessID] = newToken
	return newAccessID, newToken, nil
}

func (f *fakeSession) Revoke(_ context.Context, accessID string) error {
	delete(f.tokens, accessID)
	f.revoked = append(f.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "ridegear",
		ExpirationMinutes: 15,
	}
}

func newTestService(t *testing.T, users userRepository, sessions sessionManager) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       users,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: config.PasswordConfig{ArgonMemoryKB: 8, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32},
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func registerRider(t *testing.T, svc Service) *AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "Rider@Example.com",
		Password:  "twisties-ahead",
		FirstName: "Riley",
		LastName:  "Marsh",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	users := newFakeUsers()
	svc := newTestService(t, users, newFakeSession())

	resp := registerRider(t, svc)
	if resp.User.Email != "rider@example.com" {
		t.Fatalf("expected lowercased email, got %s", resp.User.Email)
	}
	if resp.User.Role != enums.UserRoleCustomer {
		t.Fatalf("expected customer role, got %s", resp.User.Role)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected token pair")
	}

	login, err := svc.Login(context.Background(), LoginRequest{Email: "rider@example.com", Password: "twisties-ahead"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.User.LastLoginAt == nil {
		t.Fatal("expected last login to be recorded")
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), login.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != login.User.ID {
		t.Fatalf("token user %s does not match %s", claims.UserID, login.User.ID)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc := newTestService(t, newFakeUsers(), newFakeSession())

	registerRider(t, svc)
	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "rider@example.com",
		Password:  "different-pass",
		FirstName: "Riley",
		LastName:  "Marsh",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterShortPassword(t *testing.T) {
	svc := newTestService(t, newFakeUsers(), newFakeSession())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "rider@example.com",
		Password:  "short",
		FirstName: "Riley",
		LastName:  "Marsh",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t, newFakeUsers(), newFakeSession())
	registerRider(t, svc)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "rider@example.com", Password: "wrong"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginUnknownEmailSameMessage(t *testing.T) {
	svc := newTestService(t, newFakeUsers(), newFakeSession())

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if typed.Message() != invalidCredentialsMessage {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestLoginDeactivatedUser(t *testing.T) {
	users := newFakeUsers()
	svc := newTestService(t, users, newFakeSession())
	resp := registerRider(t, svc)

	users.users[resp.User.Email].IsActive = false

	_, err := svc.Login(context.Background(), LoginRequest{Email: "rider@example.com", Password: "twisties-ahead"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	sessions := newFakeSession()
	svc := newTestService(t, newFakeUsers(), sessions)
	resp := registerRider(t, svc)

	pair, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if pair.RefreshToken == resp.RefreshToken {
		t.Fatal("expected a rotated refresh token")
	}

	// The old pair is burned after rotation.
	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized on replay, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := newFakeSession()
	svc := newTestService(t, newFakeUsers(), sessions)
	resp := registerRider(t, svc)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if err := svc.Logout(context.Background(), claims.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != claims.ID {
		t.Fatalf("expected session %s revoked, got %v", claims.ID, sessions.revoked)
	}
}
