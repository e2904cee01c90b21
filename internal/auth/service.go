package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"ibms/internal/core"
	applog "ibms/internal/log"
	"ibms/internal/ports"
)

// dummyHash keeps Login timing similar for unknown emails.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

// HashPassword returns the bcrypt hash stored for an admin.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Service authenticates admins and tracks logged-out tokens.
type Service struct {
	admins  ports.AdminStore
	tokens  *Tokens
	revoked RevocationStore
}

func NewService(admins ports.AdminStore, tokens *Tokens, revoked RevocationStore) *Service {
	if revoked == nil {
		revoked = NewMemoryRevocations()
	}
	return &Service{admins: admins, tokens: tokens, revoked: revoked}
}

// LoginResult is returned to the client after a successful login.
type LoginResult struct {
	Token   string     `json:"token"`
	Admin   core.Admin `json:"admin"`
	Session Session    `json:"session"`
}

func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	admin, err := s.admins.FindAdminByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, core.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("find admin: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		slog.WarnContext(ctx, "Login rejected",
			applog.FieldComponent, applog.ComponentAuth,
			applog.FieldAdminID, admin.ID)
		return LoginResult{}, ErrInvalidCredentials
	}
	if !admin.IsActive {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, session, err := s.tokens.Issue(admin)
	if err != nil {
		return LoginResult{}, err
	}
	slog.InfoContext(ctx, "Admin logged in",
		applog.FieldComponent, applog.ComponentAuth,
		applog.FieldOperation, applog.OpLogin,
		applog.FieldAdminID, admin.ID,
		applog.FieldRole, string(admin.Role))
	return LoginResult{Token: token, Admin: admin, Session: session}, nil
}

// Verify parses token and rejects revoked sessions. A revocation store that
// cannot answer rejects the token.
func (s *Service) Verify(ctx context.Context, token string) (Session, error) {
	session, err := s.tokens.Parse(token)
	if err != nil {
		return Session{}, err
	}
	revoked, err := s.revoked.IsRevoked(ctx, session.TokenID)
	if err != nil {
		return Session{}, err
	}
	if revoked {
		return Session{}, ErrRevoked
	}
	return session, nil
}

// Logout revokes the session's token for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, session Session) error {
	ttl := time.Until(session.ExpiresAt)
	if err := s.revoked.Revoke(ctx, session.TokenID, ttl); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Admin logged out",
		applog.FieldComponent, applog.ComponentAuth,
		applog.FieldOperation, applog.OpLogout,
		applog.FieldAdminID, session.AdminID)
	return nil
}

// EnsureBootstrapAdmin creates the first admin when the store has none.
// It reports whether an admin was created.
func (s *Service) EnsureBootstrapAdmin(ctx context.Context, email, password string) (bool, error) {
	if password == "" {
		return false, nil
	}
	n, err := s.admins.CountAdmins(ctx)
	if err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}
	admin := core.Admin{
		ID:           uuid.NewString(),
		Email:        strings.TrimSpace(email),
		Name:         "Administrator",
		PasswordHash: hash,
		Role:         core.RoleAdmin,
		IsActive:     true,
	}
	if err := admin.Validate(); err != nil {
		return false, err
	}
	if err := s.admins.CreateAdmin(ctx, admin); err != nil {
		return false, fmt.Errorf("create bootstrap admin: %w", err)
	}
	slog.InfoContext(ctx, "Bootstrap admin created",
		applog.FieldComponent, applog.ComponentAuth,
		applog.FieldAdminID, admin.ID)
	return true, nil
}
