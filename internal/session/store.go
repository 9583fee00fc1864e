// Package session implements the console's auth/session store: operator
// login against a seeded user table, bearer token issuance, and the
// persisted session document.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/abiolaogu/voxguard-console/internal/models"
	"github.com/abiolaogu/voxguard-console/internal/storage"
	pkglogger "github.com/abiolaogu/voxguard-console/pkg/logger"
)

// State is the persisted session document. IsAuthenticated is stored for
// compatibility with older state files but CheckAuth recomputes it: a
// half-written session with a user and no token is unauthenticated.
type State struct {
	User            *models.User `json:"user"`
	Token           string       `json:"token"`
	IsAuthenticated bool         `json:"is_authenticated"`
}

// LoginResult is the structured outcome of a login attempt. Failures are
// values, not errors: callers branch on Success.
type LoginResult struct {
	Success bool         `json:"success"`
	Error   string       `json:"error,omitempty"`
	User    *models.User `json:"user,omitempty"`
	Token   string       `json:"token,omitempty"`
}

// Store manages the current operator session.
type Store struct {
	storage *storage.Store
	tokens  *TokenManager
	table   *userTable
	logger  *slog.Logger
	audit   *pkglogger.AuditLogger

	mu      sync.RWMutex
	current State
}

// NewStore creates a session store and loads any persisted session.
func NewStore(st *storage.Store, tokens *TokenManager, logger *slog.Logger, audit *pkglogger.AuditLogger) (*Store, error) {
	s := &Store{
		storage: st,
		tokens:  tokens,
		table:   newUserTable(),
		logger:  logger,
		audit:   audit,
	}

	var persisted State
	found, err := st.Get(storage.KeySession, &persisted)
	if err != nil {
		// A corrupted session file is treated as logged out, not fatal
		logger.Warn("discarding unreadable session state", slog.Any("error", err))
		_ = st.Delete(storage.KeySession)
	} else if found {
		s.current = persisted
	}

	return s, nil
}

// SeedUsers registers operators in the login table.
func (s *Store) SeedUsers(seeds ...Seed) error {
	for _, seed := range seeds {
		if err := s.table.add(seed); err != nil {
			return err
		}
	}
	return nil
}

// Login authenticates an operator and persists the session on success.
func (s *Store) Login(ctx context.Context, email, password string) LoginResult {
	user, ok := s.table.authenticate(email, password)
	if !ok {
		s.logger.Info("login failed: invalid credentials")
		s.audit.LogSessionEvent(pkglogger.AuditEvent{
			EventType:     "login_failed",
			FailureReason: "invalid_credentials",
			Success:       false,
		})
		return LoginResult{Success: false, Error: "invalid email or password"}
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		s.logger.Error("failed to generate session token", slog.String("user_id", user.ID), slog.Any("error", err))
		return LoginResult{Success: false, Error: "failed to create session"}
	}

	state := State{User: user, Token: token, IsAuthenticated: true}

	s.mu.Lock()
	s.current = state
	s.mu.Unlock()

	if err := s.storage.Put(storage.KeySession, state); err != nil {
		s.logger.Error("failed to persist session", slog.String("user_id", user.ID), slog.Any("error", err))
	}

	s.logger.Info("operator logged in", slog.String("user_id", user.ID), slog.String("role", user.Role))
	s.audit.LogSessionEvent(pkglogger.AuditEvent{
		EventType: "login_success",
		UserID:    user.ID,
		Success:   true,
	})

	return LoginResult{Success: true, User: user, Token: token}
}

// Logout clears the current session.
func (s *Store) Logout(ctx context.Context) {
	s.clear("logout")
}

// ForceLogout clears the session in response to an unauthorized backend
// response. Clearing an already-empty session is a no-op, which keeps the
// 401 handler from looping.
func (s *Store) ForceLogout(reason string) {
	s.mu.RLock()
	empty := s.current.User == nil && s.current.Token == ""
	s.mu.RUnlock()
	if empty {
		return
	}
	s.clear(reason)
}

func (s *Store) clear(reason string) {
	s.mu.Lock()
	userID := ""
	if s.current.User != nil {
		userID = s.current.User.ID
	}
	s.current = State{}
	s.mu.Unlock()

	if err := s.storage.Delete(storage.KeySession); err != nil {
		s.logger.Error("failed to clear persisted session", slog.Any("error", err))
	}

	s.logger.Info("session cleared", slog.String("reason", reason), slog.String("user_id", userID))
	s.audit.LogSessionEvent(pkglogger.AuditEvent{
		EventType: "logout",
		UserID:    userID,
		Success:   true,
		Metadata:  map[string]string{"reason": reason},
	})
}

// CheckAuth reports whether a complete session exists: both a user and a
// non-empty token. Partial state is treated as unauthenticated.
func (s *Store) CheckAuth() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.User != nil && s.current.Token != ""
}

// Current returns the session's user and token. The user is nil when
// logged out.
func (s *Store) Current() (*models.User, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.User, s.current.Token
}

// Token returns the current bearer token, or "" when logged out. This is
// the hook the backend clients use for auth-header injection.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

// ValidateToken verifies a bearer token presented by a console client.
func (s *Store) ValidateToken(token string) (*Claims, error) {
	return s.tokens.Validate(token)
}
