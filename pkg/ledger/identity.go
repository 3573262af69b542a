package ledger

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"banktrack/models"

	"golang.org/x/crypto/bcrypt"
)

// Identity handles registration, authentication and user lifecycle. The
// inactivity window is runtime-configurable so the archival policy can be
// tuned (or disabled with 0) without redeploying.
type Identity struct {
	store Store

	mu            sync.RWMutex
	inactiveAfter time.Duration
}

// NewIdentity creates an Identity service over st. inactiveAfter is the
// initial archival window; 0 disables archival.
func NewIdentity(st Store, inactiveAfter time.Duration) *Identity {
	return &Identity{store: st, inactiveAfter: inactiveAfter}
}

// SetInactivityWindow replaces the archival window. Safe to call while the
// scheduler is running.
func (s *Identity) SetInactivityWindow(d time.Duration) {
	s.mu.Lock()
	s.inactiveAfter = d
	s.mu.Unlock()
}

// InactivityWindow returns the current archival window.
func (s *Identity) InactivityWindow() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inactiveAfter
}

// Register creates a new active user with a bcrypt-hashed password and
// returns the generated id. The plaintext password is never stored.
func (s *Identity) Register(ctx context.Context, firstName, lastName, email, password string) (uint, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return 0, errors.New("email required")
	}
	if len(password) < 6 { // basic password policy
		return 0, errors.New("password too short (min 6)")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, wrap("register", err)
	}
	u := models.User{
		FirstName:      strings.TrimSpace(firstName),
		LastName:       strings.TrimSpace(lastName),
		Email:          email,
		HashedPassword: hashed,
		Active:         true,
		LastSeenAt:     time.Now(),
	}
	if err := s.store.CreateUser(ctx, &u); err != nil {
		return 0, wrap("register", err)
	}
	return u.ID, nil
}

// Login verifies email and password against an active user and returns it.
// Unknown email, archived user and wrong password all collapse into
// ErrInvalidCredentials so the caller cannot tell which field was wrong.
func (s *Identity) Login(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.store.UserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, wrap("login", err)
	}
	if !u.Active {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.HashedPassword, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	// Best effort: a failed touch must not fail the login itself.
	_ = s.store.TouchUser(ctx, u.ID, time.Now())
	return u, nil
}

// User fetches a user by id, ErrNotFound if absent.
func (s *Identity) User(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.store.UserByID(ctx, id)
	return u, wrap("get user", err)
}

// DeleteUser permanently removes the user and cascades to every account and
// transaction they own. Irreversible.
func (s *Identity) DeleteUser(ctx context.Context, id uint) error {
	return wrap("delete user", s.store.DeleteUser(ctx, id))
}

// ArchiveInactiveUsers is the idempotent hook the host scheduler invokes on a
// fixed interval. It deactivates active users not seen since now minus the
// configured window and returns how many were archived. A zero window makes
// it a no-op.
func (s *Identity) ArchiveInactiveUsers(ctx context.Context, now time.Time) (int64, error) {
	window := s.InactivityWindow()
	if window <= 0 {
		return 0, nil
	}
	n, err := s.store.ArchiveUsersInactiveSince(ctx, now.Add(-window))
	return n, wrap("archive users", err)
}
