package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bhargav676/intern/domain/entities"
	"github.com/bhargav676/intern/domain/repositories"
	"github.com/bhargav676/intern/internal/apperr"
	"github.com/bhargav676/intern/internal/auth"
	"github.com/bhargav676/intern/internal/config"
)

// AccountInput carries the fields needed to create an account
type AccountInput struct {
	Username string
	Email    string
	Password string
}

func (in *AccountInput) normalize() error {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return apperr.Validation(apperr.CodeMissingParameter, "All fields are required")
	}
	if err := entities.ValidateEmail(in.Email); err != nil {
		return apperr.Validation(apperr.CodeValidationFailed, "Invalid email format")
	}
	if err := entities.ValidatePassword(in.Password); err != nil {
		return apperr.Validation(apperr.CodeValidationFailed, "Password must be at least 6 characters")
	}
	return nil
}

// Session is a freshly issued token together with its account
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *entities.User
}

// UserService manages dashboard accounts
type UserService struct {
	users    repositories.UserRepository
	readings repositories.ReadingRepository
	tokens   *auth.TokenIssuer
	notifier repositories.Notifier
	logger   *zap.Logger
	bg       *background
}

func NewUserService(
	users repositories.UserRepository,
	readings repositories.ReadingRepository,
	tokens *auth.TokenIssuer,
	notifier repositories.Notifier,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		users:    users,
		readings: readings,
		tokens:   tokens,
		notifier: notifier,
		logger:   logger,
		bg:       &background{timeout: 30 * time.Second},
	}
}

// Register creates a regular account and signs it in
func (s *UserService) Register(ctx context.Context, in AccountInput) (*Session, error) {
	user, err := s.create(ctx, in, entities.RoleUser)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Login verifies username and password. Unknown users and wrong passwords are
// indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username, password string) (*Session, error) {
	if username == "" || password == "" {
		return nil, apperr.Validation(apperr.CodeMissingParameter, "Username and password are required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.Unauthenticated(apperr.CodeInvalidLogin, "Invalid username or password")
	}
	if err != nil {
		return nil, apperr.Internal("failed to look up user", err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperr.Unauthenticated(apperr.CodeInvalidLogin, "Invalid username or password")
	}

	s.logger.Info("User logged in", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	return s.issue(user)
}

// AddUser lets an admin create a regular account. The new user is emailed
// their access id.
func (s *UserService) AddUser(ctx context.Context, caller *auth.Identity, in AccountInput) (*entities.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	user, err := s.create(ctx, in, entities.RoleUser)
	if err != nil {
		return nil, err
	}

	s.notify(repositories.Notification{
		Kind:     repositories.NotificationWelcome,
		To:       user.Email,
		Name:     user.Username,
		AccessID: user.AccessID,
	})
	return user, nil
}

// Delete removes an account and every reading it owns
func (s *UserService) Delete(ctx context.Context, caller *auth.Identity, id string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if id == caller.UserID {
		return apperr.Forbidden("Admins cannot delete themselves")
	}

	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound("User not found")
	}
	if err != nil {
		return apperr.Internal("failed to look up user", err)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Internal("failed to delete user", err)
	}
	removed, err := s.readings.DeleteByOwner(ctx, id)
	if err != nil {
		return apperr.Internal("failed to delete user readings", err)
	}

	s.logger.Info("User deleted",
		zap.String("user_id", id),
		zap.String("deleted_by", caller.Username),
		zap.Int64("readings_removed", removed))

	s.notify(repositories.Notification{
		Kind: repositories.NotificationAccountDeleted,
		To:   user.Email,
		Name: user.Username,
	})
	return nil
}

func (s *UserService) List(ctx context.Context, caller *auth.Identity) ([]*entities.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list users", err)
	}
	return users, nil
}

func (s *UserService) Profile(ctx context.Context, caller *auth.Identity) (*entities.User, error) {
	if caller == nil {
		return nil, apperr.Unauthenticated(apperr.CodeUnauthorized, "Authentication required")
	}
	user, err := s.users.GetByID(ctx, caller.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load profile", err)
	}
	return user, nil
}

// BootstrapAdmin seeds an admin account from cfg unless one already exists
func (s *UserService) BootstrapAdmin(ctx context.Context, cfg config.AdminConfig) error {
	if !cfg.Enabled() {
		return nil
	}
	count, err := s.users.CountByRole(ctx, entities.RoleAdmin)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	user, err := s.create(ctx, AccountInput{
		Username: cfg.Username,
		Email:    cfg.Email,
		Password: cfg.Password,
	}, entities.RoleAdmin)
	if err != nil {
		return err
	}
	s.logger.Info("Seeded admin account", zap.String("username", user.Username))
	return nil
}

func (s *UserService) create(ctx context.Context, in AccountInput, role entities.Role) (*entities.User, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, apperr.Internal("failed to check for existing user", err)
	}
	if exists {
		return nil, apperr.Validation(apperr.CodeDuplicateResource, "Username or email already exists")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	user := &entities.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		AccessID:     uuid.NewString(),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.Validation(apperr.CodeDuplicateResource, "Username or email already exists")
		}
		return nil, apperr.Internal("failed to create user", err)
	}

	s.logger.Info("User created", zap.String("username", user.Username), zap.String("role", string(role)))
	return user, nil
}

func (s *UserService) issue(user *entities.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperr.Internal("failed to issue token", err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *UserService) notify(n repositories.Notification) {
	s.bg.Go(func(ctx context.Context) {
		if err := s.notifier.Notify(ctx, n); err != nil {
			s.logger.Error("Failed to send notification",
				zap.String("kind", string(n.Kind)),
				zap.String("to", n.To),
				zap.Error(err))
		}
	})
}

// Wait blocks until pending notifications have been sent
func (s *UserService) Wait() {
	s.bg.Wait()
}
