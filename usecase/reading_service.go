package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/bhargav676/intern/domain"
	"github.com/bhargav676/intern/domain/entities"
	"github.com/bhargav676/intern/domain/repositories"
	"github.com/bhargav676/intern/internal/apperr"
	"github.com/bhargav676/intern/internal/auth"
)

const (
	DefaultPageSize = 15
	MaxPageSize     = 500
	// MaxPage keeps the computed skip well inside the range every backend accepts
	MaxPage = 1_000_000
)

// HistoryQuery selects a page of readings. Zero times leave the range open.
type HistoryQuery struct {
	From  time.Time
	To    time.Time
	Page  int
	Limit int
}

func (q *HistoryQuery) normalize() error {
	if !q.From.IsZero() && !q.To.IsZero() && q.From.After(q.To) {
		return apperr.Validation(apperr.CodeValidationFailed, "from must not be after to")
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > MaxPage {
		return apperr.Validation(apperr.CodeValidationFailed, "page is too large")
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	return nil
}

// ReadingPage is one page of history, newest first
type ReadingPage struct {
	Items []*domain.SensorDataPayload `json:"items"`
	Total int64                       `json:"total"`
	Page  int                         `json:"page"`
	Limit int                         `json:"limit"`
}

type ReadingService struct {
	readings repositories.ReadingRepository
	users    repositories.UserRepository
	logger   *zap.Logger
}

func NewReadingService(readings repositories.ReadingRepository, users repositories.UserRepository, logger *zap.Logger) *ReadingService {
	return &ReadingService{readings: readings, users: users, logger: logger}
}

// Latest returns the most recent reading of every device visible to caller.
// Non-admins only ever see their own devices.
func (s *ReadingService) Latest(ctx context.Context, caller *auth.Identity, f repositories.LatestFilter) ([]*domain.SensorDataPayload, error) {
	if caller == nil {
		return nil, apperr.Unauthenticated(apperr.CodeUnauthorized, "Authentication required")
	}
	if !caller.IsAdmin() {
		if f.OwnerID != "" && f.OwnerID != caller.UserID {
			return nil, apperr.Forbidden("Access denied")
		}
		f.OwnerID = caller.UserID
	}

	readings, err := s.readings.LatestPerDevice(ctx, f)
	if err != nil {
		return nil, apperr.Internal("failed to load latest readings", err)
	}
	return s.enrich(ctx, readings), nil
}

// History returns a page of ownerID's readings. An empty ownerID means the
// caller's own.
func (s *ReadingService) History(ctx context.Context, caller *auth.Identity, ownerID string, q HistoryQuery) (*ReadingPage, error) {
	if caller == nil {
		return nil, apperr.Unauthenticated(apperr.CodeUnauthorized, "Authentication required")
	}
	if ownerID == "" {
		ownerID = caller.UserID
	}
	if !caller.CanAccessOwner(ownerID) {
		return nil, apperr.Forbidden("Access denied")
	}
	return s.page(ctx, repositories.ReadingQuery{OwnerID: ownerID}, q)
}

// AllHistory is History across every owner, for admins only
func (s *ReadingService) AllHistory(ctx context.Context, caller *auth.Identity, q HistoryQuery) (*ReadingPage, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.page(ctx, repositories.ReadingQuery{}, q)
}

func (s *ReadingService) page(ctx context.Context, rq repositories.ReadingQuery, q HistoryQuery) (*ReadingPage, error) {
	if err := q.normalize(); err != nil {
		return nil, err
	}
	rq.From, rq.To = q.From, q.To
	rq.Limit = q.Limit
	rq.Skip = (q.Page - 1) * q.Limit

	readings, total, err := s.readings.Find(ctx, rq)
	if err != nil {
		return nil, apperr.Internal("failed to load readings", err)
	}
	return &ReadingPage{
		Items: s.enrich(ctx, readings),
		Total: total,
		Page:  q.Page,
		Limit: q.Limit,
	}, nil
}

// enrich attaches the status of each reading and the owning account's name and
// email where the owner is a user.
func (s *ReadingService) enrich(ctx context.Context, readings []*entities.Reading) []*domain.SensorDataPayload {
	owners := make(map[string]*entities.User)
	out := make([]*domain.SensorDataPayload, 0, len(readings))
	for _, r := range readings {
		user, seen := owners[r.OwnerID]
		if !seen {
			u, err := s.users.GetByID(ctx, r.OwnerID)
			if err != nil && !errors.Is(err, repositories.ErrNotFound) {
				s.logger.Warn("Failed to look up reading owner", zap.String("owner_id", r.OwnerID), zap.Error(err))
			}
			user = u
			owners[r.OwnerID] = u
		}
		out = append(out, toPayload(r, user))
	}
	return out
}

func toPayload(r *entities.Reading, owner *entities.User) *domain.SensorDataPayload {
	a := entities.AssessReading(r)
	p := &domain.SensorDataPayload{
		Reading: r,
		Status:  a,
		Alert:   entities.AlertMessage(r, a),
	}
	if owner != nil {
		p.Username = owner.Username
		p.Email = owner.Email
	}
	return p
}

func requireAdmin(caller *auth.Identity) error {
	if caller == nil {
		return apperr.Unauthenticated(apperr.CodeUnauthorized, "Authentication required")
	}
	if !caller.IsAdmin() {
		return apperr.Forbidden("Access denied: admins only")
	}
	return nil
}
