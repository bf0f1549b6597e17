package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/easymotion-api/internal/domain"
	"github.com/easymotion-api/internal/pkg/id"
)

type Service interface {
	Subscribe(ctx context.Context, userID, courseID string) (*domain.Subscription, error)
	Unsubscribe(ctx context.Context, userID, courseID string) error
	ListByCourse(ctx context.Context, courseID string, limit int, cursor string) ([]domain.Subscription, string, error)
	ListByUser(ctx context.Context, userID string, limit int, cursor string) ([]domain.Subscription, string, error)
	CountByCourse(ctx context.Context, courseID string) (int, error)
}

type subscriptionStore interface {
	Put(ctx context.Context, s *domain.Subscription) error
	Delete(ctx context.Context, courseID, userID string) error
	ListByCourse(ctx context.Context, courseID string, limit int32, cursor string) ([]domain.Subscription, string, error)
	ListByUser(ctx context.Context, userID string, limit int32, cursor string) ([]domain.Subscription, string, error)
	CountByCourse(ctx context.Context, courseID string) (int, error)
}

type courseStore interface {
	Get(ctx context.Context, courseID string) (*domain.Course, error)
}

// accountManager is the slice of the credential manager this service needs.
type accountManager interface {
	GetUserByID(ctx context.Context, userID string) (domain.Result[*domain.User], error)
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
}

type service struct {
	repo             subscriptionStore
	courseRepo       courseStore
	accounts         accountManager
	notificationRepo notificationStore
	now              func() time.Time
}

type ServiceDeps struct {
	SubscriptionRepo subscriptionStore
	CourseRepo       courseStore
	Accounts         accountManager
	NotificationRepo notificationStore
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:             deps.SubscriptionRepo,
		courseRepo:       deps.CourseRepo,
		accounts:         deps.Accounts,
		notificationRepo: deps.NotificationRepo,
		now:              time.Now,
	}
}

// Subscribe enrolls the user in the course. The subscription window and the
// subscriber limit are enforced before the write; the conditional insert at
// the storage layer turns a concurrent duplicate into a conflict.
func (s *service) Subscribe(ctx context.Context, userID, courseID string) (*domain.Subscription, error) {
	res, err := s.accounts.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	u := res.Data

	course, err := s.courseRepo.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if !course.SubscribeFrom.IsZero() && now.Before(course.SubscribeFrom) {
		return nil, fmt.Errorf("subscriptions are not open yet: %w", domain.ErrBadRequest)
	}
	if !course.SubscribeUntil.IsZero() && now.After(course.SubscribeUntil) {
		return nil, fmt.Errorf("subscription window has closed: %w", domain.ErrBadRequest)
	}
	if course.MaxSubscribers > 0 {
		count, err := s.repo.CountByCourse(ctx, courseID)
		if err != nil {
			return nil, err
		}
		if count >= course.MaxSubscribers {
			return nil, fmt.Errorf("course is full: %w", domain.ErrConflict)
		}
	}

	sub := &domain.Subscription{
		CourseID:       courseID,
		UserID:         userID,
		CourseName:     course.Name,
		SubscriberName: displayName(u),
		CreatedAt:      now,
	}
	if err := s.repo.Put(ctx, sub); err != nil {
		return nil, err
	}

	n := &domain.Notification{
		NotificationID: id.New(),
		UserID:         userID,
		CourseID:       &courseID,
		Message:        "You are subscribed to " + course.Name,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.notificationRepo.Put(ctx, n); err != nil {
		slog.Warn("failed to create subscription notification", "user_id", userID, "course_id", courseID, "err", err)
	}
	return sub, nil
}

func (s *service) Unsubscribe(ctx context.Context, userID, courseID string) error {
	return s.repo.Delete(ctx, courseID, userID)
}

func (s *service) ListByCourse(ctx context.Context, courseID string, limit int, cursor string) ([]domain.Subscription, string, error) {
	if limit < 1 {
		limit = 50
	}
	return s.repo.ListByCourse(ctx, courseID, int32(limit), cursor)
}

func (s *service) ListByUser(ctx context.Context, userID string, limit int, cursor string) ([]domain.Subscription, string, error) {
	if limit < 1 {
		limit = 50
	}
	return s.repo.ListByUser(ctx, userID, int32(limit), cursor)
}

func (s *service) CountByCourse(ctx context.Context, courseID string) (int, error) {
	return s.repo.CountByCourse(ctx, courseID)
}

func displayName(u *domain.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
