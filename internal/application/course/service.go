package course

import (
	"context"
	"fmt"
	"time"

	"github.com/easymotion-api/internal/domain"
	"github.com/easymotion-api/internal/pkg/id"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldName             = "name"
	fieldShortDescription = "short_description"
	fieldDescription      = "description"
	fieldLocation         = "location"
	fieldInstructors      = "instructors"
	fieldPrice            = "price"
	fieldLevel            = "level"
	fieldCategoryID       = "category_id"
	fieldFrequency        = "frequency"
	fieldSchedule         = "schedule"
	fieldSubscribeFrom    = "subscribe_from"
	fieldSubscribeUntil   = "subscribe_until"
	fieldMaxSubscribers   = "max_subscribers"
)

type Service interface {
	Create(ctx context.Context, creatorID string, req domain.CreateCourseRequest) (*domain.Course, error)
	List(ctx context.Context, limit int, cursor string) ([]domain.Course, string, error)
	Get(ctx context.Context, courseID string) (*domain.Course, error)
	Update(ctx context.Context, courseID string, req domain.UpdateCourseRequest) (*domain.Course, error)
	Delete(ctx context.Context, courseID string) error
}

type courseStore interface {
	Put(ctx context.Context, c *domain.Course) error
	Get(ctx context.Context, courseID string) (*domain.Course, error)
	Update(ctx context.Context, courseID string, updates map[string]interface{}) error
	Delete(ctx context.Context, courseID string) error
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Course, string, error)
}

type categoryStore interface {
	Get(ctx context.Context, categoryID string) (*domain.Category, error)
}

type subscriptionStore interface {
	DeleteByCourse(ctx context.Context, courseID string) error
}

type service struct {
	repo             courseStore
	categoryRepo     categoryStore
	subscriptionRepo subscriptionStore
}

type ServiceDeps struct {
	CourseRepo       courseStore
	CategoryRepo     categoryStore
	SubscriptionRepo subscriptionStore
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:             deps.CourseRepo,
		categoryRepo:     deps.CategoryRepo,
		subscriptionRepo: deps.SubscriptionRepo,
	}
}

func (s *service) Create(ctx context.Context, creatorID string, req domain.CreateCourseRequest) (*domain.Course, error) {
	if _, err := s.categoryRepo.Get(ctx, req.CategoryID); err != nil {
		return nil, fmt.Errorf("unknown category: %w", domain.ErrBadRequest)
	}
	from, until, err := parseWindow(req.SubscribeFrom, req.SubscribeUntil)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c := &domain.Course{
		CourseID:         id.New(),
		Name:             req.Name,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		Location:         req.Location,
		Instructors:      req.Instructors,
		Price:            req.Price,
		Level:            req.Level,
		CategoryID:       req.CategoryID,
		Frequency:        req.Frequency,
		Schedule:         req.Schedule,
		SubscribeFrom:    from,
		SubscribeUntil:   until,
		MaxSubscribers:   req.MaxSubscribers,
		CreatedByUserID:  creatorID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) List(ctx context.Context, limit int, cursor string) ([]domain.Course, string, error) {
	if limit < 1 {
		limit = 50
	}
	return s.repo.ScanPage(ctx, int32(limit), cursor)
}

func (s *service) Get(ctx context.Context, courseID string) (*domain.Course, error) {
	return s.repo.Get(ctx, courseID)
}

func (s *service) Update(ctx context.Context, courseID string, req domain.UpdateCourseRequest) (*domain.Course, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates[fieldName] = *req.Name
	}
	if req.ShortDescription != nil {
		updates[fieldShortDescription] = *req.ShortDescription
	}
	if req.Description != nil {
		updates[fieldDescription] = *req.Description
	}
	if req.Location != nil {
		updates[fieldLocation] = *req.Location
	}
	if req.Instructors != nil {
		updates[fieldInstructors] = *req.Instructors
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, fmt.Errorf("price must not be negative: %w", domain.ErrBadRequest)
		}
		updates[fieldPrice] = *req.Price
	}
	if req.Level != nil {
		switch *req.Level {
		case domain.CourseLevelBasic, domain.CourseLevelMedium, domain.CourseLevelAdvanced:
			updates[fieldLevel] = *req.Level
		default:
			return nil, fmt.Errorf("invalid level: %w", domain.ErrBadRequest)
		}
	}
	if req.CategoryID != nil {
		if _, err := s.categoryRepo.Get(ctx, *req.CategoryID); err != nil {
			return nil, fmt.Errorf("unknown category: %w", domain.ErrBadRequest)
		}
		updates[fieldCategoryID] = *req.CategoryID
	}
	if req.Frequency != nil {
		switch *req.Frequency {
		case domain.CourseFrequencySingle, domain.CourseFrequencyWeekly, domain.CourseFrequencyMonthly:
			updates[fieldFrequency] = *req.Frequency
		default:
			return nil, fmt.Errorf("invalid frequency: %w", domain.ErrBadRequest)
		}
	}
	if req.Schedule != nil {
		updates[fieldSchedule] = *req.Schedule
	}
	if req.SubscribeFrom != nil {
		t, err := time.Parse(time.RFC3339, *req.SubscribeFrom)
		if err != nil {
			return nil, fmt.Errorf("subscribe_from must be RFC 3339: %w", domain.ErrBadRequest)
		}
		updates[fieldSubscribeFrom] = t
	}
	if req.SubscribeUntil != nil {
		t, err := time.Parse(time.RFC3339, *req.SubscribeUntil)
		if err != nil {
			return nil, fmt.Errorf("subscribe_until must be RFC 3339: %w", domain.ErrBadRequest)
		}
		updates[fieldSubscribeUntil] = t
	}
	if req.MaxSubscribers != nil {
		if *req.MaxSubscribers < 0 {
			return nil, fmt.Errorf("max_subscribers must not be negative: %w", domain.ErrBadRequest)
		}
		updates[fieldMaxSubscribers] = *req.MaxSubscribers
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, courseID)
	}
	if _, err := s.repo.Get(ctx, courseID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, courseID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, courseID)
}

// Delete removes the course and every subscription row under it.
func (s *service) Delete(ctx context.Context, courseID string) error {
	if _, err := s.repo.Get(ctx, courseID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, courseID); err != nil {
		return err
	}
	return s.subscriptionRepo.DeleteByCourse(ctx, courseID)
}

// parseWindow parses the optional subscription window. A missing bound stays
// zero; a present pair must be ordered.
func parseWindow(fromStr, untilStr string) (time.Time, time.Time, error) {
	var from, until time.Time
	var err error
	if fromStr != "" {
		from, err = time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return from, until, fmt.Errorf("subscribe_from must be RFC 3339: %w", domain.ErrBadRequest)
		}
	}
	if untilStr != "" {
		until, err = time.Parse(time.RFC3339, untilStr)
		if err != nil {
			return from, until, fmt.Errorf("subscribe_until must be RFC 3339: %w", domain.ErrBadRequest)
		}
	}
	if !from.IsZero() && !until.IsZero() && until.Before(from) {
		return from, until, fmt.Errorf("subscription window ends before it starts: %w", domain.ErrBadRequest)
	}
	return from, until, nil
}
