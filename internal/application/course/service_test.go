package course

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/easymotion-api/internal/domain"
)

// --- mocks ---

type mockCourseStore struct{ mock.Mock }

func (m *mockCourseStore) Put(ctx context.Context, c *domain.Course) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockCourseStore) Get(ctx context.Context, courseID string) (*domain.Course, error) {
	args := m.Called(ctx, courseID)
	if c, _ := args.Get(0).(*domain.Course); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockCourseStore) Update(ctx context.Context, courseID string, updates map[string]interface{}) error {
	return m.Called(ctx, courseID, updates).Error(0)
}
func (m *mockCourseStore) Delete(ctx context.Context, courseID string) error {
	return m.Called(ctx, courseID).Error(0)
}
func (m *mockCourseStore) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Course, string, error) {
	args := m.Called(ctx, limit, cursor)
	return args.Get(0).([]domain.Course), args.String(1), args.Error(2)
}

type mockCategoryStore struct{ mock.Mock }

func (m *mockCategoryStore) Get(ctx context.Context, categoryID string) (*domain.Category, error) {
	args := m.Called(ctx, categoryID)
	if c, _ := args.Get(0).(*domain.Category); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSubscriptionStore struct{ mock.Mock }

func (m *mockSubscriptionStore) DeleteByCourse(ctx context.Context, courseID string) error {
	return m.Called(ctx, courseID).Error(0)
}

// --- helpers ---

func newTestService() (Service, *mockCourseStore, *mockCategoryStore, *mockSubscriptionStore) {
	cs := &mockCourseStore{}
	cat := &mockCategoryStore{}
	sub := &mockSubscriptionStore{}
	return NewService(ServiceDeps{CourseRepo: cs, CategoryRepo: cat, SubscriptionRepo: sub}), cs, cat, sub
}

func baseReq() domain.CreateCourseRequest {
	return domain.CreateCourseRequest{
		Name:           "Vinyasa Yoga",
		Location:       "Studio A",
		Price:          12.50,
		Level:          domain.CourseLevelBasic,
		CategoryID:     "cat1",
		Frequency:      domain.CourseFrequencyWeekly,
		Schedule:       []string{"Mon 18:00-19:00"},
		SubscribeFrom:  "2026-09-01T00:00:00Z",
		SubscribeUntil: "2026-09-30T23:59:59Z",
		MaxSubscribers: 20,
	}
}

func ptr[T any](v T) *T { return &v }

// --- Create tests ---

func TestCreate_HappyPath(t *testing.T) {
	svc, cs, cat, _ := newTestService()
	cat.On("Get", mock.Anything, "cat1").Return(&domain.Category{CategoryID: "cat1"}, nil)
	cs.On("Put", mock.Anything, mock.AnythingOfType("*domain.Course")).Return(nil)

	c, err := svc.Create(context.Background(), "admin1", baseReq())

	require.NoError(t, err)
	assert.NotEmpty(t, c.CourseID)
	assert.Equal(t, "Vinyasa Yoga", c.Name)
	assert.Equal(t, "admin1", c.CreatedByUserID)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), c.SubscribeFrom)
	cs.AssertExpectations(t)
}

func TestCreate_UnknownCategory(t *testing.T) {
	svc, _, cat, _ := newTestService()
	cat.On("Get", mock.Anything, "cat1").Return(nil, domain.ErrNotFound)

	_, err := svc.Create(context.Background(), "admin1", baseReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestCreate_InvertedWindow(t *testing.T) {
	svc, _, cat, _ := newTestService()
	cat.On("Get", mock.Anything, "cat1").Return(&domain.Category{CategoryID: "cat1"}, nil)

	req := baseReq()
	req.SubscribeFrom = "2026-09-30T00:00:00Z"
	req.SubscribeUntil = "2026-09-01T00:00:00Z"
	_, err := svc.Create(context.Background(), "admin1", req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestCreate_BadWindowFormat(t *testing.T) {
	svc, _, cat, _ := newTestService()
	cat.On("Get", mock.Anything, "cat1").Return(&domain.Category{CategoryID: "cat1"}, nil)

	req := baseReq()
	req.SubscribeFrom = "next tuesday"
	_, err := svc.Create(context.Background(), "admin1", req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

// --- Update tests ---

func TestUpdate_InvalidLevel(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.Update(context.Background(), "c1", domain.UpdateCourseRequest{Level: ptr("expert")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestUpdate_InvalidFrequency(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.Update(context.Background(), "c1", domain.UpdateCourseRequest{Frequency: ptr("daily")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestUpdate_EmptyRequest_ReturnsExisting(t *testing.T) {
	svc, cs, _, _ := newTestService()
	existing := &domain.Course{CourseID: "c1", Name: "Pilates"}
	cs.On("Get", mock.Anything, "c1").Return(existing, nil)

	c, err := svc.Update(context.Background(), "c1", domain.UpdateCourseRequest{})

	require.NoError(t, err)
	assert.Equal(t, existing, c)
}

func TestUpdate_HappyPath(t *testing.T) {
	svc, cs, _, _ := newTestService()
	updated := &domain.Course{CourseID: "c1", Name: "Power Yoga"}
	cs.On("Get", mock.Anything, "c1").Return(updated, nil)
	cs.On("Update", mock.Anything, "c1", map[string]interface{}{fieldName: "Power Yoga"}).Return(nil)

	c, err := svc.Update(context.Background(), "c1", domain.UpdateCourseRequest{Name: ptr("Power Yoga")})

	require.NoError(t, err)
	assert.Equal(t, "Power Yoga", c.Name)
	cs.AssertExpectations(t)
}

// --- Delete tests ---

func TestDelete_NotFound(t *testing.T) {
	svc, cs, _, _ := newTestService()
	cs.On("Get", mock.Anything, "missing").Return(nil, domain.ErrNotFound)

	err := svc.Delete(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDelete_RemovesSubscriptions(t *testing.T) {
	svc, cs, _, sub := newTestService()
	cs.On("Get", mock.Anything, "c1").Return(&domain.Course{CourseID: "c1"}, nil)
	cs.On("Delete", mock.Anything, "c1").Return(nil)
	sub.On("DeleteByCourse", mock.Anything, "c1").Return(nil)

	require.NoError(t, svc.Delete(context.Background(), "c1"))
	cs.AssertExpectations(t)
	sub.AssertExpectations(t)
}
