package subscription

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/easymotion-api/internal/domain"
)

// --- mocks ---

type mockSubscriptionStore struct{ mock.Mock }

func (m *mockSubscriptionStore) Put(ctx context.Context, s *domain.Subscription) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockSubscriptionStore) Delete(ctx context.Context, courseID, userID string) error {
	return m.Called(ctx, courseID, userID).Error(0)
}
func (m *mockSubscriptionStore) ListByCourse(ctx context.Context, courseID string, limit int32, cursor string) ([]domain.Subscription, string, error) {
	args := m.Called(ctx, courseID, limit, cursor)
	return args.Get(0).([]domain.Subscription), args.String(1), args.Error(2)
}
func (m *mockSubscriptionStore) ListByUser(ctx context.Context, userID string, limit int32, cursor string) ([]domain.Subscription, string, error) {
	args := m.Called(ctx, userID, limit, cursor)
	return args.Get(0).([]domain.Subscription), args.String(1), args.Error(2)
}
func (m *mockSubscriptionStore) CountByCourse(ctx context.Context, courseID string) (int, error) {
	args := m.Called(ctx, courseID)
	return args.Int(0), args.Error(1)
}

type mockCourseStore struct{ mock.Mock }

func (m *mockCourseStore) Get(ctx context.Context, courseID string) (*domain.Course, error) {
	args := m.Called(ctx, courseID)
	if c, _ := args.Get(0).(*domain.Course); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAccounts struct{ mock.Mock }

func (m *mockAccounts) GetUserByID(ctx context.Context, userID string) (domain.Result[*domain.User], error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Result[*domain.User]), args.Error(1)
}

type mockNotificationStore struct{ mock.Mock }

func (m *mockNotificationStore) Put(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}

// --- helpers ---

type deps struct {
	subs     *mockSubscriptionStore
	courses  *mockCourseStore
	accounts *mockAccounts
	notifs   *mockNotificationStore
}

func newTestService() (*service, deps) {
	d := deps{
		subs:     &mockSubscriptionStore{},
		courses:  &mockCourseStore{},
		accounts: &mockAccounts{},
		notifs:   &mockNotificationStore{},
	}
	svc := NewService(ServiceDeps{
		SubscriptionRepo: d.subs,
		CourseRepo:       d.courses,
		Accounts:         d.accounts,
		NotificationRepo: d.notifs,
	}).(*service)
	return svc, d
}

func testCourse() *domain.Course {
	return &domain.Course{
		CourseID:       "c1",
		Name:           "Vinyasa Yoga",
		SubscribeFrom:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		SubscribeUntil: time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
		MaxSubscribers: 2,
	}
}

func testUser() *domain.User {
	return &domain.User{UserID: "u1", Username: "gbianchi", FirstName: "Giulia", LastName: "Bianchi"}
}

func withinWindow(svc *service) {
	svc.now = func() time.Time { return time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC) }
}

// --- Subscribe tests ---

func TestSubscribe_HappyPath(t *testing.T) {
	svc, d := newTestService()
	withinWindow(svc)
	d.accounts.On("GetUserByID", mock.Anything, "u1").Return(domain.Ok(testUser()), nil)
	d.courses.On("Get", mock.Anything, "c1").Return(testCourse(), nil)
	d.subs.On("CountByCourse", mock.Anything, "c1").Return(1, nil)
	d.subs.On("Put", mock.Anything, mock.AnythingOfType("*domain.Subscription")).Return(nil)
	d.notifs.On("Put", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)

	sub, err := svc.Subscribe(context.Background(), "u1", "c1")

	require.NoError(t, err)
	assert.Equal(t, "c1", sub.CourseID)
	assert.Equal(t, "u1", sub.UserID)
	assert.Equal(t, "Vinyasa Yoga", sub.CourseName)
	assert.Equal(t, "Giulia Bianchi", sub.SubscriberName)
	d.subs.AssertExpectations(t)
	d.notifs.AssertExpectations(t)
}

func TestSubscribe_UnknownUser(t *testing.T) {
	svc, d := newTestService()
	d.accounts.On("GetUserByID", mock.Anything, "ghost").
		Return(domain.Fail[*domain.User](http.StatusNotFound, "user not found"), nil)

	_, err := svc.Subscribe(context.Background(), "ghost", "c1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSubscribe_UnknownCourse(t *testing.T) {
	svc, d := newTestService()
	d.accounts.On("GetUserByID", mock.Anything, "u1").Return(domain.Ok(testUser()), nil)
	d.courses.On("Get", mock.Anything, "missing").Return(nil, domain.ErrNotFound)

	_, err := svc.Subscribe(context.Background(), "u1", "missing")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSubscribe_BeforeWindow(t *testing.T) {
	svc, d := newTestService()
	svc.now = func() time.Time { return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC) }
	d.accounts.On("GetUserByID", mock.Anything, "u1").Return(domain.Ok(testUser()), nil)
	d.courses.On("Get", mock.Anything, "c1").Return(testCourse(), nil)

	_, err := svc.Subscribe(context.Background(), "u1", "c1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestSubscribe_AfterWindow(t *testing.T) {
	svc, d := newTestService()
	svc.now = func() time.Time { return time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC) }
	d.accounts.On("GetUserByID", mock.Anything, "u1").Return(domain.Ok(testUser()), nil)
	d.courses.On("Get", mock.Anything, "c1").Return(testCourse(), nil)

	_, err := svc.Subscribe(context.Background(), "u1", "c1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestSubscribe_CourseFull(t *testing.T) {
	svc, d := newTestService()
	withinWindow(svc)
	d.accounts.On("GetUserByID", mock.Anything, "u1").Return(domain.Ok(testUser()), nil)
	d.courses.On("Get", mock.Anything, "c1").Return(testCourse(), nil)
	d.subs.On("CountByCourse", mock.Anything, "c1").Return(2, nil)

	_, err := svc.Subscribe(context.Background(), "u1", "c1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	d.subs.AssertNotCalled(t, "Put")
}

func TestSubscribe_UnlimitedCourseSkipsCount(t *testing.T) {
	svc, d := newTestService()
	withinWindow(svc)
	c := testCourse()
	c.MaxSubscribers = 0
	d.accounts.On("GetUserByID", mock.Anything, "u1").Return(domain.Ok(testUser()), nil)
	d.courses.On("Get", mock.Anything, "c1").Return(c, nil)
	d.subs.On("Put", mock.Anything, mock.AnythingOfType("*domain.Subscription")).Return(nil)
	d.notifs.On("Put", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)

	_, err := svc.Subscribe(context.Background(), "u1", "c1")

	require.NoError(t, err)
	d.subs.AssertNotCalled(t, "CountByCourse")
}

func TestSubscribe_Duplicate(t *testing.T) {
	svc, d := newTestService()
	withinWindow(svc)
	d.accounts.On("GetUserByID", mock.Anything, "u1").Return(domain.Ok(testUser()), nil)
	d.courses.On("Get", mock.Anything, "c1").Return(testCourse(), nil)
	d.subs.On("CountByCourse", mock.Anything, "c1").Return(1, nil)
	d.subs.On("Put", mock.Anything, mock.AnythingOfType("*domain.Subscription")).
		Return(domain.ErrConflict)

	_, err := svc.Subscribe(context.Background(), "u1", "c1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	d.notifs.AssertNotCalled(t, "Put")
}

// --- Unsubscribe / listing tests ---

func TestUnsubscribe_NotFound(t *testing.T) {
	svc, d := newTestService()
	d.subs.On("Delete", mock.Anything, "c1", "u1").Return(domain.ErrNotFound)

	err := svc.Unsubscribe(context.Background(), "u1", "c1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestListByUser_DefaultsLimit(t *testing.T) {
	svc, d := newTestService()
	d.subs.On("ListByUser", mock.Anything, "u1", int32(50), "").
		Return([]domain.Subscription{{CourseID: "c1", UserID: "u1"}}, "", nil)

	subs, cursor, err := svc.ListByUser(context.Background(), "u1", 0, "")

	require.NoError(t, err)
	assert.Len(t, subs, 1)
	assert.Empty(t, cursor)
}
