package user

import (
	"context"
	"fmt"

	"github.com/easymotion-api/internal/domain"
)

type Service interface {
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error)
	Delete(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	SetTwoFactor(ctx context.Context, userID string, enabled bool) (*domain.User, error)
}

// accountManager is the slice of the credential manager this service needs.
type accountManager interface {
	CreateUser(ctx context.Context, req domain.CreateUserRequest) (domain.Result[*domain.User], error)
	GetUserByID(ctx context.Context, userID string) (domain.Result[*domain.User], error)
	UpdateUser(ctx context.Context, userID string, patch domain.UpdateUserRequest) (domain.Result[*domain.User], error)
	DeleteUser(ctx context.Context, userID string) (domain.Result[*domain.User], error)
	ChangePassword(ctx context.Context, userID, oldPlain, newPlain string) (domain.Result[*domain.User], error)
	SetTwoFactor(ctx context.Context, userID string, enabled bool) (domain.Result[*domain.User], error)
}

type userLister interface {
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error)
}

type sessionStore interface {
	DisableByUser(ctx context.Context, userID string) error
}

type service struct {
	accounts    accountManager
	repo        userLister
	sessionRepo sessionStore
}

type ServiceDeps struct {
	Accounts    accountManager
	UserRepo    userLister
	SessionRepo sessionStore
}

func NewService(deps ServiceDeps) Service {
	return &service{
		accounts:    deps.Accounts,
		repo:        deps.UserRepo,
		sessionRepo: deps.SessionRepo,
	}
}

// resultErr turns a failure Result into a sentinel-wrapped error. The message
// travels with the error so handlers can surface it.
func resultErr[T any](res domain.Result[T]) error {
	return fmt.Errorf("%s: %w", res.Message(), res.Err())
}

func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	res, err := s.accounts.CreateUser(ctx, req)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, resultErr(res)
	}
	return res.Data, nil
}

func (s *service) List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error) {
	if limit < 1 {
		limit = 50
	}
	return s.repo.ScanPage(ctx, int32(limit), cursor)
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	res, err := s.accounts.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, resultErr(res)
	}
	return res.Data, nil
}

func (s *service) Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
	res, err := s.accounts.UpdateUser(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, resultErr(res)
	}
	return res.Data, nil
}

// Delete removes the credential record and disables the user's sessions so
// issued tokens stop refreshing.
func (s *service) Delete(ctx context.Context, userID string) error {
	res, err := s.accounts.DeleteUser(ctx, userID)
	if err != nil {
		return err
	}
	if !res.Success {
		return resultErr(res)
	}
	return s.sessionRepo.DisableByUser(ctx, userID)
}

func (s *service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	res, err := s.accounts.ChangePassword(ctx, userID, currentPassword, newPassword)
	if err != nil {
		return err
	}
	if !res.Success {
		return resultErr(res)
	}
	return nil
}

func (s *service) SetTwoFactor(ctx context.Context, userID string, enabled bool) (*domain.User, error) {
	res, err := s.accounts.SetTwoFactor(ctx, userID, enabled)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, resultErr(res)
	}
	return res.Data, nil
}
