package user

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/techproject/core"
)

var (
	// errors
	ErrNotFound = errors.New("user not found")
)

type (
	Repository interface {
		CreateUser(ctx context.Context, exec core.DBExecutor, usr User) (User, error)
		GetUserByID(ctx context.Context, exec core.DBExecutor, id int) (User, error)
		// QueryUsersByID returns the users matching ids; missing ids are not an error.
		QueryUsersByID(ctx context.Context, exec core.DBExecutor, ids ...int) ([]User, error)
	}

	Service struct {
		db   core.Database
		repo Repository
	}
)

func NewService(db core.Database, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

func (svc *Service) Create(ctx context.Context, name, uname, email string) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Name:      core.CleanString(name),
		Username:  core.CleanString(uname, true /* lower */),
		Email:     core.CleanString(email, true /* lower */),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateUser(ctx, svc.db.Executor(), usr)
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, svc.db.Executor(), id)
}

func (svc *Service) QueryByID(ctx context.Context, ids ...int) ([]User, error) {
	return svc.repo.QueryUsersByID(ctx, svc.db.Executor(), ids...)
}
