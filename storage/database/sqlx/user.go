package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/techproject/core"
	"github.com/trezcool/techproject/core/user"
)

type userRepository struct{}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository() user.Repository {
	return &userRepository{}
}

func (repo userRepository) CreateUser(ctx context.Context, exec core.DBExecutor, usr user.User) (user.User, error) {
	e := ext(exec)
	q := e.Rebind(`
INSERT INTO app_user (name, username, email, is_active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id`)
	err := sqlx.GetContext(ctx, e, &usr.ID, q,
		usr.Name, usr.Username, usr.Email, usr.IsActive, usr.CreatedAt, usr.UpdatedAt,
	)
	return usr, err
}

func (repo userRepository) GetUserByID(ctx context.Context, exec core.DBExecutor, id int) (user.User, error) {
	e := ext(exec)
	q := e.Rebind(`SELECT id, name, username, email, is_active, created_at, updated_at FROM app_user WHERE id = ?`)
	var usr user.User
	if err := sqlx.GetContext(ctx, e, &usr, q, id); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return usr, nil
}

func (repo userRepository) QueryUsersByID(ctx context.Context, exec core.DBExecutor, ids ...int) ([]user.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	e := ext(exec)
	q, args, err := sqlx.In(`SELECT id, name, username, email, is_active, created_at, updated_at FROM app_user WHERE id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	var res []user.User
	err = sqlx.SelectContext(ctx, e, &res, e.Rebind(q), args...)
	return res, err
}
