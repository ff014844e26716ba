package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/techproject/core"
	"github.com/trezcool/techproject/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) CreateUser(ctx context.Context, exec core.DBExecutor, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	usr.ID = repo.db.seq
	repo.db.table[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, exec core.DBExecutor, id int) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.table[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryUsersByID(ctx context.Context, exec core.DBExecutor, ids ...int) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var res []user.User
	for _, id := range ids {
		if usr, ok := repo.db.table[id]; ok {
			res = append(res, *usr)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}
