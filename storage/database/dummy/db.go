package dummydb

import (
	"context"
	"sync"

	"github.com/trezcool/techproject/core"
	"github.com/trezcool/techproject/core/project"
	"github.com/trezcool/techproject/core/task"
	"github.com/trezcool/techproject/core/user"
)

type (
	// DB is an in-memory store used by tests and local development.
	// It satisfies core.Database with a nil executor; "transactions" only
	// carry post-commit hooks.
	DB struct {
		user    *userTable
		project *projectTable
		task    *taskTable
	}

	userTable struct {
		sync.RWMutex
		table map[int]*user.User
		seq   int
	}

	projectTable struct {
		sync.RWMutex
		projects      map[int]*project.Project
		clients       map[int]*project.Client
		statusOptions map[int]*project.StatusOption
		seq           int
	}

	taskTable struct {
		sync.RWMutex
		tasks        map[int]*task.Task
		dependencies map[int]*task.Dependency
		seq          int
	}
)

var _ core.Database = (*DB)(nil)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[int]*user.User)},
		project: &projectTable{
			projects:      make(map[int]*project.Project),
			clients:       make(map[int]*project.Client),
			statusOptions: make(map[int]*project.StatusOption),
		},
		task: &taskTable{
			tasks:        make(map[int]*task.Task),
			dependencies: make(map[int]*task.Dependency),
		},
	}
	return db, nil
}

func (db *DB) Executor() core.DBExecutor { return nil }

func (db *DB) Begin(ctx context.Context) (*core.Tx, error) {
	return core.NewTx(nil, nil, nil), nil
}
