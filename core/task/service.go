package task

import (
	"context"
	goerrors "errors"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/techproject/core"
)

var (
	// errors
	ErrNotFound = goerrors.New("task not found")

	errTitleRequired = goerrors.New("task title is required")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		// MaxOrdering returns the highest ordering among siblings in the exact
		// (projectID, groupID, parentID) bucket; 0 for an empty bucket.
		MaxOrdering(ctx context.Context, exec core.DBExecutor, projectID, groupID, parentID int) (int, error)
		CreateTask(ctx context.Context, exec core.DBExecutor, t Task) (Task, error)
		GetTaskByID(ctx context.Context, exec core.DBExecutor, id int) (Task, error)
		// QueryChildTasks returns a bucket's tasks ordered by (ordering, id).
		QueryChildTasks(ctx context.Context, exec core.DBExecutor, projectID, groupID, parentID int) ([]Task, error)
		UpdateTaskOrdering(ctx context.Context, exec core.DBExecutor, taskID, ordering int) error
		QueryProjectTasks(ctx context.Context, exec core.DBExecutor, projectID int) ([]Task, error)
		// FilterTasks applies AND operation on available QueryFilter fields.
		FilterTasks(ctx context.Context, exec core.DBExecutor, filter QueryFilter) ([]Task, error)

		DependencyExists(ctx context.Context, exec core.DBExecutor, projectID, slaveID, masterID int) (bool, error)
		CreateDependency(ctx context.Context, exec core.DBExecutor, dep Dependency) (Dependency, error)
		QueryProjectDependencies(ctx context.Context, exec core.DBExecutor, projectID int) ([]Dependency, error)
	}

	Service struct {
		db     core.Database
		repo   Repository
		events core.EventSink
	}
)

func NewService(db core.Database, repo Repository, events core.EventSink) *Service {
	return &Service{db: db, repo: repo, events: events}
}

// NextOrdering returns one greater than the maximum existing ordering among
// siblings in the exact bucket; 1 for an empty bucket. Call it on a
// transaction executor: two concurrent creations into the same bucket must
// not receive the same rank.
func (svc *Service) NextOrdering(ctx context.Context, exec core.DBExecutor, projectID, groupID, parentID int) (int, error) {
	max, err := svc.repo.MaxOrdering(ctx, exec, projectID, groupID, parentID)
	if err != nil {
		return 0, errors.Wrap(err, "querying max ordering")
	}
	return max + 1, nil
}

// Create persists a new task in its own transaction. When the task is
// attached under a parent it is also linked as a dependency and the parent's
// children are renumbered, mirroring the bulk-generation protocol.
func (svc *Service) Create(ctx context.Context, nt NewTask) (Task, error) {
	tx, err := svc.db.Begin(ctx)
	if err != nil {
		return Task{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	t, err := svc.CreateTx(ctx, tx, nt)
	if err != nil {
		return Task{}, err
	}
	if nt.ParentID != 0 {
		if err = svc.LinkTx(ctx, tx, nt.ProjectID, nt.GroupID, nt.ParentID, t.ID); err != nil {
			return Task{}, err
		}
		if err = svc.ReorderChildrenTx(ctx, tx, nt.ProjectID, nt.GroupID, nt.ParentID); err != nil {
			return Task{}, err
		}
		if t, err = svc.repo.GetTaskByID(ctx, tx.Executor(), t.ID); err != nil {
			return Task{}, errors.Wrap(err, "reloading task")
		}
	}

	if err = tx.Commit(); err != nil {
		return Task{}, errors.Wrap(err, "committing transaction")
	}
	return t, nil
}

// CreateTx persists a new task within an open transaction. The creation event
// is queued as a post-commit hook: delivery is best-effort logging, never part
// of the transaction.
func (svc *Service) CreateTx(ctx context.Context, tx *core.Tx, nt NewTask) (Task, error) {
	title := core.CleanString(nt.Title)
	if title == "" {
		return Task{}, core.NewValidationError(errTitleRequired, core.FieldError{Field: "title", Error: errTitleRequired.Error()})
	}

	ord, err := svc.NextOrdering(ctx, tx.Executor(), nt.ProjectID, nt.GroupID, nt.ParentID)
	if err != nil {
		return Task{}, err
	}

	now := nowFunc().UTC()
	t := Task{
		ProjectID:      nt.ProjectID,
		GroupID:        nt.GroupID,
		ParentID:       nt.ParentID,
		Ordering:       ord,
		Title:          title,
		Description:    core.CleanString(nt.Description),
		Owner:          nt.Owner,
		Assignee:       nt.Assignee,
		CreatedBy:      nt.CreatedBy,
		LastModifiedBy: nt.CreatedBy,
		Created:        now,
		Modified:       now,
	}
	t, err = svc.repo.CreateTask(ctx, tx.Executor(), t)
	if err != nil {
		return Task{}, errors.Wrap(err, "creating task")
	}

	if svc.events != nil {
		evt := core.Event{
			Kind:      core.EventTaskCreated,
			ProjectID: t.ProjectID,
			ContextID: nt.ContextID,
			TaskID:    t.ID,
			GroupID:   t.GroupID,
		}
		tx.AfterCommit(func() { svc.events.Emit(evt) })
	}
	return t, nil
}

// LinkTx records that slaveID depends on masterID. Idempotent: an existing
// (projectID, slaveID, masterID) edge is left untouched and is not an error.
func (svc *Service) LinkTx(ctx context.Context, tx *core.Tx, projectID, groupID, slaveID, masterID int) error {
	exists, err := svc.repo.DependencyExists(ctx, tx.Executor(), projectID, slaveID, masterID)
	if err != nil {
		return errors.Wrap(err, "checking dependency")
	}
	if exists {
		return nil
	}
	dep := Dependency{
		ProjectID: projectID,
		GroupID:   groupID,
		Master:    masterID,
		Slave:     slaveID,
	}
	if _, err = svc.repo.CreateDependency(ctx, tx.Executor(), dep); err != nil {
		return errors.Wrap(err, "creating dependency")
	}
	return nil
}

// Link is LinkTx in its own transaction.
func (svc *Service) Link(ctx context.Context, projectID, groupID, slaveID, masterID int) error {
	tx, err := svc.db.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if err = svc.LinkTx(ctx, tx, projectID, groupID, slaveID, masterID); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// ReorderChildrenTx renumbers the children of a mutated parent to a dense
// increasing sequence starting at 1, keeping their current relative order.
func (svc *Service) ReorderChildrenTx(ctx context.Context, tx *core.Tx, projectID, groupID, parentID int) error {
	children, err := svc.repo.QueryChildTasks(ctx, tx.Executor(), projectID, groupID, parentID)
	if err != nil {
		return errors.Wrap(err, "querying children")
	}
	for i, child := range children {
		if ord := i + 1; child.Ordering != ord {
			if err = svc.repo.UpdateTaskOrdering(ctx, tx.Executor(), child.ID, ord); err != nil {
				return errors.Wrap(err, "updating ordering")
			}
		}
	}
	return nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Task, error) {
	return svc.repo.GetTaskByID(ctx, svc.db.Executor(), id)
}

func (svc *Service) QueryByProject(ctx context.Context, projectID int) ([]Task, error) {
	return svc.repo.QueryProjectTasks(ctx, svc.db.Executor(), projectID)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Task, error) {
	return svc.repo.FilterTasks(ctx, svc.db.Executor(), filter)
}

func (svc *Service) QueryDependencies(ctx context.Context, projectID int) ([]Dependency, error) {
	return svc.repo.QueryProjectDependencies(ctx, svc.db.Executor(), projectID)
}
