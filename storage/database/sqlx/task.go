package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/techproject/core"
	"github.com/trezcool/techproject/core/task"
)

const taskCols = `id, project_id, group_id, parent_id, ordering, title, description, status, done,
owner_id, assignee_id, created_by, last_modified_by, created_at, modified_at, start_at, end_at,
cost_rate, quoted, spent, risk`

type taskRepository struct{}

var _ task.Repository = (*taskRepository)(nil)

func NewTaskRepository() task.Repository {
	return &taskRepository{}
}

func (repo taskRepository) MaxOrdering(ctx context.Context, exec core.DBExecutor, projectID, groupID, parentID int) (int, error) {
	e := ext(exec)
	q := e.Rebind(`SELECT COALESCE(MAX(ordering), 0) FROM task WHERE project_id = ? AND group_id = ? AND parent_id = ?`)
	var max int
	err := sqlx.GetContext(ctx, e, &max, q, projectID, groupID, parentID)
	return max, err
}

func (repo taskRepository) CreateTask(ctx context.Context, exec core.DBExecutor, t task.Task) (task.Task, error) {
	e := ext(exec)
	q := e.Rebind(`
INSERT INTO task (project_id, group_id, parent_id, ordering, title, description, status, done,
                  owner_id, assignee_id, created_by, last_modified_by, created_at, modified_at,
                  start_at, end_at, cost_rate, quoted, spent, risk)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`)
	err := sqlx.GetContext(ctx, e, &t.ID, q,
		t.ProjectID, t.GroupID, t.ParentID, t.Ordering, t.Title, t.Description, t.Status, t.Done,
		t.Owner, t.Assignee, t.CreatedBy, t.LastModifiedBy, t.Created, t.Modified,
		t.Start, t.End, t.CostRate, t.Quoted, t.Spent, t.Risk,
	)
	return t, err
}

func (repo taskRepository) GetTaskByID(ctx context.Context, exec core.DBExecutor, id int) (task.Task, error) {
	e := ext(exec)
	q := e.Rebind(`SELECT ` + taskCols + ` FROM task WHERE id = ?`)
	var t task.Task
	if err := sqlx.GetContext(ctx, e, &t, q, id); err != nil {
		if err == sql.ErrNoRows {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}
	return t, nil
}

func (repo taskRepository) QueryChildTasks(ctx context.Context, exec core.DBExecutor, projectID, groupID, parentID int) ([]task.Task, error) {
	e := ext(exec)
	q := e.Rebind(`SELECT ` + taskCols + ` FROM task
WHERE project_id = ? AND group_id = ? AND parent_id = ?
ORDER BY ordering, id`)
	var res []task.Task
	err := sqlx.SelectContext(ctx, e, &res, q, projectID, groupID, parentID)
	return res, err
}

func (repo taskRepository) UpdateTaskOrdering(ctx context.Context, exec core.DBExecutor, taskID, ordering int) error {
	e := ext(exec)
	q := e.Rebind(`UPDATE task SET ordering = ? WHERE id = ?`)
	_, err := e.ExecContext(ctx, q, ordering, taskID)
	return err
}

func (repo taskRepository) QueryProjectTasks(ctx context.Context, exec core.DBExecutor, projectID int) ([]task.Task, error) {
	e := ext(exec)
	q := e.Rebind(`SELECT ` + taskCols + ` FROM task WHERE project_id = ? ORDER BY group_id, parent_id, ordering, id`)
	var res []task.Task
	err := sqlx.SelectContext(ctx, e, &res, q, projectID)
	return res, err
}

func (repo taskRepository) FilterTasks(ctx context.Context, exec core.DBExecutor, filter task.QueryFilter) ([]task.Task, error) {
	if len(filter.ProjectIDs) == 0 {
		return nil, nil
	}
	e := ext(exec)

	clauses := []string{"project_id IN (?)"}
	args := []interface{}{filter.ProjectIDs}
	if filter.AssigneeID > 0 {
		clauses = append(clauses, "assignee_id = ?")
		args = append(args, filter.AssigneeID)
	} else if filter.AnyAssignee {
		clauses = append(clauses, "assignee_id > 0")
	}
	if !filter.ModifiedSince.IsZero() {
		clauses = append(clauses, "modified_at >= ?")
		args = append(args, filter.ModifiedSince)
	}

	q := `SELECT ` + taskCols + ` FROM task WHERE ` + strings.Join(clauses, " AND ") +
		` ORDER BY assignee_id, project_id, ordering, id`
	q, inArgs, err := sqlx.In(q, args...)
	if err != nil {
		return nil, err
	}

	var res []task.Task
	err = sqlx.SelectContext(ctx, e, &res, e.Rebind(q), inArgs...)
	return res, err
}

func (repo taskRepository) DependencyExists(ctx context.Context, exec core.DBExecutor, projectID, slaveID, masterID int) (bool, error) {
	e := ext(exec)
	q := e.Rebind(`SELECT EXISTS (SELECT 1 FROM task_dependency WHERE project_id = ? AND slave_id = ? AND master_id = ?)`)
	var exists bool
	err := sqlx.GetContext(ctx, e, &exists, q, projectID, slaveID, masterID)
	return exists, err
}

func (repo taskRepository) CreateDependency(ctx context.Context, exec core.DBExecutor, dep task.Dependency) (task.Dependency, error) {
	e := ext(exec)
	q := e.Rebind(`INSERT INTO task_dependency (project_id, group_id, master_id, slave_id) VALUES (?, ?, ?, ?) RETURNING id`)
	err := sqlx.GetContext(ctx, e, &dep.ID, q, dep.ProjectID, dep.GroupID, dep.Master, dep.Slave)
	return dep, err
}

func (repo taskRepository) QueryProjectDependencies(ctx context.Context, exec core.DBExecutor, projectID int) ([]task.Dependency, error) {
	e := ext(exec)
	q := e.Rebind(`SELECT id, project_id, group_id, master_id, slave_id FROM task_dependency WHERE project_id = ? ORDER BY id`)
	var res []task.Dependency
	err := sqlx.SelectContext(ctx, e, &res, q, projectID)
	return res, err
}
