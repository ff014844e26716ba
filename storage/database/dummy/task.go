package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/techproject/core"
	"github.com/trezcool/techproject/core/task"
)

type taskRepository struct {
	db *taskTable
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *DB) task.Repository {
	return &taskRepository{db: db.task}
}

func (repo *taskRepository) query() []task.Task {
	tasks := make([]task.Task, 0, len(repo.db.tasks))
	for _, t := range repo.db.tasks {
		tasks = append(tasks, *t)
	}
	return tasks
}

func (repo *taskRepository) MaxOrdering(ctx context.Context, exec core.DBExecutor, projectID, groupID, parentID int) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var max int
	for _, t := range repo.db.tasks {
		if t.ProjectID == projectID && t.GroupID == groupID && t.ParentID == parentID && t.Ordering > max {
			max = t.Ordering
		}
	}
	return max, nil
}

func (repo *taskRepository) CreateTask(ctx context.Context, exec core.DBExecutor, t task.Task) (task.Task, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	t.ID = repo.db.seq
	repo.db.tasks[t.ID] = &t
	return t, nil
}

func (repo *taskRepository) GetTaskByID(ctx context.Context, exec core.DBExecutor, id int) (task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.tasks[id]; ok {
		return *t, nil
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *taskRepository) QueryChildTasks(ctx context.Context, exec core.DBExecutor, projectID, groupID, parentID int) ([]task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var res []task.Task
	for _, t := range repo.query() {
		if t.ProjectID == projectID && t.GroupID == groupID && t.ParentID == parentID {
			res = append(res, t)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Ordering != res[j].Ordering {
			return res[i].Ordering < res[j].Ordering
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}

func (repo *taskRepository) UpdateTaskOrdering(ctx context.Context, exec core.DBExecutor, taskID, ordering int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	t, ok := repo.db.tasks[taskID]
	if !ok {
		return task.ErrNotFound
	}
	t.Ordering = ordering
	return nil
}

func (repo *taskRepository) QueryProjectTasks(ctx context.Context, exec core.DBExecutor, projectID int) ([]task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var res []task.Task
	for _, t := range repo.query() {
		if t.ProjectID == projectID {
			res = append(res, t)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		ti, tj := res[i], res[j]
		if ti.GroupID != tj.GroupID {
			return ti.GroupID < tj.GroupID
		}
		if ti.ParentID != tj.ParentID {
			return ti.ParentID < tj.ParentID
		}
		if ti.Ordering != tj.Ordering {
			return ti.Ordering < tj.Ordering
		}
		return ti.ID < tj.ID
	})
	return res, nil
}

func (repo *taskRepository) FilterTasks(ctx context.Context, exec core.DBExecutor, filter task.QueryFilter) ([]task.Task, error) {
	if len(filter.ProjectIDs) == 0 {
		return nil, nil
	}

	repo.db.RLock()
	defer repo.db.RUnlock()

	projects := make(map[int]bool, len(filter.ProjectIDs))
	for _, id := range filter.ProjectIDs {
		projects[id] = true
	}

	var res []task.Task
	for _, t := range repo.query() {
		if !projects[t.ProjectID] {
			continue
		}
		if filter.AssigneeID > 0 && t.Assignee != filter.AssigneeID {
			continue
		}
		if filter.AssigneeID <= 0 && filter.AnyAssignee && t.Assignee <= 0 {
			continue
		}
		if !filter.ModifiedSince.IsZero() && t.Modified.Before(filter.ModifiedSince) {
			continue
		}
		res = append(res, t)
	}
	sort.Slice(res, func(i, j int) bool {
		ti, tj := res[i], res[j]
		if ti.Assignee != tj.Assignee {
			return ti.Assignee < tj.Assignee
		}
		if ti.ProjectID != tj.ProjectID {
			return ti.ProjectID < tj.ProjectID
		}
		if ti.Ordering != tj.Ordering {
			return ti.Ordering < tj.Ordering
		}
		return ti.ID < tj.ID
	})
	return res, nil
}

func (repo *taskRepository) DependencyExists(ctx context.Context, exec core.DBExecutor, projectID, slaveID, masterID int) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, dep := range repo.db.dependencies {
		if dep.ProjectID == projectID && dep.Slave == slaveID && dep.Master == masterID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *taskRepository) CreateDependency(ctx context.Context, exec core.DBExecutor, dep task.Dependency) (task.Dependency, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	dep.ID = repo.db.seq
	repo.db.dependencies[dep.ID] = &dep
	return dep, nil
}

func (repo *taskRepository) QueryProjectDependencies(ctx context.Context, exec core.DBExecutor, projectID int) ([]task.Dependency, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var res []task.Dependency
	for _, dep := range repo.db.dependencies {
		if dep.ProjectID == projectID {
			res = append(res, *dep)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}
