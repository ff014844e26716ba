package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/techproject/core"
	"github.com/trezcool/techproject/core/project"
)

type projectRepository struct {
	db *projectTable
}

var _ project.Repository = (*projectRepository)(nil) // interface compliance check

func NewProjectRepository(db *DB) project.Repository {
	return &projectRepository{db: db.project}
}

func (repo *projectRepository) CreateProject(ctx context.Context, exec core.DBExecutor, p project.Project) (project.Project, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	p.ID = repo.db.seq
	repo.db.projects[p.ID] = &p
	return p, nil
}

func (repo *projectRepository) GetProjectByID(ctx context.Context, exec core.DBExecutor, id int) (project.Project, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.projects[id]; ok {
		return *p, nil
	}
	return project.Project{}, project.ErrNotFound
}

func (repo *projectRepository) QueryCourseProjects(ctx context.Context, exec core.DBExecutor, courseID int) ([]project.Project, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var res []project.Project
	for _, p := range repo.db.projects {
		if p.CourseID == courseID {
			res = append(res, *p)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (repo *projectRepository) CreateClient(ctx context.Context, exec core.DBExecutor, c project.Client) (project.Client, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	c.ID = repo.db.seq
	repo.db.clients[c.ID] = &c
	return c, nil
}

func (repo *projectRepository) GetClientByID(ctx context.Context, exec core.DBExecutor, id int) (project.Client, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.clients[id]; ok {
		return *c, nil
	}
	return project.Client{}, project.ErrClientNotFound
}

func (repo *projectRepository) CreateStatusOption(ctx context.Context, exec core.DBExecutor, opt project.StatusOption) (project.StatusOption, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	opt.ID = repo.db.seq
	repo.db.statusOptions[opt.ID] = &opt
	return opt, nil
}

func (repo *projectRepository) QueryStatusOptions(ctx context.Context, exec core.DBExecutor, projectID int) ([]project.StatusOption, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var res []project.StatusOption
	for _, opt := range repo.db.statusOptions {
		if opt.ProjectID == projectID {
			res = append(res, *opt)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}
