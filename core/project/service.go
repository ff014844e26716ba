package project

import (
	"context"
	"errors"

	"github.com/trezcool/techproject/core"
)

var (
	// errors
	ErrNotFound       = errors.New("project not found")
	ErrClientNotFound = errors.New("client not found")
)

type (
	Repository interface {
		CreateProject(ctx context.Context, exec core.DBExecutor, p Project) (Project, error)
		GetProjectByID(ctx context.Context, exec core.DBExecutor, id int) (Project, error)
		QueryCourseProjects(ctx context.Context, exec core.DBExecutor, courseID int) ([]Project, error)

		CreateClient(ctx context.Context, exec core.DBExecutor, c Client) (Client, error)
		GetClientByID(ctx context.Context, exec core.DBExecutor, id int) (Client, error)

		CreateStatusOption(ctx context.Context, exec core.DBExecutor, opt StatusOption) (StatusOption, error)
		QueryStatusOptions(ctx context.Context, exec core.DBExecutor, projectID int) ([]StatusOption, error)
	}

	Service struct {
		db   core.Database
		repo Repository
	}
)

func NewService(db core.Database, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

func (svc *Service) Create(ctx context.Context, p Project) (Project, error) {
	p.Name = core.CleanString(p.Name)
	return svc.repo.CreateProject(ctx, svc.db.Executor(), p)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Project, error) {
	return svc.repo.GetProjectByID(ctx, svc.db.Executor(), id)
}

func (svc *Service) QueryByCourse(ctx context.Context, courseID int) ([]Project, error) {
	return svc.repo.QueryCourseProjects(ctx, svc.db.Executor(), courseID)
}

func (svc *Service) QueryStatusOptions(ctx context.Context, projectID int) ([]StatusOption, error) {
	return svc.repo.QueryStatusOptions(ctx, svc.db.Executor(), projectID)
}
