package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/techproject/core"
	"github.com/trezcool/techproject/core/project"
)

type projectRepository struct{}

var _ project.Repository = (*projectRepository)(nil)

func NewProjectRepository() project.Repository {
	return &projectRepository{}
}

func (repo projectRepository) CreateProject(ctx context.Context, exec core.DBExecutor, p project.Project) (project.Project, error) {
	e := ext(exec)
	q := e.Rebind(`INSERT INTO project (course_id, client_id, context_id, name) VALUES (?, ?, ?, ?) RETURNING id`)
	err := sqlx.GetContext(ctx, e, &p.ID, q, p.CourseID, p.ClientID, p.ContextID, p.Name)
	return p, err
}

func (repo projectRepository) GetProjectByID(ctx context.Context, exec core.DBExecutor, id int) (project.Project, error) {
	e := ext(exec)
	q := e.Rebind(`SELECT id, course_id, client_id, context_id, name FROM project WHERE id = ?`)
	var p project.Project
	if err := sqlx.GetContext(ctx, e, &p, q, id); err != nil {
		if err == sql.ErrNoRows {
			return project.Project{}, project.ErrNotFound
		}
		return project.Project{}, err
	}
	return p, nil
}

func (repo projectRepository) QueryCourseProjects(ctx context.Context, exec core.DBExecutor, courseID int) ([]project.Project, error) {
	e := ext(exec)
	q := e.Rebind(`SELECT id, course_id, client_id, context_id, name FROM project WHERE course_id = ? ORDER BY id`)
	var res []project.Project
	err := sqlx.SelectContext(ctx, e, &res, q, courseID)
	return res, err
}

func (repo projectRepository) CreateClient(ctx context.Context, exec core.DBExecutor, c project.Client) (project.Client, error) {
	e := ext(exec)
	q := e.Rebind(`INSERT INTO client (course_id, name) VALUES (?, ?) RETURNING id`)
	err := sqlx.GetContext(ctx, e, &c.ID, q, c.CourseID, c.Name)
	return c, err
}

func (repo projectRepository) GetClientByID(ctx context.Context, exec core.DBExecutor, id int) (project.Client, error) {
	e := ext(exec)
	q := e.Rebind(`SELECT id, course_id, name FROM client WHERE id = ?`)
	var c project.Client
	if err := sqlx.GetContext(ctx, e, &c, q, id); err != nil {
		if err == sql.ErrNoRows {
			return project.Client{}, project.ErrClientNotFound
		}
		return project.Client{}, err
	}
	return c, nil
}

func (repo projectRepository) CreateStatusOption(ctx context.Context, exec core.DBExecutor, opt project.StatusOption) (project.StatusOption, error) {
	e := ext(exec)
	q := e.Rebind(`INSERT INTO status_option (project_id, code, label) VALUES (?, ?, ?) RETURNING id`)
	err := sqlx.GetContext(ctx, e, &opt.ID, q, opt.ProjectID, opt.Code, opt.Label)
	return opt, err
}

func (repo projectRepository) QueryStatusOptions(ctx context.Context, exec core.DBExecutor, projectID int) ([]project.StatusOption, error) {
	e := ext(exec)
	q := e.Rebind(`SELECT id, project_id, code, label FROM status_option WHERE project_id = ? ORDER BY id`)
	var res []project.StatusOption
	err := sqlx.SelectContext(ctx, e, &res, q, projectID)
	return res, err
}
