package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/techproject/core"
	"github.com/trezcool/techproject/core/aigen"
	"github.com/trezcool/techproject/core/project"
	"github.com/trezcool/techproject/core/task"
	schedsvc "github.com/trezcool/techproject/services/scheduler"
)

type taskApi struct {
	taskSvc    *task.Service
	projectSvc *project.Service
	scheduler  *schedsvc.Scheduler
	validate   *validator.Validate
}

func registerTaskAPI(g *echo.Group, deps ServerDeps) {
	api := taskApi{
		taskSvc:    deps.TaskSvc,
		projectSvc: deps.ProjectSvc,
		scheduler:  deps.Scheduler,
		validate:   deps.Validate,
	}

	pg := g.Group("/projects/:id")
	pg.GET("/tasks", api.query)
	pg.POST("/tasks", api.create)
	pg.POST("/tasks/generate", api.generate)
	pg.GET("/dependencies", api.queryDependencies)
}

// Handlers

func (api *taskApi) create(ctx echo.Context) error {
	proj, err := api.getProject(ctx)
	if err != nil {
		return err
	}

	var data task.NewTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	data.ProjectID = proj.ID
	data.ContextID = proj.ContextID
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	t, err := api.taskSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		if core.IsValidationError(err) {
			return err
		}
		return errors.Wrap(err, "creating task")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *taskApi) query(ctx echo.Context) error {
	proj, err := api.getProject(ctx)
	if err != nil {
		return err
	}

	tasks, err := api.taskSvc.QueryByProject(ctx.Request().Context(), proj.ID)
	if err != nil {
		return errors.Wrap(err, "querying tasks")
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *taskApi) queryDependencies(ctx echo.Context) error {
	proj, err := api.getProject(ctx)
	if err != nil {
		return err
	}

	deps, err := api.taskSvc.QueryDependencies(ctx.Request().Context(), proj.ID)
	if err != nil {
		return errors.Wrap(err, "querying dependencies")
	}
	if deps == nil {
		deps = []task.Dependency{}
	}
	return ctx.JSON(http.StatusOK, deps)
}

func (api *taskApi) generate(ctx echo.Context) error {
	proj, err := api.getProject(ctx)
	if err != nil {
		return err
	}

	var data GenerateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GenerateRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	jobID, err := api.scheduler.Schedule(aigen.Job{
		ProjectID:    proj.ID,
		UserID:       data.UserID,
		Instructions: data.Instructions,
	})
	if err != nil {
		if errors.Cause(err) == schedsvc.ErrQueueFull {
			return errServiceUnavailable
		}
		return errors.Wrap(err, "scheduling generation job")
	}
	return ctx.JSON(http.StatusAccepted, GenerateResponse{JobID: jobID})
}

func (api *taskApi) getProject(ctx echo.Context) (project.Project, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return project.Project{}, errHttpNotFound
	}
	proj, err := api.projectSvc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == project.ErrNotFound {
			return project.Project{}, errHttpNotFound
		}
		return project.Project{}, errors.Wrap(err, "finding project by ID")
	}
	return proj, nil
}

type (
	GenerateRequest struct {
		UserID       int    `json:"user_id" validate:"required"`
		Instructions string `json:"instructions" validate:"required"`
	}

	GenerateResponse struct {
		JobID string `json:"job_id"`
	}
)

func (gr *GenerateRequest) Validate(validate *validator.Validate) error {
	gr.Instructions = core.CleanString(gr.Instructions)
	return validate.Struct(gr)
}
