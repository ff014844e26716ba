package aigen

import (
	"context"
	goerrors "errors"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/techproject/core"
	"github.com/trezcool/techproject/core/project"
	"github.com/trezcool/techproject/core/task"
)

var (
	// job-fatal errors; the host job runner decides on retries
	ErrProviderUnavailable = goerrors.New("ai provider unavailable")
	ErrBadResponse         = goerrors.New("ai response cannot be used")
)

// Job is the serializable input of one background generation run.
type Job struct {
	ProjectID    int    `json:"project_id"`
	UserID       int    `json:"user_id"`
	Instructions string `json:"instructions"`
}

// Service turns free-text instructions into a two-level task tree via an
// external generative text provider.
type Service struct {
	db       core.Database
	projects project.Repository
	tasks    *task.Service
	gen      core.TextGenerator
	logger   core.Logger
}

func NewService(db core.Database, projects project.Repository, tasks *task.Service, gen core.TextGenerator, logger core.Logger) *Service {
	return &Service{db: db, projects: projects, tasks: tasks, gen: gen, logger: logger}
}

// Generate runs one bulk-generation job and returns the number of tasks
// created. The job runs detached from any user-facing request: incomplete
// input or an unresolvable project exits cleanly with no side effects, while
// provider and response-shape failures surface as typed errors for the job
// runner. The provider call happens before any transaction opens; the whole
// materialization commits or rolls back as one unit.
func (svc *Service) Generate(ctx context.Context, job Job) (int, error) {
	job.Instructions = core.CleanString(job.Instructions)
	if job.ProjectID == 0 || job.UserID == 0 || job.Instructions == "" {
		return 0, nil
	}

	proj, err := svc.projects.GetProjectByID(ctx, svc.db.Executor(), job.ProjectID)
	if err != nil {
		if errors.Cause(err) == project.ErrNotFound {
			return 0, nil
		}
		return 0, errors.Wrap(err, "resolving project")
	}
	if proj.ContextID == 0 {
		return 0, nil
	}

	text, err := svc.callProvider(ctx, BuildPrompt(job.Instructions), proj.ContextID, job.UserID)
	if err != nil {
		return 0, err
	}

	payload, err := ParsePayload(text)
	if err != nil {
		return 0, err
	}
	for _, skip := range payload.Skipped {
		svc.logger.Warn(fmt.Sprintf("generate tasks: skipping %s: %s", skip.Path, skip.Reason))
	}

	return svc.materialize(ctx, proj, job.UserID, payload)
}

func (svc *Service) callProvider(ctx context.Context, prompt string, contextID, userID int) (string, error) {
	if svc.gen == nil {
		return "", ErrProviderUnavailable
	}
	res, err := svc.gen.GenerateText(ctx, prompt, contextID, userID)
	if err != nil {
		return "", errors.WithMessage(ErrProviderUnavailable, err.Error())
	}
	if !res.Success {
		if res.ErrorMessage != "" {
			return "", errors.WithMessage(ErrProviderUnavailable, res.ErrorMessage)
		}
		return "", ErrProviderUnavailable
	}
	if core.CleanString(res.Text) == "" {
		return "", errors.WithMessage(ErrBadResponse, "blank response")
	}
	return res.Text, nil
}

const generatedGroupID = 0 // generated tasks land in the ungrouped bucket

func (svc *Service) materialize(ctx context.Context, proj project.Project, userID int, payload Payload) (int, error) {
	tx, err := svc.db.Begin(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var created int
	for _, spec := range payload.Tasks {
		root, err := svc.createOne(ctx, tx, proj, userID, spec.Title, spec.Description, 0)
		if err != nil {
			return 0, err
		}
		if root.ID == 0 {
			continue
		}
		created++

		for _, sub := range spec.Subtasks {
			child, err := svc.createOne(ctx, tx, proj, userID, sub.Title, sub.Description, root.ID)
			if err != nil {
				return 0, err
			}
			if child.ID == 0 {
				continue
			}
			created++

			if err = svc.tasks.LinkTx(ctx, tx, proj.ID, generatedGroupID, root.ID, child.ID); err != nil {
				return 0, err
			}
			if err = svc.tasks.ReorderChildrenTx(ctx, tx, proj.ID, generatedGroupID, root.ID); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "committing transaction")
	}
	return created, nil
}

// createOne creates a single task; an entity-level validation failure skips
// the entity (zero Task) instead of aborting its siblings.
func (svc *Service) createOne(ctx context.Context, tx *core.Tx, proj project.Project, userID int, title, description string, parentID int) (task.Task, error) {
	nt := task.NewTask{
		ProjectID:   proj.ID,
		GroupID:     generatedGroupID,
		ParentID:    parentID,
		Title:       title,
		Description: description,
		Owner:       userID,
		Assignee:    userID,
		CreatedBy:   userID,
		ContextID:   proj.ContextID,
	}
	t, err := svc.tasks.CreateTx(ctx, tx, nt)
	if err != nil {
		if core.IsValidationError(err) {
			svc.logger.Warn(fmt.Sprintf("generate tasks: skipping entry in project %d: %v", proj.ID, err))
			return task.Task{}, nil
		}
		return task.Task{}, err
	}
	return t, nil
}
