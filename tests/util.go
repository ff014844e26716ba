package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/techproject/core"
	"github.com/trezcool/techproject/core/project"
	"github.com/trezcool/techproject/core/task"
	"github.com/trezcool/techproject/core/user"
)

func CreateUser(
	t *testing.T,
	db core.Database,
	repo user.Repository,
	name, uname, email string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr, err := repo.CreateUser(context.Background(), db.Executor(), user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateProject(
	t *testing.T,
	db core.Database,
	repo project.Repository,
	courseID, clientID, contextID int,
	name string,
) project.Project {
	t.Helper()

	proj, err := repo.CreateProject(context.Background(), db.Executor(), project.Project{
		CourseID:  courseID,
		ClientID:  clientID,
		ContextID: contextID,
		Name:      name,
	})
	if err != nil {
		t.Fatalf("CreateProject() failed: %v", err)
	}
	return proj
}

func CreateClient(
	t *testing.T,
	db core.Database,
	repo project.Repository,
	courseID int,
	name string,
) project.Client {
	t.Helper()

	c, err := repo.CreateClient(context.Background(), db.Executor(), project.Client{
		CourseID: courseID,
		Name:     name,
	})
	if err != nil {
		t.Fatalf("CreateClient() failed: %v", err)
	}
	return c
}

func CreateStatusOption(
	t *testing.T,
	db core.Database,
	repo project.Repository,
	projectID int,
	code, label string,
) project.StatusOption {
	t.Helper()

	opt, err := repo.CreateStatusOption(context.Background(), db.Executor(), project.StatusOption{
		ProjectID: projectID,
		Code:      code,
		Label:     label,
	})
	if err != nil {
		t.Fatalf("CreateStatusOption() failed: %v", err)
	}
	return opt
}

func CreateTask(
	t *testing.T,
	db core.Database,
	repo task.Repository,
	tsk task.Task,
) task.Task {
	t.Helper()

	now := time.Now().UTC()
	if tsk.Created.IsZero() {
		tsk.Created = now
	}
	if tsk.Modified.IsZero() {
		tsk.Modified = now
	}
	created, err := repo.CreateTask(context.Background(), db.Executor(), tsk)
	if err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}
	return created
}
