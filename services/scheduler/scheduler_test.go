package schedsvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/techproject/core"
	"github.com/trezcool/techproject/core/aigen"
	"github.com/trezcool/techproject/core/project"
	"github.com/trezcool/techproject/core/task"
	textgensvc "github.com/trezcool/techproject/services/textgen"
	dummydb "github.com/trezcool/techproject/storage/database/dummy"
	testutil "github.com/trezcool/techproject/tests"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func setup(t *testing.T, conf *core.Config, gen core.TextGenerator) (*dummydb.DB, task.Repository, project.Repository, *Scheduler) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	taskRepo := dummydb.NewTaskRepository(db)
	projRepo := dummydb.NewProjectRepository(db)
	userRepo := dummydb.NewUserRepository(db)

	taskSvc := task.NewService(db, taskRepo, nil)
	genSvc := aigen.NewService(db, projRepo, taskSvc, gen, nopLogger{})
	return db, taskRepo, projRepo, NewScheduler(conf, genSvc, db, userRepo, nil, nopLogger{})
}

func testConfig(workers, queueSize int) *core.Config {
	conf := &core.Config{}
	conf.Scheduler.Workers = workers
	conf.Scheduler.QueueSize = queueSize
	return conf
}

func TestScheduler_processesQueuedJobs(t *testing.T) {
	gen := textgensvc.NewDummyService([]core.TextResult{
		{Success: true, Text: `{"tasks": [{"title": "A", "subtasks": [{"title": "A1"}]}]}`},
	}, nil)
	db, taskRepo, projRepo, sched := setup(t, testConfig(2, 4), gen)
	proj := testutil.CreateProject(t, db, projRepo, 1, 0, 10, "Website")

	sched.Start()
	jobID, err := sched.Schedule(aigen.Job{ProjectID: proj.ID, UserID: 7, Instructions: "plan it"})
	if err != nil {
		t.Fatalf("Schedule() failed: %v", err)
	}
	assert.NotEmpty(t, jobID)
	sched.Stop() // waits for the job

	tasks, err := taskRepo.QueryProjectTasks(context.Background(), db.Executor(), proj.ID)
	if err != nil {
		t.Fatalf("QueryProjectTasks() failed: %v", err)
	}
	assert.Len(t, tasks, 2)
}

func TestScheduler_uniqueJobIDs(t *testing.T) {
	_, _, _, sched := setup(t, testConfig(1, 4), nil)

	id1, err := sched.Schedule(aigen.Job{})
	if err != nil {
		t.Fatalf("Schedule() failed: %v", err)
	}
	id2, err := sched.Schedule(aigen.Job{})
	if err != nil {
		t.Fatalf("Schedule() failed: %v", err)
	}
	assert.NotEqual(t, id1, id2)
}

func TestScheduler_rejectsWhenQueueFull(t *testing.T) {
	// workers never started, so the queue fills up
	_, _, _, sched := setup(t, testConfig(1, 1), nil)

	if _, err := sched.Schedule(aigen.Job{}); err != nil {
		t.Fatalf("Schedule() failed: %v", err)
	}
	_, err := sched.Schedule(aigen.Job{})
	assert.Equal(t, ErrQueueFull, err)
}

func TestScheduler_survivesFailingJobs(t *testing.T) {
	gen := textgensvc.NewDummyService(nil, assert.AnError)
	db, _, projRepo, sched := setup(t, testConfig(1, 4), gen)
	proj := testutil.CreateProject(t, db, projRepo, 1, 0, 10, "Website")

	sched.Start()
	if _, err := sched.Schedule(aigen.Job{ProjectID: proj.ID, UserID: 7, Instructions: "x"}); err != nil {
		t.Fatalf("Schedule() failed: %v", err)
	}
	sched.Stop()
	// a failed job must not kill the worker pool; Stop returning is the proof
}

func TestScheduler_clampsWorkerCount(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"zero", 0, 1},
		{"negative", -3, 1},
		{"in range", 4, 4},
		{"too many", 100, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, sched := setup(t, testConfig(tt.in, 1), nil)
			assert.Equal(t, tt.want, sched.workers)
		})
	}
}
