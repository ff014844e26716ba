package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/techproject/core/task"
	dummydb "github.com/trezcool/techproject/storage/database/dummy"
	testutil "github.com/trezcool/techproject/tests"
)

func TestIsClosed(t *testing.T) {
	tests := []struct {
		name   string
		task   task.Task
		closed bool
	}{
		{"fully done, no status", task.Task{Done: 100}, true},
		{"over done", task.Task{Done: 120}, true},
		{"closed status, low done", task.Task{Done: 40, Status: "Closed"}, true},
		{"case insensitive status", task.Task{Done: 0, Status: "DONE"}, true},
		{"resolved status", task.Task{Status: "resolved"}, true},
		{"open status, almost done", task.Task{Done: 99, Status: "in progress"}, false},
		{"no status, not done", task.Task{Done: 0}, false},
		{"unknown status", task.Task{Done: 50, Status: "blocked"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.closed, IsClosed(tt.task))
		})
	}
}

type fixture struct {
	db  *dummydb.DB
	svc *Service
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	return &fixture{
		db: db,
		svc: NewService(
			db,
			dummydb.NewTaskRepository(db),
			dummydb.NewProjectRepository(db),
			dummydb.NewUserRepository(db),
		),
	}
}

func mockNow(t *testing.T, now time.Time) {
	t.Helper()
	orig := nowFunc
	nowFunc = func() time.Time { return now }
	t.Cleanup(func() { nowFunc = orig })
}

func TestService_Self(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	now := time.Date(2021, time.April, 14, 12, 0, 0, 0, time.UTC) // a Wednesday
	mockNow(t, now)

	taskRepo := dummydb.NewTaskRepository(f.db)
	projRepo := dummydb.NewProjectRepository(f.db)

	client := testutil.CreateClient(t, f.db, projRepo, 1, "Topic 1")
	proj := testutil.CreateProject(t, f.db, projRepo, 1, client.ID, 10, "Website")
	testutil.CreateStatusOption(t, f.db, projRepo, proj.ID, "wip", "In progress")

	// other course, must not leak in
	other := testutil.CreateProject(t, f.db, projRepo, 2, 0, 11, "Other")
	testutil.CreateTask(t, f.db, taskRepo, task.Task{ProjectID: other.ID, Assignee: 7, Title: "Hidden", Done: 10})

	testutil.CreateTask(t, f.db, taskRepo, task.Task{
		ProjectID: proj.ID, Assignee: 7, Title: "Overdue", Status: "wip", Done: 50,
		End: null.TimeFrom(now.AddDate(0, 0, -2)),
	})
	testutil.CreateTask(t, f.db, taskRepo, task.Task{
		ProjectID: proj.ID, Assignee: 7, Title: "Finished", Status: "unknowncode", Done: 100,
		End: null.TimeFrom(now.AddDate(0, 0, -2)), // done, so not overdue
	})
	// someone else's task
	testutil.CreateTask(t, f.db, taskRepo, task.Task{ProjectID: proj.ID, Assignee: 8, Title: "Theirs", Done: 0})

	view, err := f.svc.Self(ctx, 1, 7)
	if err != nil {
		t.Fatalf("Self() failed: %v", err)
	}

	assert.Equal(t, 2, view.TotalTasks)
	assert.Equal(t, 75.0, view.AverageDone)
	assert.Equal(t, 1, view.OverdueCount)

	if assert.Len(t, view.StatusCounts, 2) {
		assert.Equal(t, StatusCount{Label: "In progress", Count: 1, Ratio: 50}, view.StatusCounts[0])
		// unresolvable code falls back to the raw code
		assert.Equal(t, StatusCount{Label: "unknowncode", Count: 1, Ratio: 50}, view.StatusCounts[1])
	}

	if assert.Len(t, view.Rows, 2) {
		assert.Equal(t, "Topic 1", view.Rows[0].Client)
		assert.Equal(t, "Website", view.Rows[0].Project)
		assert.Equal(t, "In progress", view.Rows[0].Status)
		assert.Equal(t, 50.0, view.Rows[0].Done)
	}
}

func TestService_Self_emptyCourse(t *testing.T) {
	f := setup(t)

	view, err := f.svc.Self(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("Self() failed: %v", err)
	}
	assert.Zero(t, view.TotalTasks)
	assert.Zero(t, view.AverageDone)
	assert.Empty(t, view.Rows)
	assert.Empty(t, view.StatusCounts)
}

func TestService_Self_noClientFallback(t *testing.T) {
	f := setup(t)

	taskRepo := dummydb.NewTaskRepository(f.db)
	projRepo := dummydb.NewProjectRepository(f.db)
	proj := testutil.CreateProject(t, f.db, projRepo, 1, 0, 10, "Solo")
	testutil.CreateTask(t, f.db, taskRepo, task.Task{ProjectID: proj.ID, Assignee: 7, Title: "T", Done: 30})

	view, err := f.svc.Self(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("Self() failed: %v", err)
	}
	if assert.Len(t, view.Rows, 1) {
		assert.Equal(t, "No client", view.Rows[0].Client)
	}
}

func TestService_Manager(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	now := time.Date(2021, time.April, 14, 12, 0, 0, 0, time.UTC) // a Wednesday
	mockNow(t, now)
	monday := time.Date(2021, time.April, 12, 0, 0, 0, 0, time.UTC)

	taskRepo := dummydb.NewTaskRepository(f.db)
	projRepo := dummydb.NewProjectRepository(f.db)
	userRepo := dummydb.NewUserRepository(f.db)

	alice := testutil.CreateUser(t, f.db, userRepo, "Alice", "alice", "alice@test.cd", true)
	bob := testutil.CreateUser(t, f.db, userRepo, "Bob", "bob", "bob@test.cd", true)

	client := testutil.CreateClient(t, f.db, projRepo, 1, "Topic 1")
	proj1 := testutil.CreateProject(t, f.db, projRepo, 1, client.ID, 10, "Website")
	proj2 := testutil.CreateProject(t, f.db, projRepo, 1, 0, 11, "Backend")

	// closed on Tuesday of this week
	testutil.CreateTask(t, f.db, taskRepo, task.Task{
		ProjectID: proj1.ID, Assignee: alice.ID, Title: "Closed Tue", Done: 100,
		Modified: monday.AddDate(0, 0, 1),
	})
	// closed last week, outside every weekly chart
	testutil.CreateTask(t, f.db, taskRepo, task.Task{
		ProjectID: proj1.ID, Assignee: alice.ID, Title: "Closed old", Done: 100,
		Modified: monday.AddDate(0, 0, -3),
	})
	// open task
	testutil.CreateTask(t, f.db, taskRepo, task.Task{
		ProjectID: proj2.ID, Assignee: bob.ID, Title: "Open", Done: 40,
		Modified: now,
	})
	// unassigned, never aggregated
	testutil.CreateTask(t, f.db, taskRepo, task.Task{ProjectID: proj1.ID, Title: "Backlog", Done: 0, Modified: now})

	t.Run("all assignees", func(t *testing.T) {
		view, err := f.svc.Manager(ctx, 1, 0)
		if err != nil {
			t.Fatalf("Manager() failed: %v", err)
		}

		assert.Equal(t, 3, view.TotalTasks)
		assert.Equal(t, 80.0, view.AverageDone) // (100+100+40)/3

		if assert.Len(t, view.Clients, 2) {
			assert.Equal(t, ClientStat{Client: "Topic 1", Tasks: 2, AverageDone: 100, Open: 0}, view.Clients[0])
			assert.Equal(t, ClientStat{Client: "No client", Tasks: 1, AverageDone: 40, Open: 1}, view.Clients[1])
		}

		if assert.Len(t, view.ClosedByWorkday, 1) {
			assert.Equal(t, WorkdayCount{Day: "2021-04-13", Label: "Tue 13 Apr", Count: 1}, view.ClosedByWorkday[0])
		}

		if assert.Len(t, view.ClosedByAssignee, 1) {
			assert.Equal(t, AssigneeCount{AssigneeID: alice.ID, Name: "Alice", Count: 1}, view.ClosedByAssignee[0])
		}

		if assert.Len(t, view.Assignees, 2) {
			assert.Equal(t, "Alice", view.Assignees[0].Name)
			assert.Equal(t, "Bob", view.Assignees[1].Name)
		}

		// rows grouped per assignee name
		if assert.Len(t, view.Rows, 3) {
			assert.Equal(t, "Alice", view.Rows[0].Assignee)
			assert.Equal(t, "Alice", view.Rows[1].Assignee)
			assert.Equal(t, "Bob", view.Rows[2].Assignee)
		}
	})

	t.Run("filtered to one assignee", func(t *testing.T) {
		view, err := f.svc.Manager(ctx, 1, bob.ID)
		if err != nil {
			t.Fatalf("Manager() failed: %v", err)
		}

		assert.Equal(t, bob.ID, view.AssigneeID)
		assert.Equal(t, 1, view.TotalTasks)
		assert.Equal(t, 40.0, view.AverageDone)
		if assert.Len(t, view.Rows, 1) {
			assert.Equal(t, "Open", view.Rows[0].Title)
		}

		// weekly chart and filter options still span all assignees
		if assert.Len(t, view.ClosedByAssignee, 1) {
			assert.Equal(t, alice.ID, view.ClosedByAssignee[0].AssigneeID)
		}
		assert.Len(t, view.Assignees, 2)
	})

	t.Run("empty course", func(t *testing.T) {
		view, err := f.svc.Manager(ctx, 99, 0)
		if err != nil {
			t.Fatalf("Manager() failed: %v", err)
		}
		assert.Zero(t, view.TotalTasks)
		assert.Empty(t, view.Rows)
	})
}

func Test_weekStart(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			"wednesday",
			time.Date(2021, time.April, 14, 15, 30, 0, 0, time.UTC),
			time.Date(2021, time.April, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			"monday",
			time.Date(2021, time.April, 12, 0, 0, 1, 0, time.UTC),
			time.Date(2021, time.April, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			"sunday",
			time.Date(2021, time.April, 18, 23, 59, 0, 0, time.UTC),
			time.Date(2021, time.April, 12, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, weekStart(tt.now))
		})
	}
}
