package echoapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	echoapi "github.com/trezcool/techproject/apps/api/echo"
	"github.com/trezcool/techproject/core"
	"github.com/trezcool/techproject/core/aigen"
	"github.com/trezcool/techproject/core/dashboard"
	"github.com/trezcool/techproject/core/project"
	"github.com/trezcool/techproject/core/task"
	schedsvc "github.com/trezcool/techproject/services/scheduler"
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

type fixture struct {
	db        *dummydb.DB
	taskRepo  task.Repository
	projRepo  project.Repository
	scheduler *schedsvc.Scheduler
	app       echoapi.Server
}

func setup(t *testing.T) *fixture {
	t.Helper()

	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	conf.Scheduler.QueueSize = 1

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	taskRepo := dummydb.NewTaskRepository(db)
	projRepo := dummydb.NewProjectRepository(db)
	userRepo := dummydb.NewUserRepository(db)

	logger := nopLogger{}
	taskSvc := task.NewService(db, taskRepo, nil)
	projectSvc := project.NewService(db, projRepo)
	dashSvc := dashboard.NewService(db, taskRepo, projRepo, userRepo)
	gen := textgensvc.NewDummyService([]core.TextResult{{Success: true, Text: `{"tasks": []}`}}, nil)
	genSvc := aigen.NewService(db, projRepo, taskSvc, gen, logger)
	scheduler := schedsvc.NewScheduler(conf, genSvc, db, userRepo, nil, logger)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	app := echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		TaskSvc:    taskSvc,
		ProjectSvc: projectSvc,
		DashSvc:    dashSvc,
		Scheduler:  scheduler,
		Validate:   validate,
		Translator: translator,
	})

	return &fixture{
		db:        db,
		taskRepo:  taskRepo,
		projRepo:  projRepo,
		scheduler: scheduler,
		app:       app,
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func marshall(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("json.Marshal() failed: %v", err)
	}
	return data
}

func Test_taskApi_create(t *testing.T) {
	f := setup(t)
	proj := testutil.CreateProject(t, f.db, f.projRepo, 1, 0, 10, "Website")

	t.Run("creates task", func(t *testing.T) {
		body := marshall(t, map[string]interface{}{"title": "  Design API  ", "assignee_id": 7})
		req, rec := newRequest(http.MethodPost, fmt.Sprintf("/v1/projects/%d/tasks", proj.ID), body)
		f.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)

		var tsk task.Task
		if err := json.Unmarshal(rec.Body.Bytes(), &tsk); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		assert.Equal(t, "Design API", tsk.Title)
		assert.Equal(t, proj.ID, tsk.ProjectID)
		assert.Equal(t, 1, tsk.Ordering)
		assert.Equal(t, 7, tsk.Assignee)
	})

	t.Run("title required", func(t *testing.T) {
		body := marshall(t, map[string]interface{}{"title": "   "})
		req, rec := newRequest(http.MethodPost, fmt.Sprintf("/v1/projects/%d/tasks", proj.ID), body)
		f.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "title")
	})

	t.Run("unknown project", func(t *testing.T) {
		body := marshall(t, map[string]interface{}{"title": "T"})
		req, rec := newRequest(http.MethodPost, "/v1/projects/999/tasks", body)
		f.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_taskApi_query(t *testing.T) {
	f := setup(t)
	proj := testutil.CreateProject(t, f.db, f.projRepo, 1, 0, 10, "Website")

	t.Run("empty project", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, fmt.Sprintf("/v1/projects/%d/tasks", proj.ID))
		f.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("lists tasks", func(t *testing.T) {
		tsk := testutil.CreateTask(t, f.db, f.taskRepo, task.Task{ProjectID: proj.ID, Title: "T", Ordering: 1})

		req, rec := newRequest(http.MethodGet, fmt.Sprintf("/v1/projects/%d/tasks", proj.ID))
		f.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var tasks []task.Task
		if err := json.Unmarshal(rec.Body.Bytes(), &tasks); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if assert.Len(t, tasks, 1) {
			assert.Equal(t, tsk.ID, tasks[0].ID)
		}
	})
}

func Test_taskApi_generate(t *testing.T) {
	f := setup(t)
	proj := testutil.CreateProject(t, f.db, f.projRepo, 1, 0, 10, "Website")

	t.Run("accepts job", func(t *testing.T) {
		body := marshall(t, echoapi.GenerateRequest{UserID: 7, Instructions: "plan a website"})
		req, rec := newRequest(http.MethodPost, fmt.Sprintf("/v1/projects/%d/tasks/generate", proj.ID), body)
		f.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusAccepted, rec.Code)

		var res echoapi.GenerateResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		assert.NotEmpty(t, res.JobID)
	})

	t.Run("queue full", func(t *testing.T) {
		// workers are not running and the queue holds one job already
		body := marshall(t, echoapi.GenerateRequest{UserID: 7, Instructions: "again"})
		req, rec := newRequest(http.MethodPost, fmt.Sprintf("/v1/projects/%d/tasks/generate", proj.ID), body)
		f.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		body := marshall(t, echoapi.GenerateRequest{})
		req, rec := newRequest(http.MethodPost, fmt.Sprintf("/v1/projects/%d/tasks/generate", proj.ID), body)
		f.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "user_id")
		assert.Contains(t, rec.Body.String(), "instructions")
	})

	t.Run("unknown project", func(t *testing.T) {
		body := marshall(t, echoapi.GenerateRequest{UserID: 7, Instructions: "x"})
		req, rec := newRequest(http.MethodPost, "/v1/projects/999/tasks/generate", body)
		f.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_dashboardApi(t *testing.T) {
	f := setup(t)
	proj := testutil.CreateProject(t, f.db, f.projRepo, 1, 0, 10, "Website")
	testutil.CreateTask(t, f.db, f.taskRepo, task.Task{ProjectID: proj.ID, Assignee: 7, Title: "T", Done: 50, Ordering: 1})

	t.Run("user dashboard", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/courses/1/dashboards/user?userid=7")
		f.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var view dashboard.SelfView
		if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		assert.Equal(t, 1, view.TotalTasks)
		assert.Equal(t, 50.0, view.AverageDone)
	})

	t.Run("user dashboard requires userid", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/courses/1/dashboards/user")
		f.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("manager dashboard", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/courses/1/dashboards/manager")
		f.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var view dashboard.ManagerView
		if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		assert.Equal(t, 1, view.TotalTasks)
	})

	t.Run("manager dashboard filtered", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/courses/1/dashboards/manager?assigneeid=8")
		f.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var view dashboard.ManagerView
		if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		assert.Zero(t, view.TotalTasks)
	})
}
