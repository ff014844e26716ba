package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/techproject/apps/api/echo"
	"github.com/trezcool/techproject/core"
	"github.com/trezcool/techproject/core/aigen"
	"github.com/trezcool/techproject/core/dashboard"
	"github.com/trezcool/techproject/core/project"
	"github.com/trezcool/techproject/core/task"
	emailsvc "github.com/trezcool/techproject/services/email"
	eventsvc "github.com/trezcool/techproject/services/events"
	logsvc "github.com/trezcool/techproject/services/logger"
	schedsvc "github.com/trezcool/techproject/services/scheduler"
	textgensvc "github.com/trezcool/techproject/services/textgen"
	"github.com/trezcool/techproject/storage/database"
	sqlxrepos "github.com/trezcool/techproject/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	sdb, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = sdb.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()
	db := database.Wrap(sdb)

	// set up repositories
	taskRepo := sqlxrepos.NewTaskRepository()
	projectRepo := sqlxrepos.NewProjectRepository()
	userRepo := sqlxrepos.NewUserRepository()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	events := eventsvc.NewLogSink(logger)
	taskSvc := task.NewService(db, taskRepo, events)
	projectSvc := project.NewService(db, projectRepo)
	dashSvc := dashboard.NewService(db, taskRepo, projectRepo, userRepo)
	genSvc := aigen.NewService(db, projectRepo, taskSvc, textgensvc.NewOpenAIService(conf), logger)
	scheduler := schedsvc.NewScheduler(conf, genSvc, db, userRepo, mailSvc, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Job Scheduler

	scheduler.Start()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			TaskSvc:    taskSvc,
			ProjectSvc: projectSvc,
			DashSvc:    dashSvc,
			Scheduler:  scheduler,
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// stop accepting jobs and wait for in-flight generations
		scheduler.Stop()

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
