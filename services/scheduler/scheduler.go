package schedsvc

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/techproject/core"
	"github.com/trezcool/techproject/core/aigen"
	"github.com/trezcool/techproject/core/user"
)

var ErrQueueFull = errors.New("job queue is full")

type (
	queuedJob struct {
		id  string
		job aigen.Job
	}

	// Scheduler runs queued generation jobs on a fixed worker pool. Jobs are
	// accepted immediately and processed in the background; a full queue
	// rejects rather than blocks the caller.
	Scheduler struct {
		genSvc  *aigen.Service
		db      core.Database
		users   user.Repository
		mailSvc core.EmailService
		logger  core.Logger

		workers int
		jobs    chan queuedJob
		wg      sync.WaitGroup
	}
)

func NewScheduler(
	conf *core.Config,
	genSvc *aigen.Service,
	db core.Database,
	users user.Repository,
	mailSvc core.EmailService,
	logger core.Logger,
) *Scheduler {
	workers := conf.Scheduler.Workers
	if workers < 1 {
		workers = 1
	} else if workers > 16 {
		workers = 16
	}
	queueSize := conf.Scheduler.QueueSize
	if queueSize < 1 {
		queueSize = 1
	}
	return &Scheduler{
		genSvc:  genSvc,
		db:      db,
		users:   users,
		mailSvc: mailSvc,
		logger:  logger,
		workers: workers,
		jobs:    make(chan queuedJob, queueSize),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for qj := range s.jobs {
				s.process(qj)
			}
		}()
	}
}

// Schedule queues job and returns its id without waiting for completion.
func (s *Scheduler) Schedule(job aigen.Job) (string, error) {
	qj := queuedJob{id: uuid.New().String(), job: job}
	select {
	case s.jobs <- qj:
		return qj.id, nil
	default:
		return "", ErrQueueFull
	}
}

// Stop drains the queue and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	close(s.jobs)
	s.wg.Wait()
}

func (s *Scheduler) process(qj queuedJob) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(fmt.Sprintf("job %s: panic: %v", qj.id, r))
		}
	}()

	ctx := context.Background()
	created, err := s.genSvc.Generate(ctx, qj.job)
	if err != nil {
		s.logger.Error(fmt.Sprintf("job %s: generation failed: %v", qj.id, err), err)
		s.notify(ctx, qj, created, err)
		return
	}
	s.logger.Info(fmt.Sprintf("job %s: created %d tasks in project %d", qj.id, created, qj.job.ProjectID))
	s.notify(ctx, qj, created, nil)
}

// notify emails the requesting user about the job outcome, best effort.
func (s *Scheduler) notify(ctx context.Context, qj queuedJob, created int, jobErr error) {
	if s.mailSvc == nil || qj.job.UserID == 0 {
		return
	}
	usr, err := s.users.GetUserByID(ctx, s.db.Executor(), qj.job.UserID)
	if err != nil || usr.Email == "" {
		return
	}

	subject := "Task generation completed"
	body := fmt.Sprintf("Your task generation request created %d tasks.", created)
	if jobErr != nil {
		subject = "Task generation failed"
		body = "Your task generation request could not be completed. Please try again later."
	}
	s.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: subject,
		BodyStr: body,
	})
}
