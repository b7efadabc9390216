package controllers

import (
	"context"
	"sync"
	"time"

	"brokerage/src/models"
	"brokerage/src/scheduler"
	"brokerage/src/services"
	"brokerage/src/utils"

	"github.com/sirupsen/logrus"
)

const AuditJob = "invariant-audit"

// auditTimeout bounds one scheduled audit run.
const auditTimeout = time.Minute

type Controller struct {
	AuditService   services.AuditServiceI
	Logger         logrus.FieldLogger
	SchedulerMutex sync.Mutex
	Schedulers     map[string]*scheduler.ScheduledTask
}

func NewController(auditService services.AuditServiceI, logger logrus.FieldLogger) *Controller {
	return &Controller{
		AuditService: auditService,
		Logger:       logger,
		Schedulers:   map[string]*scheduler.ScheduledTask{},
	}
}

func (c *Controller) GetSchedulers() map[string]*scheduler.ScheduledTask {
	c.SchedulerMutex.Lock()
	defer c.SchedulerMutex.Unlock()

	schedulers := make(map[string]*scheduler.ScheduledTask, len(c.Schedulers))
	for name, task := range c.Schedulers {
		schedulers[name] = task
	}
	return schedulers
}

// RunAudit checks the ledger invariants once.
func (c *Controller) RunAudit(ctx context.Context) ([]models.InvariantViolation, error) {
	return c.AuditService.Run(utils.WithLogger(ctx, c.Logger.WithField("job", AuditJob)))
}

// ScheduleAudit (re)schedules the audit job with cronSpec and returns the
// time of its next run.
func (c *Controller) ScheduleAudit(cronSpec string) (time.Time, error) {
	task, err := c.ScheduleJob(AuditJob, cronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
		defer cancel()
		// Violations and failures are logged by the audit service.
		_, _ = c.RunAudit(ctx)
	})
	if err != nil {
		return time.Time{}, err
	}
	return task.Next(), nil
}

// ScheduleJob replaces any job registered under name.
func (c *Controller) ScheduleJob(name, cronSpec string, taskFunc func()) (*scheduler.ScheduledTask, error) {
	newTask, err := scheduler.NewScheduledTask(cronSpec, taskFunc, c.Logger.WithField("job", name))
	if err != nil {
		return nil, err
	}

	c.SchedulerMutex.Lock()
	existing, exists := c.Schedulers[name]
	c.Schedulers[name] = newTask
	c.SchedulerMutex.Unlock()

	if exists {
		existing.Cancel()
	}
	c.Logger.WithFields(logrus.Fields{"job": name, "cron": cronSpec}).Info("job scheduled")
	return newTask, nil
}

// StopAll cancels every scheduled job.
func (c *Controller) StopAll() {
	c.SchedulerMutex.Lock()
	tasks := c.Schedulers
	c.Schedulers = map[string]*scheduler.ScheduledTask{}
	c.SchedulerMutex.Unlock()

	for _, task := range tasks {
		task.Cancel()
	}
}
