package cron

import (
	"context"
	"sync"

	cronv3 "github.com/robfig/cron/v3"

	"github.com/customeros/fresh/config"
	"github.com/customeros/fresh/internal/logger"
	"github.com/customeros/fresh/internal/tracing"
)

const (
	// GroupRotation serialises jobs that reset passwords
	GroupRotation = "rotation"

	jobRotate = "rotate"
)

var jobLocks = struct {
	sync.Mutex
	locks map[string]*sync.Mutex
}{
	locks: map[string]*sync.Mutex{
		GroupRotation: new(sync.Mutex),
	},
}

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

type CronManager struct {
	cfg    *config.CronConfig
	log    logger.Logger
	cron   *cronv3.Cron
	stopCh chan struct{}
	jobIDs map[string]cronv3.EntryID
	rotate Job
	cancel context.CancelFunc
}

func NewCronManager(cfg *config.CronConfig, log logger.Logger, rotate Job) *CronManager {
	return &CronManager{
		cfg:    cfg,
		log:    log,
		stopCh: make(chan struct{}),
		jobIDs: make(map[string]cronv3.EntryID),
		rotate: rotate,
	}
}

// Start schedules the jobs and returns; Done is closed by Stop. Jobs run
// under a child of ctx that Stop cancels.
func (cm *CronManager) Start(ctx context.Context) error {
	cm.log.Info("Starting cron manager")
	ctx, cancel := context.WithCancel(ctx)
	cronOptions := []cronv3.Option{
		cronv3.WithSeconds(),
		cronv3.WithChain(
			cronv3.SkipIfStillRunning(cronv3.DefaultLogger),
			cronv3.Recover(cronv3.DefaultLogger),
		),
	}
	c := cronv3.New(cronOptions...)
	if err := cm.registerJobs(ctx, c); err != nil {
		cancel()
		return err
	}
	c.Start()
	cm.cron = c
	cm.cancel = cancel
	return nil
}

// Stop cancels running jobs and waits for them to return.
func (cm *CronManager) Stop() {
	if cm.cancel != nil {
		cm.cancel()
	}
	if cm.cron != nil {
		cm.log.Info("Stopping cron manager")
		ctx := cm.cron.Stop()
		<-ctx.Done()
	}
	close(cm.stopCh)
}

func (cm *CronManager) Done() <-chan struct{} {
	return cm.stopCh
}

func (cm *CronManager) registerJobs(ctx context.Context, c *cronv3.Cron) error {
	if cm.cfg.CronScheduleRotate == "" {
		cm.log.Warn("CRON_SCHEDULE_ROTATE is empty, nothing scheduled")
		return nil
	}

	id, err := c.AddFunc(cm.cfg.CronScheduleRotate, func() {
		defer tracing.RecoverAndLogToJaeger(cm.log)
		jobLocks.locks[GroupRotation].Lock()
		defer jobLocks.locks[GroupRotation].Unlock()
		cm.rotateAccounts(ctx)
	})
	if err != nil {
		return err
	}
	cm.jobIDs[jobRotate] = id
	cm.log.Infof("Registered rotate job with schedule: %s", cm.cfg.CronScheduleRotate)
	return nil
}

func (cm *CronManager) rotateAccounts(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	cm.log.Info("Running scheduled password rotation")

	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.rotateAccounts")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	if err := cm.rotate(ctx); err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Scheduled rotation finished with failures: %v", err)
		return
	}

	cm.log.Info("Scheduled rotation completed")
}
