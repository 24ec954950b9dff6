package cron

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/fresh/config"
	"github.com/customeros/fresh/internal/logger"
)

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

func TestNewCronManager(t *testing.T) {
	cfg := &config.CronConfig{CronScheduleRotate: "0 0 3 * * *"}
	log := getLogger()

	cm := NewCronManager(cfg, log, func(context.Context) error { return nil })

	assert.NotNil(t, cm)
	assert.Equal(t, cfg, cm.cfg)
	assert.Equal(t, log, cm.log)
	assert.NotNil(t, cm.jobIDs)
}

func TestCronManager_Start(t *testing.T) {
	cm := NewCronManager(&config.CronConfig{CronScheduleRotate: "0 0 3 * * *"}, getLogger(), func(context.Context) error { return nil })

	require.NoError(t, cm.Start(context.Background()))
	defer cm.Stop()

	assert.NotNil(t, cm.cron)
	assert.Len(t, cm.jobIDs, 1)
	assert.Len(t, cm.cron.Entries(), 1)
}

func TestCronManager_EmptyScheduleRegistersNothing(t *testing.T) {
	cm := NewCronManager(&config.CronConfig{}, getLogger(), nil)

	require.NoError(t, cm.Start(context.Background()))
	defer cm.Stop()

	assert.Empty(t, cm.jobIDs)
}

func TestCronManager_InvalidSchedule(t *testing.T) {
	cm := NewCronManager(&config.CronConfig{CronScheduleRotate: "every tuesday"}, getLogger(), nil)

	assert.Error(t, cm.Start(context.Background()))
}

func TestCronManager_RotateAccounts(t *testing.T) {
	calls := 0
	cm := NewCronManager(&config.CronConfig{}, getLogger(), func(context.Context) error {
		calls++
		return errors.New("lobsters/jcs: missing message")
	})

	cm.rotateAccounts(context.Background())
	assert.Equal(t, 1, calls)
}

func TestCronManager_Stop(t *testing.T) {
	cm := NewCronManager(&config.CronConfig{}, getLogger(), nil)
	require.NoError(t, cm.Start(context.Background()))

	cm.Stop()

	select {
	case <-cm.Done():
	default:
		t.Error("Stop channel was not closed")
	}
}

func TestCronManager_RotateAccountsSkipsWhenCancelled(t *testing.T) {
	calls := 0
	cm := NewCronManager(&config.CronConfig{}, getLogger(), func(context.Context) error {
		calls++
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cm.rotateAccounts(ctx)
	assert.Zero(t, calls)
}

func TestCronManager_StopCancelsRunningJob(t *testing.T) {
	started := make(chan struct{})
	var once sync.Once
	cm := NewCronManager(&config.CronConfig{CronScheduleRotate: "* * * * * *"}, getLogger(), func(ctx context.Context) error {
		once.Do(func() { close(started) })
		<-ctx.Done()
		return ctx.Err()
	})
	require.NoError(t, cm.Start(context.Background()))

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		cm.Stop()
		t.Fatal("rotate job never started")
	}

	stopped := make(chan struct{})
	go func() {
		cm.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop blocked on a running rotation")
	}
}

func TestCronManager_ParentCancelReachesJob(t *testing.T) {
	started := make(chan struct{})
	finished := make(chan error, 1)
	var once sync.Once
	cm := NewCronManager(&config.CronConfig{CronScheduleRotate: "* * * * * *"}, getLogger(), func(ctx context.Context) error {
		once.Do(func() { close(started) })
		<-ctx.Done()
		select {
		case finished <- ctx.Err():
		default:
		}
		return ctx.Err()
	})

	parent, cancel := context.WithCancel(context.Background())
	require.NoError(t, cm.Start(parent))
	defer cm.Stop()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("rotate job never started")
	}
	cancel()

	select {
	case err := <-finished:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("job did not observe parent cancellation")
	}
}
