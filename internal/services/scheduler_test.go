package services_test

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikgithub05/travel-buddy/internal/connectivity"
	"github.com/nikgithub05/travel-buddy/internal/logging"
	"github.com/nikgithub05/travel-buddy/internal/services"
)

type countingReconciler struct {
	runs atomic.Int32
}

func (r *countingReconciler) RunCycle(context.Context) services.CycleReport {
	n := r.runs.Add(1)
	return services.CycleReport{CycleID: "cycle", PushedUsers: int(n)}
}

var online = connectivity.ProbeFunc(func(context.Context) bool { return true })

var offline = connectivity.ProbeFunc(func(context.Context) bool { return false })

func TestSyncScheduler_TriggerSkipsWhenOffline(t *testing.T) {
	engine := &countingReconciler{}
	sched := services.NewSyncScheduler(engine, offline, time.Minute, logging.NewNop())

	_, ran := sched.Trigger(context.Background())
	assert.False(t, ran)
	assert.Zero(t, engine.runs.Load())

	_, ok := sched.LastReport()
	assert.False(t, ok)
}

func TestSyncScheduler_TriggerRunsAndPublishes(t *testing.T) {
	engine := &countingReconciler{}
	pub := &recordingPublisher{}
	sched := services.NewSyncScheduler(engine, online, time.Minute, logging.NewNop()).WithPublisher(pub)

	report, ran := sched.Trigger(context.Background())
	require.True(t, ran)
	assert.Equal(t, 1, report.PushedUsers)

	last, ok := sched.LastReport()
	require.True(t, ok)
	assert.Equal(t, report, last)

	events := pub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, services.EventSyncCompleted, events[0].RoutingKey)
	var body services.CycleReport
	require.NoError(t, json.Unmarshal(events[0].Body, &body))
	assert.Equal(t, "cycle", body.CycleID)
}

func TestSyncScheduler_RunsOnEveryTick(t *testing.T) {
	engine := &countingReconciler{}
	sched := services.NewSyncScheduler(engine, online, 10*time.Millisecond, logging.NewNop())

	require.NoError(t, sched.Start(context.Background()))
	assert.Error(t, sched.Start(context.Background()), "second start")

	assert.Eventually(t, func() bool { return engine.runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	sched.Stop()

	after := engine.runs.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, engine.runs.Load(), "no cycles after Stop")

	// stopping twice is a no-op
	sched.Stop()
}

func TestSyncScheduler_OfflineTicksSkipCycles(t *testing.T) {
	engine := &countingReconciler{}
	var probes atomic.Int32
	probe := connectivity.ProbeFunc(func(context.Context) bool {
		probes.Add(1)
		return false
	})
	sched := services.NewSyncScheduler(engine, probe, 10*time.Millisecond, logging.NewNop())

	require.NoError(t, sched.Start(context.Background()))
	assert.Eventually(t, func() bool { return probes.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	sched.Stop()

	assert.Zero(t, engine.runs.Load())
}

type blockingReconciler struct {
	started  chan struct{}
	release  chan struct{}
	finished atomic.Bool
	ctxErr   error
}

func (r *blockingReconciler) RunCycle(ctx context.Context) services.CycleReport {
	close(r.started)
	<-r.release
	r.ctxErr = ctx.Err()
	r.finished.Store(true)
	return services.CycleReport{}
}

func TestSyncScheduler_StopWaitsForInFlightCycle(t *testing.T) {
	engine := &blockingReconciler{started: make(chan struct{}), release: make(chan struct{})}
	sched := services.NewSyncScheduler(engine, online, 10*time.Millisecond, logging.NewNop())
	require.NoError(t, sched.Start(context.Background()))

	select {
	case <-engine.started:
	case <-time.After(2 * time.Second):
		t.Fatal("cycle never started")
	}

	stopped := make(chan struct{})
	go func() {
		sched.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a cycle was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(engine.release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the cycle finished")
	}
	assert.True(t, engine.finished.Load())
	assert.NoError(t, engine.ctxErr, "cycle context must survive shutdown")
}

func TestSyncScheduler_StartRejectsNonPositiveInterval(t *testing.T) {
	sched := services.NewSyncScheduler(&countingReconciler{}, offline, 0, logging.NewNop())
	assert.Error(t, sched.Start(context.Background()))
}
