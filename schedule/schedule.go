package schedule

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/yaoapp/kun/log"
)

// Job the work a schedule runs
type Job func(ctx context.Context) error

// Schedule runs a job on a cron spec, skipping a tick while the previous run is still going
type Schedule struct {
	Name     string `json:"name"`
	Schedule string `json:"schedule"`
	Timeout  time.Duration

	job     Job
	id      cron.EntryID
	cron    *cron.Cron
	runs    atomic.Int64
	failed  atomic.Int64
	mu      sync.Mutex
	enabled bool
}

// New creates a schedule. spec uses the standard five-field cron syntax or a descriptor like @every 1h.
func New(name, spec string, timeout time.Duration, job Job) (*Schedule, error) {
	if job == nil {
		return nil, fmt.Errorf("schedule %s: job is required", name)
	}

	sch := &Schedule{Name: name, Schedule: spec, Timeout: timeout, job: job}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{name: name})))
	id, err := c.AddFunc(spec, sch.run)
	if err != nil {
		return nil, fmt.Errorf("schedule %s: %w", name, err)
	}

	sch.cron = c
	sch.id = id
	return sch, nil
}

// Start start the schedule
func (sch *Schedule) Start() {
	sch.mu.Lock()
	defer sch.mu.Unlock()
	if sch.enabled {
		return
	}
	sch.enabled = true
	sch.cron.Start()
	log.Info("[Schedule] %s started (%s)", sch.Name, sch.Schedule)
}

// Stop stops the schedule and waits for a running job, or for ctx
func (sch *Schedule) Stop(ctx context.Context) error {
	sch.mu.Lock()
	if !sch.enabled {
		sch.mu.Unlock()
		return nil
	}
	sch.enabled = false
	done := sch.cron.Stop()
	sch.mu.Unlock()

	select {
	case <-done.Done():
		log.Info("[Schedule] %s stopped", sch.Name)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enabled check if the schedule is running
func (sch *Schedule) Enabled() bool {
	sch.mu.Lock()
	defer sch.mu.Unlock()
	return sch.enabled
}

// Next the time of the next run, zero if stopped
func (sch *Schedule) Next() time.Time {
	if !sch.Enabled() {
		return time.Time{}
	}
	return sch.cron.Entry(sch.id).Next
}

// Runs the number of completed and failed runs
func (sch *Schedule) Runs() (completed, failed int64) {
	return sch.runs.Load(), sch.failed.Load()
}

// Run runs the job once, outside the cron
func (sch *Schedule) Run() {
	sch.run()
}

func (sch *Schedule) run() {
	ctx := context.Background()
	if sch.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, sch.Timeout)
		defer cancel()
	}

	if err := sch.job(ctx); err != nil {
		sch.failed.Add(1)
		log.Error("[Schedule] %s %s", sch.Name, err.Error())
		return
	}
	sch.runs.Add(1)
}

// cronLogger forwards cron's logs to kun/log
type cronLogger struct {
	name string
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug("[Schedule] %s %s %v", l.name, msg, keysAndValues)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error("[Schedule] %s %s: %s %v", l.name, msg, err.Error(), keysAndValues)
}
