package chrono

import (
	"context"
	"fmt"
	"slc-balance/internal/components/assert"
	"slc-balance/internal/components/telemetry"

	"github.com/robfig/cron/v3"
)

// CronAPI is the interface that anything depending on things to happen on a cron job should use.
type CronAPI interface {
	Cron(spec string, callback func()) error
	// Run blocks running the scheduled jobs until ctx is done, then waits
	// for the running jobs to finish.
	Run(ctx context.Context)
}

// StandardCron is the standard implementation of CronAPI using `github.com/robfig/cron/v3`
type StandardCron struct {
	cron *cron.Cron
}

// NewStandardCron is the constructor of StandardCron, jobs are scheduled in
// time's location.
func NewStandardCron(time TimeAPI, tel telemetry.API) StandardCron {
	assert.NotNil("time", time)
	assert.NotNil("tel", tel)
	cronner := cron.New(
		cron.WithLogger(cronLogger{tel: tel}),
		cron.WithLocation(time.Location()),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{tel: tel})),
	)
	return StandardCron{
		cron: cronner,
	}
}

func (s StandardCron) Cron(spec string, callback func()) error {
	_, err := s.cron.AddFunc(spec, callback)
	return err
}

func (s StandardCron) Run(ctx context.Context) {
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
}

type cronLogger struct {
	tel telemetry.API
}

func (l cronLogger) formatParams(keysAndValues []any) []any {
	params := []any{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		params = append(params, fmt.Sprintf("%v: %v", keysAndValues[i], keysAndValues[i+1]))
	}
	return params
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.tel.ReportDebug(
		fmt.Sprintf("cron: %s", msg),
		l.formatParams(keysAndValues)...,
	)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.tel.ReportBroken(
		"cron",
		append([]any{fmt.Errorf("%s: %w", msg, err)}, l.formatParams(keysAndValues)...)...,
	)
}
