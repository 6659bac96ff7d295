package poller

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// fixedInterval fires once immediately, then every interval.
// cron.Every rounds to whole seconds, which is too coarse for tests.
type fixedInterval struct {
	interval time.Duration

	mu    sync.Mutex
	fired bool
}

func newFixedInterval(d time.Duration) *fixedInterval {
	return &fixedInterval{interval: d}
}

func (s *fixedInterval) Next(t time.Time) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.fired {
		s.fired = true
		return t
	}
	return t.Add(s.interval)
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	sugar *zap.SugaredLogger
}

var _ cron.Logger = cronLogger{}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
