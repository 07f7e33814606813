package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type sourceMerger interface {
	MergeAll(ctx context.Context) (int, error)
}

// SourceDedupTask periodically folds duplicate sources into their canonical record.
type SourceDedupTask struct {
	merger   sourceMerger
	schedule string
	timeout  time.Duration
}

func NewSourceDedupTask(schedule string, timeout time.Duration, merger sourceMerger) *SourceDedupTask {
	return &SourceDedupTask{
		merger:   merger,
		schedule: schedule,
		timeout:  timeout,
	}
}

func (s *SourceDedupTask) Name() string {
	return "source_dedup"
}

func (s *SourceDedupTask) Schedule() string {
	return s.schedule
}

func (s *SourceDedupTask) Run() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	removed, err := s.merger.MergeAll(ctx)
	if err != nil {
		logrus.WithField("removed", removed).Errorf("source dedup failed: %v", err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"removed":  removed,
		"duration": time.Since(start),
	}).Info("source dedup finished")
}
