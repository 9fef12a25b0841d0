package workers

import (
	"context"
	"log/slog"
	"time"

	"direct-chat/observability"
)

// HeartbeatWorker logs process health (RSS, CPU, goroutines) at a fixed
// interval. Operators grep these lines instead of attaching a profiler to
// a box that is already in trouble.
type HeartbeatWorker struct {
	log      *slog.Logger
	monitor  *observability.Monitor
	interval time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, monitor *observability.Monitor,
	interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, monitor: monitor, interval: interval}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			stats, err := w.monitor.Sample()
			if err != nil {
				w.log.Warn("Heartbeat sample failed", "error", err)
				continue
			}
			w.log.Info("heartbeat",
				"rss_mb", stats.RSSMb,
				"cpu_pct", stats.CPUPercent,
				"goroutines", stats.Goroutines,
				"heap_mb", stats.HeapMb)
		}
	}
}
