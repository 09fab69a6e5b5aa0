// Command asyncq drives a queue with synthetic tasks. Queue limits come
// from ASYNCQ_* environment variables (or a .env file) and may be
// overridden at runtime from a YAML settings file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	lg "github.com/Andrej220/go-utils/zlog"
	aq "github.com/azargarov/asyncq"
)

type result struct {
	task    int
	latency time.Duration
}

func main() {
	var (
		tasks    = flag.Int("tasks", 20, "number of tasks to submit")
		latency  = flag.Duration("latency", 200*time.Millisecond, "upper bound of simulated task latency")
		failRate = flag.Float64("fail-rate", 0.2, "probability that an attempt fails")
		settings = flag.String("settings", "", "optional YAML settings file applied after start")
		grace    = flag.Duration("grace", 30*time.Second, "shutdown grace period")
	)
	flag.Parse()

	if err := run(*tasks, *latency, *failRate, *settings, *grace); err != nil {
		fmt.Fprintln(os.Stderr, "asyncq:", err)
		os.Exit(1)
	}
}

func run(tasks int, latency time.Duration, failRate float64, settingsPath string, grace time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger := lg.FromContext(ctx)

	cfg, err := aq.LoadConfig()
	if err != nil {
		return err
	}
	metrics := &aq.AtomicMetrics{}
	opts := cfg.Options()
	opts.Metrics = metrics
	opts.Ctx = ctx

	q, err := aq.New[result](opts)
	if err != nil {
		return err
	}

	if settingsPath != "" {
		data, err := os.ReadFile(settingsPath)
		if err != nil {
			return err
		}
		s, err := aq.ParseSettings(data)
		if err != nil {
			return err
		}
		if err := q.Configure(s); err != nil {
			return err
		}
	}

	futures := make([]*aq.Future[result], 0, tasks)
	for i := range tasks {
		f, err := q.Submit(simulated(i, latency, failRate))
		if err != nil {
			return err
		}
		futures = append(futures, f)
	}

	var failed int
	for _, f := range futures {
		res, err := f.AwaitContext(ctx)
		switch {
		case err == nil:
			logger.Info("task done", lg.Int("task", res.task), lg.String("latency", res.latency.String()))
		case errors.Is(err, context.Canceled):
			logger.Warn("interrupted; shutting down")
		default:
			failed++
			var exhausted *aq.RetriesExhaustedError
			if errors.As(err, &exhausted) {
				logger.Error("task gave up", lg.String("task_id", f.ID().String()), lg.Int("attempts", exhausted.Attempts()))
			} else {
				logger.Error("task failed", lg.String("task_id", f.ID().String()), lg.Any("error", err))
			}
		}
		if ctx.Err() != nil {
			break
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := q.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	snap := metrics.Snapshot()
	logger.Info("finished",
		lg.Int("submitted", int(snap.Submitted)),
		lg.Int("succeeded", int(snap.Succeeded)),
		lg.Int("failed", failed),
		lg.Int("retried", int(snap.Retried)),
		lg.Int("timed_out", int(snap.TimedOut)),
	)
	return nil
}

// simulated returns a task that sleeps for a random time and fails with
// probability failRate. It stops early when its attempt is cancelled.
func simulated(n int, latency time.Duration, failRate float64) aq.TaskFunc[result] {
	return func(ctx context.Context) (result, error) {
		d := time.Duration(rand.Int64N(int64(latency) + 1))

		errc := make(chan error, 1)
		stop := aq.AbortHandler(ctx, func(err error) { errc <- err })
		defer stop()

		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case err := <-errc:
			return result{}, err
		case <-timer.C:
		}
		if rand.Float64() < failRate {
			return result{}, fmt.Errorf("task %d: simulated failure", n)
		}
		return result{task: n, latency: d}, nil
	}
}
