package lookup

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/lucsky/cuid"
	"github.com/sirupsen/logrus"

	"github.com/tdh8316/acclookup/internal/platform"
)

// Completion is the finished result of one background search.
type Completion struct {
	Generation uint64
	SearchID   string
	Username   string
	Results    ResultSet
	Elapsed    time.Duration
}

// Worker runs searches off the caller's goroutine. Every Start begins a new
// generation; callers use IsCurrent to drop completions of superseded searches.
type Worker struct {
	exec       *Executor
	logger     logrus.FieldLogger
	generation atomic.Uint64
}

func NewWorker(exec *Executor, logger logrus.FieldLogger) *Worker {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Worker{exec: exec, logger: logger}
}

// Start launches a search and returns its generation and a channel that
// receives exactly one Completion and is then closed.
func (w *Worker) Start(ctx context.Context, username string, selected platform.Selection) (uint64, <-chan Completion) {
	gen := w.generation.Add(1)
	id := cuid.New()
	out := make(chan Completion, 1)

	log := w.logger.WithFields(logrus.Fields{"search": id, "username": username, "generation": gen})
	log.WithField("platforms", len(selected)).Info("search started")

	go func() {
		defer close(out)

		start := time.Now()
		results := w.exec.Lookup(ctx, username, selected)
		elapsed := time.Since(start)

		log.WithFields(logrus.Fields{
			"exists":    results.Count(Exists),
			"not_found": results.Count(NotFound),
			"errors":    results.Count(Failed),
			"elapsed":   elapsed,
		}).Info("search finished")

		out <- Completion{
			Generation: gen,
			SearchID:   id,
			Username:   username,
			Results:    results,
			Elapsed:    elapsed,
		}
	}()

	return gen, out
}

// Generation returns the generation of the most recent Start.
func (w *Worker) Generation() uint64 {
	return w.generation.Load()
}

func (w *Worker) IsCurrent(c Completion) bool {
	return c.Generation == w.generation.Load()
}
