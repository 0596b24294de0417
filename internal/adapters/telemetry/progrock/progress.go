package progrock

import (
	"strings"
	"sync"

	"github.com/vito/progrock"
	"go.trai.ch/mpm/internal/core/ports"
)

// ProgressWriter is a progrock.Writer that reports every finished vertex through a logger
// and logs a tally when closed.
type ProgressWriter struct {
	logger ports.Logger

	mu       sync.Mutex
	finished map[string]struct{}
	done     map[string]int // by the first word of the vertex name
	cached   int
	failed   int
}

// NewProgressWriter creates a ProgressWriter logging to logger.
func NewProgressWriter(logger ports.Logger) *ProgressWriter {
	return &ProgressWriter{
		logger:   logger,
		finished: make(map[string]struct{}),
		done:     make(map[string]int),
	}
}

// WriteStatus implements progrock.Writer.
func (w *ProgressWriter) WriteStatus(update *progrock.StatusUpdate) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, v := range update.GetVertexes() {
		if v.GetCompleted() == nil {
			continue
		}
		if _, ok := w.finished[v.GetId()]; ok {
			continue
		}
		w.finished[v.GetId()] = struct{}{}

		verb, target, _ := strings.Cut(v.GetName(), " ")
		switch {
		case v.GetCanceled():
			w.logger.Debug(verb+" canceled", "target", target)
		case v.GetError() != "":
			w.failed++
			w.logger.Debug(verb+" failed", "target", target, "error", v.GetError())
		default:
			w.done[verb]++
			if v.GetCached() {
				w.cached++
			}
			w.logger.Debug(verb+" done", "target", target, "cached", v.GetCached(), "count", w.done[verb])
		}
	}
	return nil
}

// Close implements progrock.Writer.
func (w *ProgressWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.finished) == 0 {
		return nil
	}
	w.logger.Info("progress",
		"resolved", w.done["resolve"],
		"from_lock", w.cached,
		"installed", w.done["install"],
		"failed", w.failed,
	)
	return nil
}
