// Package progrock provides the Progrock implementation of the telemetry adapter.
package progrock

import (
	"context"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/mpm/internal/core/ports"
)

type parentKey struct{}

// Recorder implements ports.Telemetry using the vito/progrock library.
type Recorder struct {
	rec *progrock.Recorder
}

// New creates a new Recorder that reports finished vertices through logger.
func New(logger ports.Logger) *Recorder {
	return NewRecorder(NewProgressWriter(logger))
}

// NewRecorder creates a new Recorder with the given writer.
func NewRecorder(w progrock.Writer) *Recorder {
	return &Recorder{rec: progrock.NewRecorder(w)}
}

// Record starts recording a new vertex named name.
// Vertices are addressed by the digest of their name, so recording the same name twice
// reports progress on the same vertex. A vertex recorded under the context of another
// lists it as its input.
func (r *Recorder) Record(ctx context.Context, name string) (context.Context, ports.Vertex) {
	dig := digest.FromString(name)

	var opts []progrock.VertexOpt
	if parent, ok := ctx.Value(parentKey{}).(digest.Digest); ok {
		opts = append(opts, progrock.WithInputs(parent))
	}
	v := r.rec.Vertex(dig, name, opts...)
	return context.WithValue(ctx, parentKey{}, dig), &Vertex{vertex: v}
}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	return r.rec.Close()
}
