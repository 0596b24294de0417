package ports

import "context"

//go:generate go run go.uber.org/mock/mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Telemetry records progress of resolution and installation as a tree of vertices.
type Telemetry interface {
	// Record starts a new vertex and returns a context carrying it.
	// Vertices recorded under the returned context are children of the new vertex.
	Record(ctx context.Context, name string) (context.Context, Vertex)
	// Close flushes and closes the recording session.
	Close() error
}

// Vertex is one unit of recorded work.
type Vertex interface {
	// Complete marks the vertex as finished, failed when err is not nil.
	Complete(err error)
	// Cached marks the vertex as satisfied without doing the work.
	Cached()
}
