// Package resolver implements the dependency resolver.
package resolver

import (
	"context"

	"go.trai.ch/mpm/internal/core/domain"
	"go.trai.ch/mpm/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Resolver expands a root manifest into top-level and nested install entries.
type Resolver struct {
	oracle    ports.VersionOracle
	source    ports.ManifestSource
	lock      ports.LockStore
	telemetry ports.Telemetry
	logger    ports.Logger

	strategy domain.ResolutionStrategy
	fetches  *semaphore.Weighted
}

// NewResolver creates a new Resolver with the given dependencies.
func NewResolver(
	oracle ports.VersionOracle,
	source ports.ManifestSource,
	lock ports.LockStore,
	telemetry ports.Telemetry,
	logger ports.Logger,
	settings *domain.Settings,
) *Resolver {
	return &Resolver{
		oracle:    oracle,
		source:    source,
		lock:      lock,
		telemetry: telemetry,
		logger:    logger,
		strategy:  settings.Resolution,
		fetches:   semaphore.NewWeighted(int64(max(settings.Concurrency, 1))),
	}
}

// Resolve resolves the dependencies of root, then its devDependencies.
// Ranges chosen for dependencies declared without one are written into root
// and reported as back-fills.
func (r *Resolver) Resolve(ctx context.Context, root *domain.RootManifest) (*domain.Resolution, error) {
	state := r.newRun()

	for _, kind := range []domain.DependencyKind{domain.KindProduction, domain.KindDevelopment} {
		if err := state.resolvePhase(ctx, kind, *root.List(kind)); err != nil {
			return nil, err
		}
	}

	res := state.result()
	root.Apply(res.BackFills)
	return res, nil
}

func (s *run) resolvePhase(ctx context.Context, kind domain.DependencyKind, deps domain.DependencyList) error {
	fills := make([]string, len(deps))
	err := s.fanOut(ctx, len(deps), func(ctx context.Context, i int) error {
		fill, err := s.collect(ctx, deps[i].Name, deps[i].Range, nil)
		fills[i] = fill
		return err
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, fill := range fills {
		if fill != "" {
			s.backFills = append(s.backFills, domain.BackFill{Kind: kind, Name: deps[i].Name, Range: fill})
		}
	}
	return nil
}

// fanOut runs fn for every index. Under the concurrent strategy the calls run in
// parallel and the first error cancels the rest; under the ordered strategy they
// run one after another.
func (s *run) fanOut(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	if s.r.strategy == domain.ResolutionOrdered {
		for i := range n {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx, i); err != nil {
				return err
			}
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := range n {
		g.Go(func() error {
			return fn(ctx, i)
		})
	}
	return g.Wait()
}

// collect resolves one name@constraint request below stack, registers its placement,
// and recurses into its dependencies. It returns the caret range to back-fill when
// constraint is empty.
func (s *run) collect(
	ctx context.Context,
	name, constraint string,
	stack domain.ResolutionStack,
) (fill string, err error) {
	ctx, vertex := s.r.telemetry.Record(ctx, "resolve "+domain.LockKey(name, constraint))
	defer func() {
		vertex.Complete(err)
	}()

	fetched, err := s.r.manifest(ctx, name, constraint)
	if err != nil {
		return "", err
	}
	if fetched.Origin == domain.OriginLock {
		vertex.Cached()
	}

	matched, ok := s.r.match(fetched.Manifest, constraint)
	if !ok {
		err := zerr.With(zerr.Wrap(domain.ErrUnresolvableConstraint, "select version"), "package", name)
		return "", zerr.With(err, "constraint", constraint)
	}
	version := fetched.Manifest[matched]

	if !s.place(name, constraint, matched, version, stack) {
		s.r.logger.Debug("already satisfied by an ancestor", "package", name, "constraint", constraint)
		return backFill(constraint, matched), nil
	}

	s.r.lock.Record(name, constraint, domain.LockEntry{
		Version:      matched,
		Locator:      version.Distribution.Locator,
		Integrity:    version.Distribution.Integrity,
		Dependencies: version.Dependencies,
	})

	if err := s.descend(ctx, name, matched, version.Dependencies, stack); err != nil {
		return "", err
	}

	return backFill(constraint, matched), nil
}

// backFill returns the caret range recorded for a dependency declared without one.
func backFill(constraint, matched string) string {
	if constraint != "" {
		return ""
	}
	return "^" + matched
}

func (s *run) descend(
	ctx context.Context,
	name, matched string,
	deps map[string]string,
	stack domain.ResolutionStack,
) error {
	names := sortedKeys(deps)
	pending := names[:0:0]
	for _, dep := range names {
		if stack.HasCycle(dep, deps[dep], s.r.oracle.Satisfies) {
			s.r.logger.Debug("skipping cyclic dependency", "package", name, "dependency", dep)
			continue
		}
		pending = append(pending, dep)
	}
	if len(pending) == 0 {
		return nil
	}

	next := stack.Push(domain.StackFrame{
		Name:         domain.NewInternedString(name),
		Version:      matched,
		Dependencies: deps,
	})
	return s.fanOut(ctx, len(pending), func(ctx context.Context, i int) error {
		// Branches only ever Push onto next, which copies.
		_, err := s.collect(ctx, pending[i], deps[pending[i]], next)
		return err
	})
}

// manifest returns the lock entry for name@constraint, or fetches every version of name.
// Fetches are bounded by the concurrency setting.
func (r *Resolver) manifest(ctx context.Context, name, constraint string) (domain.FetchedManifest, error) {
	if m, ok := r.lock.Lookup(name, constraint); ok {
		return domain.FetchedManifest{Origin: domain.OriginLock, Manifest: m}, nil
	}

	if err := r.fetches.Acquire(ctx, 1); err != nil {
		return domain.FetchedManifest{}, err
	}
	defer r.fetches.Release(1)

	r.logger.Debug("fetching manifest", "package", name)
	m, err := r.source.FetchManifest(ctx, name)
	if err != nil {
		return domain.FetchedManifest{}, err
	}
	return domain.FetchedManifest{Origin: domain.OriginRegistry, Manifest: m}, nil
}

func (r *Resolver) match(m domain.ResolvedManifest, constraint string) (string, bool) {
	if constraint == "" {
		return r.oracle.Newest(m.Versions())
	}
	return r.oracle.MaxSatisfying(m.Versions(), constraint)
}
