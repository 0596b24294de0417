// Package app implements the application layer for mpm.
package app

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/mpm/internal/core/domain"
	"go.trai.ch/mpm/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	manifests   ports.ManifestStore
	lock        ports.LockStore
	resolver    ports.DependencyResolver
	installer   ports.Installer
	telemetry   ports.Telemetry
	logger      ports.Logger
	concurrency int
	newRunID    func() string
}

// New creates a new App instance.
func New(
	manifests ports.ManifestStore,
	lock ports.LockStore,
	resolver ports.DependencyResolver,
	installer ports.Installer,
	telemetry ports.Telemetry,
	log ports.Logger,
	settings *domain.Settings,
) *App {
	return &App{
		manifests:   manifests,
		lock:        lock,
		resolver:    resolver,
		installer:   installer,
		telemetry:   telemetry,
		logger:      log,
		concurrency: max(settings.Concurrency, 1),
		newRunID:    uuid.NewString,
	}
}

// WithRunID replaces the run id generator. Used by tests.
func (a *App) WithRunID(fn func() string) *App {
	a.newRunID = fn
	return a
}

// InstallOptions configuration for the Install method.
type InstallOptions struct {
	// Packages are name or name@version arguments merged into the manifest first.
	Packages []string
	// Dev adds Packages to devDependencies instead of dependencies.
	Dev bool
	// Production skips devDependencies during resolution and installation.
	Production bool
}

// Install resolves the project's dependencies, installs them into node_modules
// and writes the lock file.
//
//nolint:cyclop // orchestration function
func (a *App) Install(ctx context.Context, opts InstallOptions) error {
	start := time.Now()
	runID := a.newRunID()

	// 1. Load the manifest
	manifest, err := a.manifests.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load package.json")
	}

	// 2. Merge package arguments
	specs, err := domain.ParsePackageSpecs(opts.Packages)
	if err != nil {
		return err
	}
	kind := domain.KindProduction
	if opts.Dev {
		kind = domain.KindDevelopment
	}
	changed := manifest.Add(kind, specs)

	target := manifest
	if opts.Production {
		target = manifest.ForProduction()
	}

	// 3. Load the prior lock
	if err := a.lock.Load(manifest.Dir); err != nil {
		a.logger.Warn("ignoring unreadable lock file", "error", err.Error())
	}

	// 4. Resolve
	res, err := a.resolver.Resolve(ctx, target)
	if err != nil {
		return errors.Join(domain.ErrResolutionFailed, err)
	}
	if target != manifest {
		manifest.Apply(res.BackFills)
	}
	changed = changed || len(res.BackFills) > 0

	// 5. Persist the lock while packages install
	persisted := make(chan error, 1)
	go func() {
		persisted <- a.lock.Persist()
	}()

	installErr := a.installAll(ctx, manifest.Dir, res)

	if err := <-persisted; err != nil {
		a.logger.Warn("failed to write lock file", "error", err.Error())
	}
	if installErr != nil {
		return installErr
	}

	// 6. Write back the manifest
	if changed {
		if err := a.manifests.Save(manifest); err != nil {
			return err
		}
	}

	a.logger.Info("dependencies installed",
		"top_level", len(res.TopLevel),
		"nested", len(res.Nested),
		"duration", time.Since(start).Round(time.Millisecond).String(),
		"run_id", runID,
	)
	return nil
}

// installAll installs every top-level entry, then nested entries one depth at a time
// so that a package directory always exists before anything is nested inside it.
func (a *App) installAll(ctx context.Context, root string, res *domain.Resolution) error {
	topLevel := res.TopLevelSorted()
	requests := make([]domain.InstallRequest, len(topLevel))
	for i, e := range topLevel {
		requests[i] = e.InstallRequest()
	}
	if err := a.installBatch(ctx, root, requests); err != nil {
		return err
	}

	nested := slices.Clone(res.Nested)
	slices.SortStableFunc(nested, func(x, y domain.NestedEntry) int {
		return cmp.Compare(len(x.Parents), len(y.Parents))
	})
	for len(nested) > 0 {
		depth := len(nested[0].Parents)
		end := slices.IndexFunc(nested, func(e domain.NestedEntry) bool { return len(e.Parents) != depth })
		if end < 0 {
			end = len(nested)
		}

		requests := make([]domain.InstallRequest, end)
		for i, e := range nested[:end] {
			requests[i] = e.InstallRequest()
		}
		if err := a.installBatch(ctx, root, requests); err != nil {
			return err
		}
		nested = nested[end:]
	}
	return nil
}

func (a *App) installBatch(ctx context.Context, root string, requests []domain.InstallRequest) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for _, req := range requests {
		g.Go(func() error {
			ctx, vertex := a.telemetry.Record(ctx, "install "+installPath(req))
			err := a.installer.Install(ctx, root, req)
			vertex.Complete(err)
			return err
		})
	}
	return g.Wait()
}

// Close flushes the progress recording.
func (a *App) Close() error {
	return a.telemetry.Close()
}

func installPath(req domain.InstallRequest) string {
	return strings.Join(append(slices.Clone(req.Parents), req.Name), "/")
}
