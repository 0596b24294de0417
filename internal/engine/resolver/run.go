package resolver

import (
	"maps"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/mpm/internal/core/domain"
)

// claim is a top-level entry together with the package that required it.
type claim struct {
	entry domain.TopLevelEntry

	// parent is the immediate requester; empty when the root manifest declared it.
	parent string
}

// run holds the placement state of one Resolve call.
type run struct {
	r *Resolver

	mu         sync.Mutex
	topLevel   map[domain.InternedString]claim
	nested     []domain.NestedEntry
	nestedKeys map[string]struct{}
	backFills  []domain.BackFill
}

func (r *Resolver) newRun() *run {
	return &run{
		r:          r,
		topLevel:   make(map[domain.InternedString]claim),
		nestedKeys: make(map[string]struct{}),
	}
}

// place decides where name@matched is installed. It returns false when an ancestor
// already covers the request, in which case nothing is recorded and the branch stops.
func (s *run) place(
	name, constraint, matched string,
	version domain.VersionManifest,
	stack domain.ResolutionStack,
) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.NewInternedString(name)
	entry := domain.TopLevelEntry{
		Name:      key,
		Version:   matched,
		Locator:   version.Distribution.Locator,
		Integrity: version.Distribution.Integrity,
	}

	parent, hasParent := stack.Parent()
	current, claimed := s.topLevel[key]
	switch {
	case !claimed:
		c := claim{entry: entry}
		if hasParent {
			c.parent = parent.Name.String()
		}
		s.topLevel[key] = c
		return true

	case s.r.oracle.Satisfies(current.entry.Version, constraint):
		i := stack.SafeFrameIndex(name, matched, s.r.oracle.Satisfies)
		if i < 0 {
			return false
		}
		s.addNested(entry, stack.NamesFrom(i-2))
		return true

	case hasParent:
		s.addNested(entry, []string{parent.Name.String()})
		return true

	case current.parent != "":
		// The root manifest outranks a transitive claim: the earlier claimant keeps
		// its version below its own requester.
		s.addNested(current.entry, []string{current.parent})
		s.topLevel[key] = claim{entry: entry}
		s.r.logger.Warn("root dependency displaced a transitive top-level claim",
			"package", name, "version", matched, "displaced", current.entry.Version)
		return true

	default:
		s.r.logger.Warn("conflicting root declarations, keeping the first",
			"package", name, "kept", current.entry.Version, "skipped", matched)
		return false
	}
}

// addNested appends a nested entry unless one already occupies the same location.
func (s *run) addNested(entry domain.TopLevelEntry, parents []string) {
	key := strings.Join(append(slices.Clone(parents), entry.Name.String()), "/")
	if _, ok := s.nestedKeys[key]; ok {
		return
	}
	s.nestedKeys[key] = struct{}{}
	s.nested = append(s.nested, domain.NestedEntry{
		Name:      entry.Name,
		Parents:   parents,
		Version:   entry.Version,
		Locator:   entry.Locator,
		Integrity: entry.Integrity,
	})
}

func (s *run) result() *domain.Resolution {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := domain.NewResolution()
	for name, c := range s.topLevel {
		res.TopLevel[name] = c.entry
	}
	res.Nested = slices.Clone(s.nested)
	slices.SortStableFunc(res.Nested, func(a, b domain.NestedEntry) int {
		return strings.Compare(a.ParentPath()+"/"+a.Name.String(), b.ParentPath()+"/"+b.Name.String())
	})
	res.BackFills = slices.Clone(s.backFills)
	return res
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
