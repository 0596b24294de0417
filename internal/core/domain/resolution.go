package domain

import (
	"maps"
	"slices"
	"strings"
)

// StackFrame describes one package currently being expanded.
type StackFrame struct {
	Name         InternedString
	Version      string
	Dependencies map[string]string
}

// ResolutionStack is the ancestor chain from the root to the package being expanded.
// It is a value: Push never mutates the receiver, so sibling branches can share a parent stack.
type ResolutionStack []StackFrame

// SatisfiesFunc reports whether version satisfies rng.
type SatisfiesFunc func(version, rng string) bool

// Push returns a copy of the stack with frame appended.
func (s ResolutionStack) Push(frame StackFrame) ResolutionStack {
	next := make(ResolutionStack, len(s), len(s)+1)
	copy(next, s)
	return append(next, frame)
}

// Parent returns the innermost frame.
func (s ResolutionStack) Parent() (StackFrame, bool) {
	if len(s) == 0 {
		return StackFrame{}, false
	}
	return s[len(s)-1], true
}

// Names returns the package names of the chain, root first.
func (s ResolutionStack) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name.String()
	}
	return names
}

// NamesFrom returns the names from index start to the end of the chain.
// A negative start counts back from the end and is clamped to the root.
func (s ResolutionStack) NamesFrom(start int) []string {
	names := s.Names()
	if start < 0 {
		start = max(start+len(names), 0)
	}
	if start > len(names) {
		return nil
	}
	return names[start:]
}

// HasCycle reports whether name is already on the chain with a version that satisfies rng.
func (s ResolutionStack) HasCycle(name, rng string, satisfies SatisfiesFunc) bool {
	return slices.ContainsFunc(s, func(f StackFrame) bool {
		return f.Name.String() == name && satisfies(f.Version, rng)
	})
}

// SafeFrameIndex returns the index of the first frame, root first, that either does not
// constrain name or constrains it with a range version satisfies. It returns -1 if none does.
func (s ResolutionStack) SafeFrameIndex(name, version string, satisfies SatisfiesFunc) int {
	return slices.IndexFunc(s, func(f StackFrame) bool {
		rng, ok := f.Dependencies[name]
		if !ok || rng == "" {
			return true
		}
		return satisfies(version, rng)
	})
}

// TopLevelEntry is a package installed once at the root node_modules directory.
type TopLevelEntry struct {
	Name      InternedString
	Version   string
	Locator   string
	Integrity string
}

// NestedEntry is a package installed inside an ancestor's private node_modules directory.
type NestedEntry struct {
	Name InternedString

	// Parents is the ancestor chain, outermost first, under which the package is nested.
	Parents []string

	Version   string
	Locator   string
	Integrity string
}

// ParentPath joins the ancestor chain with "/".
func (e NestedEntry) ParentPath() string {
	return strings.Join(e.Parents, "/")
}

// BackFill is a range the resolver chose for a dependency declared without one.
type BackFill struct {
	Kind  DependencyKind
	Name  string
	Range string
}

// Resolution is the installable result of one resolver run.
type Resolution struct {
	TopLevel  map[InternedString]TopLevelEntry
	Nested    []NestedEntry
	BackFills []BackFill
}

// NewResolution creates an empty Resolution.
func NewResolution() *Resolution {
	return &Resolution{
		TopLevel: make(map[InternedString]TopLevelEntry),
	}
}

// TopLevelSorted returns the top-level entries ordered by name.
func (r *Resolution) TopLevelSorted() []TopLevelEntry {
	entries := slices.Collect(maps.Values(r.TopLevel))
	slices.SortFunc(entries, func(a, b TopLevelEntry) int {
		return strings.Compare(a.Name.String(), b.Name.String())
	})
	return entries
}

// InstallRequest asks the Installer to place one package.
type InstallRequest struct {
	Name string

	// Parents is the ancestor chain for nested packages; empty for top-level packages.
	Parents []string

	Locator   string
	Integrity string
}

// InstallRequest converts the entry into a top-level install request.
func (e TopLevelEntry) InstallRequest() InstallRequest {
	return InstallRequest{Name: e.Name.String(), Locator: e.Locator, Integrity: e.Integrity}
}

// InstallRequest converts the entry into a nested install request.
func (e NestedEntry) InstallRequest() InstallRequest {
	return InstallRequest{
		Name:      e.Name.String(),
		Parents:   slices.Clone(e.Parents),
		Locator:   e.Locator,
		Integrity: e.Integrity,
	}
}
