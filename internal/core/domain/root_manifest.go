package domain

import (
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// DependencyKind selects one of the two dependency sections of a root manifest.
type DependencyKind int

const (
	// KindProduction is the "dependencies" section.
	KindProduction DependencyKind = iota
	// KindDevelopment is the "devDependencies" section.
	KindDevelopment
)

// String returns the package.json key of the section.
func (k DependencyKind) String() string {
	if k == KindDevelopment {
		return "devDependencies"
	}
	return "dependencies"
}

// Dependency is one declared name and range. An empty Range means unconstrained.
type Dependency struct {
	Name  string
	Range string
}

// DependencyList keeps dependencies in declared order.
type DependencyList []Dependency

// Get returns the range declared for name.
func (l DependencyList) Get(name string) (string, bool) {
	i := slices.IndexFunc(l, func(d Dependency) bool { return d.Name == name })
	if i < 0 {
		return "", false
	}
	return l[i].Range, true
}

// Set replaces the range of name in place, or appends it when absent.
// It reports whether the list changed.
func (l *DependencyList) Set(name, rng string) bool {
	for i := range *l {
		if (*l)[i].Name != name {
			continue
		}
		if (*l)[i].Range == rng {
			return false
		}
		(*l)[i].Range = rng
		return true
	}
	*l = append(*l, Dependency{Name: name, Range: rng})
	return true
}

// Names returns the dependency names in declared order.
func (l DependencyList) Names() []string {
	names := make([]string, len(l))
	for i, d := range l {
		names[i] = d.Name
	}
	return names
}

// RootManifest is the project's package.json as far as resolution is concerned.
type RootManifest struct {
	// Dir is the directory containing package.json; node_modules and the lock file live here.
	Dir string

	Dependencies    DependencyList
	DevDependencies DependencyList

	// HasDependencies and HasDevDependencies record whether the sections exist in the file,
	// so an absent section is not written back as an empty object.
	HasDependencies    bool
	HasDevDependencies bool
}

// List returns the section for kind.
func (m *RootManifest) List(kind DependencyKind) *DependencyList {
	if kind == KindDevelopment {
		return &m.DevDependencies
	}
	return &m.Dependencies
}

// Clone returns a deep copy of the manifest.
func (m *RootManifest) Clone() *RootManifest {
	out := *m
	out.Dependencies = slices.Clone(m.Dependencies)
	out.DevDependencies = slices.Clone(m.DevDependencies)
	return &out
}

// ForProduction returns a copy without development dependencies.
func (m *RootManifest) ForProduction() *RootManifest {
	out := m.Clone()
	out.DevDependencies = nil
	return out
}

// Add merges package specs into the section for kind and reports whether anything changed.
func (m *RootManifest) Add(kind DependencyKind, specs []PackageSpec) bool {
	if len(specs) == 0 {
		return false
	}
	list := m.List(kind)
	changed := false
	for _, spec := range specs {
		if list.Set(spec.Name, spec.Range) {
			changed = true
		}
	}
	if kind == KindDevelopment {
		m.HasDevDependencies = true
	} else {
		m.HasDependencies = true
	}
	return changed
}

// Apply writes back-filled ranges and reports whether anything changed.
// Back-fills for names the manifest does not declare are ignored.
func (m *RootManifest) Apply(fills []BackFill) bool {
	changed := false
	for _, fill := range fills {
		list := m.List(fill.Kind)
		if _, ok := list.Get(fill.Name); !ok {
			continue
		}
		if list.Set(fill.Name, fill.Range) {
			changed = true
		}
	}
	return changed
}

// PackageSpec is a package argument given on the command line.
type PackageSpec struct {
	Name  string
	Range string
}

// ParsePackageSpec parses "name", "name@version", "@scope/name" and "@scope/name@version".
// A bare version becomes a caret range; any other range is kept as written.
func ParsePackageSpec(arg string) (PackageSpec, error) {
	invalid := func() (PackageSpec, error) {
		return PackageSpec{}, zerr.With(zerr.Wrap(ErrInvalidPackageSpec, "parse package argument"), "package", arg)
	}

	arg = strings.TrimSpace(arg)
	offset := 0
	if strings.HasPrefix(arg, "@") {
		offset = 1
	}
	name, version, hasVersion := strings.Cut(arg[offset:], "@")
	name = arg[:offset] + name

	if name == "" || name == "@" || strings.ContainsAny(name, " \t") {
		return invalid()
	}
	if offset == 1 {
		scope, pkg, ok := strings.Cut(name[1:], "/")
		if !ok || scope == "" || pkg == "" || strings.Contains(pkg, "/") {
			return invalid()
		}
	} else if strings.Contains(name, "/") {
		return invalid()
	}
	if hasVersion && version == "" {
		return invalid()
	}

	return PackageSpec{Name: name, Range: specRange(version)}, nil
}

// ParsePackageSpecs parses every argument, failing on the first invalid one.
func ParsePackageSpecs(args []string) ([]PackageSpec, error) {
	specs := make([]PackageSpec, 0, len(args))
	for _, arg := range args {
		spec, err := ParsePackageSpec(arg)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func specRange(version string) string {
	if version == "" {
		return ""
	}
	c := version[0]
	if c >= '0' && c <= '9' {
		return "^" + version
	}
	return version
}
