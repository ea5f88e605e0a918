package collect

import (
	"time"

	"github.com/syslex/artitracker/pkg/pom"
	"github.com/syslex/artitracker/pkg/report"
)

// Options configures report assembly.
type Options struct {
	// Now returns the construction instant. Defaults to time.Now.
	Now func() time.Time

	// Generator stamps the report with the producing tool. When nil the
	// report carries no generator section. Name and Version are copied;
	// GeneratedAt is always set to the construction instant.
	Generator *report.Generator
}

// Build assembles the report for m. It never fails: sections missing from
// the descriptor contribute nothing. A nil model yields a report holding
// only the timestamp.
func Build(m *pom.Model, opts Options) *report.Report {
	return NewBuilder(opts).Build(m)
}

// Builder assembles reports with fixed options. A Builder holds no state
// between calls and may be shared between goroutines.
type Builder struct {
	now       func() time.Time
	generator *report.Generator
}

// NewBuilder creates a builder, applying defaults for unset options.
func NewBuilder(opts Options) *Builder {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Builder{now: now, generator: opts.Generator}
}

// Build assembles the report for m.
func (b *Builder) Build(m *pom.Model) *report.Report {
	// Captured once; both timestamps share the instant.
	at := b.now().Round(0)

	r := &report.Report{GeneratedAt: &at}
	if m == nil {
		r.Generator = b.stamp(at)
		return r
	}

	a := identity(m.GroupID, m.ArtifactID, m.Version)
	r.Artifact = &a

	if v, ok := JavaVersion(m); ok {
		r.Programming = &report.Programming{
			Language: report.LanguageJava,
			Version:  &v,
		}
	}

	r.Dependencies = References(m)
	r.Generator = b.stamp(at)
	return r
}

func (b *Builder) stamp(at time.Time) *report.Generator {
	if b.generator == nil {
		return nil
	}
	return &report.Generator{
		Name:        clone(b.generator.Name),
		Version:     clone(b.generator.Version),
		GeneratedAt: &at,
	}
}

// References lists the artifacts m refers to: the parent if declared, then
// every dependency, then every build plugin, each in declaration order.
// It returns nil when m declares none.
func References(m *pom.Model) []report.Reference {
	if m == nil {
		return nil
	}
	n := len(m.Dependencies) + len(m.Plugins())
	if m.Parent != nil {
		n++
	}
	if n == 0 {
		return nil
	}

	refs := make([]report.Reference, 0, n)
	if m.Parent != nil {
		refs = append(refs, FromParent(*m.Parent))
	}
	for _, d := range m.Dependencies {
		refs = append(refs, FromDependency(d))
	}
	for _, p := range m.Plugins() {
		refs = append(refs, FromPlugin(p))
	}
	return refs
}
