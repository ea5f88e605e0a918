package report

import (
	"fmt"
	"time"
)

// Inclusion records how a referenced artifact entered the report.
type Inclusion string

const (
	InclusionDependency Inclusion = "DEPENDENCY"
	InclusionPlugin     Inclusion = "PLUGIN"
	InclusionParent     Inclusion = "PARENT"
)

// Valid reports whether i is one of the known inclusion tags.
func (i Inclusion) Valid() bool {
	switch i {
	case InclusionDependency, InclusionPlugin, InclusionParent:
		return true
	}
	return false
}

// UnmarshalText rejects unknown tags so decoded reports keep the
// one-tag-per-reference invariant.
func (i *Inclusion) UnmarshalText(text []byte) error {
	v := Inclusion(text)
	if !v.Valid() {
		return fmt.Errorf("unknown inclusion %q", string(text))
	}
	*i = v
	return nil
}

// Language identifies the programming language of a project.
type Language string

// LanguageJava is the only language Maven descriptors are reported for.
const LanguageJava Language = "Java"

// ArtifactIdentity is the coordinate triple of an artifact. Every part is
// optional because descriptors may omit any of them.
type ArtifactIdentity struct {
	Group   *string `json:"group,omitempty" yaml:"group,omitempty"`
	Name    *string `json:"name,omitempty" yaml:"name,omitempty"`
	Version *string `json:"version,omitempty" yaml:"version,omitempty"`
}

// Coordinate returns "group:name", leaving absent parts empty.
func (a ArtifactIdentity) Coordinate() string {
	return value(a.Group) + ":" + value(a.Name)
}

// String returns "group:name:version" for logging.
func (a ArtifactIdentity) String() string {
	return a.Coordinate() + ":" + value(a.Version)
}

// Reference is an artifact referenced by a project, tagged with where it
// was declared. The tag is set when the reference is created.
type Reference struct {
	ArtifactIdentity `yaml:",inline"`
	Inclusion        Inclusion `json:"inclusion,omitempty" yaml:"inclusion,omitempty"`
}

// Programming describes the language a project is written in.
type Programming struct {
	Language Language `json:"language,omitempty" yaml:"language,omitempty"`
	Version  *string  `json:"version,omitempty" yaml:"version,omitempty"`
}

// Generator describes the tool instance that produced a report.
type Generator struct {
	Name        *string    `json:"name,omitempty" yaml:"name,omitempty"`
	Version     *string    `json:"version,omitempty" yaml:"version,omitempty"`
	GeneratedAt *time.Time `json:"generatedAt,omitempty" yaml:"generatedAt,omitempty"`
}

// Report is the artifact report of one project. It is built once and not
// modified afterwards.
type Report struct {
	Artifact     *ArtifactIdentity `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	Programming  *Programming      `json:"programming,omitempty" yaml:"programming,omitempty"`
	GeneratedAt  *time.Time        `json:"generatedAt,omitempty" yaml:"generatedAt,omitempty"`
	Dependencies []Reference       `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Generator    *Generator        `json:"generator,omitempty" yaml:"generator,omitempty"`
}

// Coordinate returns the "group:name" coordinate of the reported artifact.
func (r *Report) Coordinate() string {
	if r == nil || r.Artifact == nil {
		return ":"
	}
	return r.Artifact.Coordinate()
}

// Count returns the number of references tagged with inc.
func (r *Report) Count(inc Inclusion) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, d := range r.Dependencies {
		if d.Inclusion == inc {
			n++
		}
	}
	return n
}

// JavaVersion returns the resolved language version, if any.
func (r *Report) JavaVersion() (string, bool) {
	if r == nil || r.Programming == nil || r.Programming.Version == nil {
		return "", false
	}
	return *r.Programming.Version, true
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
