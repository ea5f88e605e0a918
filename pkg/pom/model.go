package pom

// Model is the parsed form of a pom.xml project descriptor.
// A Model is not modified after [Read] returns it.
type Model struct {
	GroupID      *string
	ArtifactID   *string
	Version      *string
	Packaging    *string
	Name         *string
	Parent       *Parent
	Properties   Properties
	Dependencies []Dependency
	Build        *Build
}

// Parent references the parent project a descriptor inherits from.
type Parent struct {
	GroupID      *string
	ArtifactID   *string
	Version      *string
	RelativePath *string
}

// Dependency is a single <dependency> entry.
type Dependency struct {
	GroupID    *string
	ArtifactID *string
	Version    *string
	Type       *string
	Classifier *string
	Scope      *string
	Optional   *string
}

// Build is the <build> section of a descriptor.
type Build struct {
	Plugins []Plugin
}

// Plugin is a single <build><plugins><plugin> entry.
type Plugin struct {
	GroupID       *string
	ArtifactID    *string
	Version       *string
	Configuration Configuration
}

// Properties holds the <properties> key/value pairs of a descriptor.
// A nil Properties means the descriptor declares no properties block.
type Properties map[string]string

// Lookup returns the value of key and whether it is declared.
// Lookups on a nil Properties report absence.
func (p Properties) Lookup(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	v, ok := p[key]
	return v, ok
}

// Plugins returns the declared build plugins in declaration order, or nil
// when the descriptor has no build section.
func (m *Model) Plugins() []Plugin {
	if m == nil || m.Build == nil {
		return nil
	}
	return m.Build.Plugins
}

// Coordinate returns "groupId:artifactId" for the project, leaving absent
// parts empty.
func (m *Model) Coordinate() string {
	if m == nil {
		return ":"
	}
	return deref(m.GroupID) + ":" + deref(m.ArtifactID)
}

// String returns a pointer to s. It is a convenience for building models
// by hand.
func String(s string) *string { return &s }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
