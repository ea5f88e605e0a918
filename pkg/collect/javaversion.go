package collect

import (
	"github.com/syslex/artitracker/pkg/pom"
)

// CompilerPluginID is the artifactId of the Maven compiler plugin.
const CompilerPluginID = "maven-compiler-plugin"

// VersionSource is one place a Java version can be declared.
type VersionSource struct {
	// Name describes the location, e.g. "property maven.compiler.release".
	Name   string
	lookup func(*pom.Model) (string, bool)
}

// Lookup returns the version declared at this source, if present.
func (s VersionSource) Lookup(m *pom.Model) (string, bool) {
	if m == nil {
		return "", false
	}
	return s.lookup(m)
}

// VersionSources lists the Java version sources in precedence order: the
// compiler properties release, target, source, then the same parameters of
// the maven-compiler-plugin configuration.
var VersionSources = []VersionSource{
	propertySource("maven.compiler.release"),
	propertySource("maven.compiler.target"),
	propertySource("maven.compiler.source"),
	compilerSource("release"),
	compilerSource("target"),
	compilerSource("source"),
}

// Resolution is a resolved Java version and the source that declared it.
type Resolution struct {
	Version string
	Source  string
}

// ResolveJavaVersion returns the value of the first source in
// [VersionSources] that is present in m. Later sources are not consulted.
func ResolveJavaVersion(m *pom.Model) (Resolution, bool) {
	for _, src := range VersionSources {
		if v, ok := src.Lookup(m); ok {
			return Resolution{Version: v, Source: src.Name}, true
		}
	}
	return Resolution{}, false
}

// JavaVersion returns the Java version m declares, if any. Values are
// returned as written, including empty ones.
func JavaVersion(m *pom.Model) (string, bool) {
	res, ok := ResolveJavaVersion(m)
	return res.Version, ok
}

func propertySource(key string) VersionSource {
	return VersionSource{
		Name: "property " + key,
		lookup: func(m *pom.Model) (string, bool) {
			return m.Properties.Lookup(key)
		},
	}
}

func compilerSource(param string) VersionSource {
	return VersionSource{
		Name: CompilerPluginID + " " + param,
		lookup: func(m *pom.Model) (string, bool) {
			return compilerParam(m, param)
		},
	}
}

// compilerParam reads a parameter of the first maven-compiler-plugin
// declared in the build section.
func compilerParam(m *pom.Model, param string) (string, bool) {
	plugin, ok := compilerPlugin(m)
	if !ok {
		return "", false
	}
	switch cfg := plugin.Configuration.(type) {
	case *pom.Node:
		return cfg.Child(param).Value()
	default:
		// nil or pom.Opaque: nothing to navigate.
		return "", false
	}
}

func compilerPlugin(m *pom.Model) (pom.Plugin, bool) {
	for _, p := range m.Plugins() {
		if p.ArtifactID != nil && *p.ArtifactID == CompilerPluginID {
			return p, true
		}
	}
	return pom.Plugin{}, false
}
