package collect

import (
	"github.com/syslex/artitracker/pkg/pom"
	"github.com/syslex/artitracker/pkg/report"
)

// FromDependency maps a <dependency> entry to a reference tagged
// [report.InclusionDependency]. Coordinates are copied as declared.
func FromDependency(d pom.Dependency) report.Reference {
	return reference(d.GroupID, d.ArtifactID, d.Version, report.InclusionDependency)
}

// FromPlugin maps a build <plugin> entry to a reference tagged
// [report.InclusionPlugin].
func FromPlugin(p pom.Plugin) report.Reference {
	return reference(p.GroupID, p.ArtifactID, p.Version, report.InclusionPlugin)
}

// FromParent maps the <parent> entry to a reference tagged
// [report.InclusionParent].
func FromParent(p pom.Parent) report.Reference {
	return reference(p.GroupID, p.ArtifactID, p.Version, report.InclusionParent)
}

func reference(group, name, version *string, inc report.Inclusion) report.Reference {
	return report.Reference{
		ArtifactIdentity: identity(group, name, version),
		Inclusion:        inc,
	}
}

// identity copies the coordinates so the report does not share memory
// with the descriptor.
func identity(group, name, version *string) report.ArtifactIdentity {
	return report.ArtifactIdentity{
		Group:   clone(group),
		Name:    clone(name),
		Version: clone(version),
	}
}

func clone(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
