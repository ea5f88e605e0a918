// Package pom reads Maven project descriptors (pom.xml) into a read-only
// object model.
//
// # Overview
//
// The model keeps the distinction between "absent" and "present" that the
// report pipeline relies on:
//
//   - Scalar coordinates ([Model.GroupID], [Dependency.Version], ...) are
//     *string; nil means the element does not exist in the descriptor.
//   - [Model.Properties] is nil when the descriptor has no <properties> block.
//   - [Model.Build] is nil when there is no <build> section.
//   - [Plugin.Configuration] is a [Configuration]: a [*Node] tree, an
//     [Opaque] value, or nil when the plugin declares no configuration.
//
// # Reading Descriptors
//
//	m, err := pom.ReadFile("pom.xml")
//	if err != nil {
//	    return err
//	}
//	if v, ok := m.Properties.Lookup("maven.compiler.release"); ok {
//	    fmt.Println("release", v)
//	}
//
// [Find] locates the descriptor of a project directory, following the
// convention that a Maven project keeps its pom.xml at the root.
//
// Property references such as ${project.version} are not interpolated and
// inheritance from the parent descriptor is not applied; values are kept as
// written.
package pom
