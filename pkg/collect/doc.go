// Package collect turns a parsed Maven descriptor into a [report.Report].
//
// # Overview
//
// Collection has three parts:
//
//   - Adapters ([FromDependency], [FromPlugin], [FromParent]) map each kind
//     of descriptor entry to a [report.Reference] tagged with its origin.
//   - [JavaVersion] resolves the Java version a project targets from the
//     compiler properties and the maven-compiler-plugin configuration.
//   - [Build] assembles the report: artifact identity, programming info,
//     references (parent, then dependencies, then plugins) and timestamps.
//
// Collection never fails. Missing descriptor sections contribute nothing
// to the report.
//
//	m, _ := pom.ReadFile("pom.xml")
//	r := collect.Build(m, collect.Options{})
//	data, _ := report.Marshal(r)
package collect
