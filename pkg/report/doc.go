// Package report defines the artifact report produced for a project and its
// textual encodings.
//
// # Model
//
// A [Report] describes one project: its own coordinates ([ArtifactIdentity]),
// the Java version it targets ([Programming]), every artifact it references
// ([Reference]) and the tool that generated it ([Generator]). Each reference
// carries an [Inclusion] tag recording where it was declared: as a
// dependency, as a build plugin, or as the parent project.
//
// Optional values are pointers. A nil pointer is an absent value and is
// omitted from every encoding; an empty string is a present value and is
// kept.
//
// # Encoding
//
// [Marshal] produces the canonical compact JSON used for transport and
// storage:
//
//	{"artifact":{"group":"com.example","name":"app","version":"1.0.0"},"generatedAt":"2024-12-22T22:37:14Z"}
//
// Field order follows the struct declaration order, timestamps are RFC 3339
// strings, and inclusion tags are their symbolic names. Encoding the same
// report twice yields identical bytes. [MarshalYAML] and [Encode] provide
// the alternative human-oriented formats, and [Unmarshal] reads a JSON
// report back.
package report
