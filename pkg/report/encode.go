package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	aterrors "github.com/syslex/artitracker/pkg/errors"
)

// Format selects the textual encoding of a report.
type Format string

const (
	FormatJSON       Format = "json"        // compact JSON, the canonical form
	FormatPrettyJSON Format = "json-pretty" // indented JSON
	FormatYAML       Format = "yaml"
)

// Formats lists the supported formats in display order.
var Formats = []Format{FormatJSON, FormatPrettyJSON, FormatYAML}

// ParseFormat parses a format name. The empty string selects [FormatJSON].
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatPrettyJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", aterrors.New(aterrors.ErrCodeInvalidFormat, "unknown format %q (available: json, json-pretty, yaml)", s)
	}
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// ContentType returns the media type for f.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Marshal encodes r as compact JSON without a trailing newline.
// Absent fields are omitted and HTML characters are not escaped.
func Marshal(r *Report) ([]byte, error) {
	return marshalJSON(r, "")
}

// MarshalIndent is like [Marshal] but indents nested values.
func MarshalIndent(r *Report, indent string) ([]byte, error) {
	return marshalJSON(r, indent)
}

func marshalJSON(r *Report, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// MarshalYAML encodes r as a YAML document.
func MarshalYAML(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return buf.Bytes(), nil
}

// Encode writes r to w in the given format, followed by a newline.
func Encode(w io.Writer, r *Report, f Format) error {
	var (
		data []byte
		err  error
	)
	switch f {
	case FormatJSON, "":
		data, err = Marshal(r)
	case FormatPrettyJSON:
		data, err = MarshalIndent(r, "  ")
	case FormatYAML:
		data, err = MarshalYAML(r)
	default:
		return aterrors.New(aterrors.ErrCodeInvalidFormat, "unknown format %q", f)
	}
	if err != nil {
		return err
	}
	if !bytes.HasSuffix(data, []byte("\n")) {
		data = append(data, '\n')
	}
	_, err = w.Write(data)
	return err
}

// Unmarshal decodes a JSON report. Unknown inclusion tags are rejected.
func Unmarshal(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, aterrors.Wrap(aterrors.ErrCodeInvalidReport, err, "decode report")
	}
	return &r, nil
}

// UnmarshalYAML decodes a YAML report.
func UnmarshalYAML(data []byte) (*Report, error) {
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, aterrors.Wrap(aterrors.ErrCodeInvalidReport, err, "decode report")
	}
	return &r, nil
}
