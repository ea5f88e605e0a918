package pom

import (
	"encoding/xml"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	aterrors "github.com/syslex/artitracker/pkg/errors"
)

// FileName is the conventional descriptor file name of a Maven project.
const FileName = "pom.xml"

// IsDescriptor reports whether name is a descriptor file name.
func IsDescriptor(name string) bool { return filepath.Base(name) == FileName }

// Find returns the descriptor path for path. A directory resolves to the
// pom.xml inside it; a file is returned as is. The error carries
// [aterrors.ErrCodeDescriptorNotFound] when nothing exists at the location.
func Find(path string) (string, error) {
	if path == "" {
		path = "."
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", notFound(path, err)
	}
	if info.IsDir() {
		path = filepath.Join(path, FileName)
		if _, err := os.Stat(path); err != nil {
			return "", notFound(path, err)
		}
	}
	return path, nil
}

// ReadFile reads and parses the descriptor at path.
func ReadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, notFound(path, err)
	}
	defer f.Close()

	m, err := decode(f)
	if err != nil {
		return nil, aterrors.Wrap(aterrors.ErrCodeInvalidDescriptor, err, "parse %s", path)
	}
	return m, nil
}

// Read parses a descriptor from r.
func Read(r io.Reader) (*Model, error) {
	m, err := decode(r)
	if err != nil {
		return nil, aterrors.Wrap(aterrors.ErrCodeInvalidDescriptor, err, "malformed descriptor")
	}
	return m, nil
}

func decode(r io.Reader) (*Model, error) {
	var p pomProject
	if err := xml.NewDecoder(r).Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, err
	}
	return p.model(), nil
}

func notFound(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return aterrors.Wrap(aterrors.ErrCodeDescriptorNotFound, err, "no descriptor at %s", path)
	}
	return aterrors.Wrap(aterrors.ErrCodeInvalidDescriptor, err, "read %s", path)
}

type pomProject struct {
	XMLName      xml.Name        `xml:"project"`
	GroupID      *string         `xml:"groupId"`
	ArtifactID   *string         `xml:"artifactId"`
	Version      *string         `xml:"version"`
	Packaging    *string         `xml:"packaging"`
	Name         *string         `xml:"name"`
	Parent       *pomParent      `xml:"parent"`
	Properties   Properties      `xml:"properties"`
	Dependencies []pomDependency `xml:"dependencies>dependency"`
	Build        *pomBuild       `xml:"build"`
}

type pomParent struct {
	GroupID      *string `xml:"groupId"`
	ArtifactID   *string `xml:"artifactId"`
	Version      *string `xml:"version"`
	RelativePath *string `xml:"relativePath"`
}

type pomDependency struct {
	GroupID    *string `xml:"groupId"`
	ArtifactID *string `xml:"artifactId"`
	Version    *string `xml:"version"`
	Type       *string `xml:"type"`
	Classifier *string `xml:"classifier"`
	Scope      *string `xml:"scope"`
	Optional   *string `xml:"optional"`
}

type pomBuild struct {
	Plugins []pomPlugin `xml:"plugins>plugin"`
}

type pomPlugin struct {
	GroupID       *string `xml:"groupId"`
	ArtifactID    *string `xml:"artifactId"`
	Version       *string `xml:"version"`
	Configuration *Node   `xml:"configuration"`
}

// UnmarshalXML collects the child elements of <properties> as key/value
// pairs. A present but empty block yields an empty, non-nil map.
func (p *Properties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	props := Properties{}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var v string
			if err := d.DecodeElement(&v, &t); err != nil {
				return err
			}
			props[t.Name.Local] = strings.TrimSpace(v)
		case xml.EndElement:
			*p = props
			return nil
		}
	}
}

func (p *pomProject) model() *Model {
	m := &Model{
		GroupID:    trim(p.GroupID),
		ArtifactID: trim(p.ArtifactID),
		Version:    trim(p.Version),
		Packaging:  trim(p.Packaging),
		Name:       trim(p.Name),
		Properties: p.Properties,
	}
	if p.Parent != nil {
		m.Parent = &Parent{
			GroupID:      trim(p.Parent.GroupID),
			ArtifactID:   trim(p.Parent.ArtifactID),
			Version:      trim(p.Parent.Version),
			RelativePath: trim(p.Parent.RelativePath),
		}
	}
	for _, d := range p.Dependencies {
		m.Dependencies = append(m.Dependencies, Dependency{
			GroupID:    trim(d.GroupID),
			ArtifactID: trim(d.ArtifactID),
			Version:    trim(d.Version),
			Type:       trim(d.Type),
			Classifier: trim(d.Classifier),
			Scope:      trim(d.Scope),
			Optional:   trim(d.Optional),
		})
	}
	if p.Build != nil {
		m.Build = &Build{}
		for _, pl := range p.Build.Plugins {
			m.Build.Plugins = append(m.Build.Plugins, Plugin{
				GroupID:       trim(pl.GroupID),
				ArtifactID:    trim(pl.ArtifactID),
				Version:       trim(pl.Version),
				Configuration: toConfiguration(pl.Configuration),
			})
		}
	}
	return m
}

func trim(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
