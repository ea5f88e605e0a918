package collect

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/syslex/artitracker/pkg/pom"
	"github.com/syslex/artitracker/pkg/report"
)

var fixedTime = time.Date(2024, 12, 22, 22, 37, 14, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

func TestBuildArtifactOnly(t *testing.T) {
	m := &pom.Model{
		GroupID:    pom.String("com.example"),
		ArtifactID: pom.String("test-artifact"),
		Version:    pom.String("1.0.0"),
	}

	r := Build(m, Options{Now: fixedNow})

	if r.Programming != nil {
		t.Errorf("Programming = %+v, want absent", r.Programming)
	}
	if r.Dependencies != nil {
		t.Errorf("Dependencies = %v, want absent", r.Dependencies)
	}
	if r.Generator != nil {
		t.Errorf("Generator = %+v, want absent", r.Generator)
	}

	got, err := report.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"artifact":{"group":"com.example","name":"test-artifact","version":"1.0.0"},"generatedAt":"2024-12-22T22:37:14Z"}`
	if string(got) != want {
		t.Errorf("encoded report =\n%s\nwant\n%s", got, want)
	}
}

func TestBuildReferenceOrder(t *testing.T) {
	tests := []struct {
		name    string
		parent  bool
		deps    int
		plugins int
	}{
		{"nothing", false, 0, 0},
		{"parent only", true, 0, 0},
		{"dependencies only", false, 3, 0},
		{"plugins only", false, 0, 2},
		{"all", true, 4, 3},
		{"no parent", false, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &pom.Model{ArtifactID: pom.String("app")}
			if tt.parent {
				m.Parent = &pom.Parent{GroupID: pom.String("org.example"), ArtifactID: pom.String("parent"), Version: pom.String("1")}
			}
			for i := 0; i < tt.deps; i++ {
				m.Dependencies = append(m.Dependencies, pom.Dependency{ArtifactID: pom.String(fmt.Sprintf("dep-%d", i))})
			}
			if tt.plugins > 0 {
				m.Build = &pom.Build{}
				for i := 0; i < tt.plugins; i++ {
					m.Build.Plugins = append(m.Build.Plugins, pom.Plugin{ArtifactID: pom.String(fmt.Sprintf("plugin-%d", i))})
				}
			}

			r := Build(m, Options{Now: fixedNow})

			want := tt.deps + tt.plugins
			if tt.parent {
				want++
			}
			if len(r.Dependencies) != want {
				t.Fatalf("len(Dependencies) = %d, want %d", len(r.Dependencies), want)
			}

			i := 0
			if tt.parent {
				if r.Dependencies[0].Inclusion != report.InclusionParent || *r.Dependencies[0].Name != "parent" {
					t.Errorf("Dependencies[0] = %v, want parent", r.Dependencies[0])
				}
				i++
			}
			for d := 0; d < tt.deps; d, i = d+1, i+1 {
				ref := r.Dependencies[i]
				if ref.Inclusion != report.InclusionDependency || *ref.Name != fmt.Sprintf("dep-%d", d) {
					t.Errorf("Dependencies[%d] = %v %s, want dep-%d DEPENDENCY", i, ref.ArtifactIdentity, ref.Inclusion, d)
				}
			}
			for p := 0; p < tt.plugins; p, i = p+1, i+1 {
				ref := r.Dependencies[i]
				if ref.Inclusion != report.InclusionPlugin || *ref.Name != fmt.Sprintf("plugin-%d", p) {
					t.Errorf("Dependencies[%d] = %v %s, want plugin-%d PLUGIN", i, ref.ArtifactIdentity, ref.Inclusion, p)
				}
			}

			if got := r.Count(report.InclusionDependency); got != tt.deps {
				t.Errorf("Count(DEPENDENCY) = %d, want %d", got, tt.deps)
			}
			if got := r.Count(report.InclusionPlugin); got != tt.plugins {
				t.Errorf("Count(PLUGIN) = %d, want %d", got, tt.plugins)
			}
		})
	}
}

func TestBuildProgramming(t *testing.T) {
	m := &pom.Model{
		ArtifactID: pom.String("app"),
		Properties: pom.Properties{"maven.compiler.target": "1.2"},
	}

	r := Build(m, Options{Now: fixedNow})

	if r.Programming == nil {
		t.Fatal("Programming absent")
	}
	if r.Programming.Language != report.LanguageJava {
		t.Errorf("Language = %q, want %q", r.Programming.Language, report.LanguageJava)
	}
	if v, ok := r.JavaVersion(); !ok || v != "1.2" {
		t.Errorf("JavaVersion() = %q, %v, want 1.2", v, ok)
	}
}

func TestBuildGenerator(t *testing.T) {
	gen := &report.Generator{Name: pom.String("artitracker"), Version: pom.String("1.4.0")}
	r := Build(&pom.Model{}, Options{Now: fixedNow, Generator: gen})

	if r.Generator == nil {
		t.Fatal("Generator absent")
	}
	if r.Generator == gen || r.Generator.Name == gen.Name {
		t.Error("Generator shares memory with the option value")
	}
	if !r.Generator.GeneratedAt.Equal(*r.GeneratedAt) {
		t.Errorf("generator instant %v differs from report instant %v", r.Generator.GeneratedAt, r.GeneratedAt)
	}
	if gen.GeneratedAt != nil {
		t.Error("Build modified the option value")
	}

	data, _ := report.Marshal(r)
	want := `{"artifact":{},"generatedAt":"2024-12-22T22:37:14Z","generator":{"name":"artitracker","version":"1.4.0","generatedAt":"2024-12-22T22:37:14Z"}}`
	if string(data) != want {
		t.Errorf("encoded report =\n%s\nwant\n%s", data, want)
	}
}

func TestBuildGeneratorWithoutMetadata(t *testing.T) {
	r := Build(&pom.Model{}, Options{Now: fixedNow, Generator: &report.Generator{}})
	data, _ := report.Marshal(r)
	if !strings.Contains(string(data), `"generator":{"generatedAt":"2024-12-22T22:37:14Z"}`) {
		t.Errorf("generator without metadata should only carry the timestamp: %s", data)
	}
}

func TestBuildNowCalledOnce(t *testing.T) {
	calls := 0
	now := func() time.Time {
		calls++
		return fixedTime.Add(time.Duration(calls) * time.Second)
	}
	r := Build(&pom.Model{}, Options{Now: now, Generator: &report.Generator{}})
	if calls != 1 {
		t.Errorf("Now called %d times, want 1", calls)
	}
	if !r.Generator.GeneratedAt.Equal(*r.GeneratedAt) {
		t.Error("timestamps differ")
	}
}

func TestBuildNilModel(t *testing.T) {
	r := Build(nil, Options{Now: fixedNow})
	if r.Artifact != nil || r.Dependencies != nil || r.Programming != nil {
		t.Errorf("Build(nil) = %+v, want only a timestamp", r)
	}
	if r.GeneratedAt == nil {
		t.Error("GeneratedAt absent")
	}
}

func TestBuildDoesNotAliasModel(t *testing.T) {
	m := &pom.Model{
		GroupID:      pom.String("com.example"),
		Dependencies: []pom.Dependency{{ArtifactID: pom.String("lib")}},
	}
	r := Build(m, Options{Now: fixedNow})

	*m.GroupID = "changed"
	*m.Dependencies[0].ArtifactID = "changed"

	if *r.Artifact.Group != "com.example" {
		t.Errorf("artifact group changed with model: %q", *r.Artifact.Group)
	}
	if *r.Dependencies[0].Name != "lib" {
		t.Errorf("reference changed with model: %q", *r.Dependencies[0].Name)
	}
}

func TestBuildFromDescriptor(t *testing.T) {
	const data = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <modelVersion>4.0.0</modelVersion>
  <parent>
    <groupId>org.springframework.boot</groupId>
    <artifactId>spring-boot-starter-parent</artifactId>
    <version>3.2.0</version>
  </parent>
  <groupId>com.example</groupId>
  <artifactId>demo</artifactId>
  <version>0.0.1-SNAPSHOT</version>
  <properties>
    <maven.compiler.release>21</maven.compiler.release>
  </properties>
  <dependencies>
    <dependency>
      <groupId>org.springframework.boot</groupId>
      <artifactId>spring-boot-starter-web</artifactId>
    </dependency>
  </dependencies>
  <build>
    <plugins>
      <plugin>
        <groupId>org.springframework.boot</groupId>
        <artifactId>spring-boot-maven-plugin</artifactId>
      </plugin>
    </plugins>
  </build>
</project>`

	m, err := pom.Read(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	r := Build(m, Options{Now: fixedNow})

	got, err := report.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"artifact":{"group":"com.example","name":"demo","version":"0.0.1-SNAPSHOT"},` +
		`"programming":{"language":"Java","version":"21"},` +
		`"generatedAt":"2024-12-22T22:37:14Z",` +
		`"dependencies":[` +
		`{"group":"org.springframework.boot","name":"spring-boot-starter-parent","version":"3.2.0","inclusion":"PARENT"},` +
		`{"group":"org.springframework.boot","name":"spring-boot-starter-web","inclusion":"DEPENDENCY"},` +
		`{"group":"org.springframework.boot","name":"spring-boot-maven-plugin","inclusion":"PLUGIN"}]}`
	if string(got) != want {
		t.Errorf("encoded report =\n%s\nwant\n%s", got, want)
	}
}
