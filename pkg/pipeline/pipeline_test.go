package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	aterrors "github.com/syslex/artitracker/pkg/errors"
	"github.com/syslex/artitracker/pkg/report"
)

const descriptor = `<project>
  <groupId>com.example</groupId>
  <artifactId>test-artifact</artifactId>
  <version>1.0.0</version>
  <properties>
    <maven.compiler.source>17</maven.compiler.source>
  </properties>
  <dependencies>
    <dependency><groupId>org.slf4j</groupId><artifactId>slf4j-api</artifactId></dependency>
  </dependencies>
</project>`

func writeDescriptor(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pom.xml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestExecute(t *testing.T) {
	dir := writeDescriptor(t, descriptor)
	var logs bytes.Buffer
	runner := NewRunner(log.New(&logs))

	at := time.Date(2024, 12, 22, 22, 37, 14, 0, time.UTC)
	result, err := runner.Execute(context.Background(), Options{
		Path: dir,
		Now:  func() time.Time { return at },
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if result.Path != filepath.Join(dir, "pom.xml") {
		t.Errorf("Path = %q", result.Path)
	}
	if result.Stats.References != 1 {
		t.Errorf("References = %d, want 1", result.Stats.References)
	}
	if result.Version == nil || result.Version.Version != "17" || result.Version.Source != "property maven.compiler.source" {
		t.Errorf("Version = %+v", result.Version)
	}

	got, _ := report.Marshal(result.Report)
	want := `{"artifact":{"group":"com.example","name":"test-artifact","version":"1.0.0"},` +
		`"programming":{"language":"Java","version":"17"},"generatedAt":"2024-12-22T22:37:14Z",` +
		`"dependencies":[{"group":"org.slf4j","name":"slf4j-api","inclusion":"DEPENDENCY"}]}`
	if string(got) != want {
		t.Errorf("report =\n%s\nwant\n%s", got, want)
	}

	out := logs.String()
	for _, line := range []string{"Start collecting artifact information", "Finished collecting artifact information"} {
		if !strings.Contains(out, line) {
			t.Errorf("log missing %q:\n%s", line, out)
		}
	}
}

func TestExecuteErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		code aterrors.Code
	}{
		{"missing descriptor", func(t *testing.T) string { return t.TempDir() }, aterrors.ErrCodeDescriptorNotFound},
		{"malformed descriptor", func(t *testing.T) string { return writeDescriptor(t, "<project><groupId>") }, aterrors.ErrCodeInvalidDescriptor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			_, err := NewRunner(log.New(&logs)).Execute(context.Background(), Options{Path: tt.path(t)})
			if !aterrors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
			if strings.Contains(logs.String(), "Finished collecting") {
				t.Error("failed run logged completion")
			}
		})
	}
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(nil).Execute(ctx, Options{Path: writeDescriptor(t, descriptor)})
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
