package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aterrors "github.com/syslex/artitracker/pkg/errors"
)

func TestNewRequiresURI(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.True(t, aterrors.Is(err, aterrors.ErrCodeInvalidInput), "got %v", err)
}

func TestDocumentRecord(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600))
	doc := document{
		ID:         "3f1c2a4e-8d7b-4c1e-9a0f-2b6d5e4c3a21",
		Coordinate: "com.example:app",
		StoredAt:   at,
		Report:     `{"artifact":{"group":"com.example","name":"app"},"dependencies":[{"name":"x","inclusion":"PLUGIN"}]}`,
	}

	rec, err := doc.record()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, rec.StoredAt.Location())
	assert.Equal(t, "app", *rec.Report.Artifact.Name)

	doc.Report = `{"dependencies":[{"inclusion":"BOGUS"}]}`
	_, err = doc.record()
	assert.True(t, aterrors.Is(err, aterrors.ErrCodeStorage), "got %v", err)
}
