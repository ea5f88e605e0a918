package server

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/charmbracelet/log"
)

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New("127.0.0.1:0", http.NotFoundHandler(), log.New(io.Discard))
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run() = %v, want nil after cancel", err)
	}
}

func TestRunReportsListenError(t *testing.T) {
	s := New("256.0.0.1:bad", http.NotFoundHandler(), log.New(io.Discard))
	if err := s.Run(context.Background()); err == nil {
		t.Fatal("Run() should fail on an invalid address")
	}
}
