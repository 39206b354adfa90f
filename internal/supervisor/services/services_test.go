// Encore - Playlist Continuation and Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

package services

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/encore/internal/recommend"
)

type mockHTTPServer struct {
	listenErr     error
	shutdownErr   error
	shutdownCount atomic.Int32
	started       chan struct{}
	stopCh        chan struct{}
	stopOnce      sync.Once
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{
		started: make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
	}
}

func (m *mockHTTPServer) ListenAndServe() error {
	select {
	case m.started <- struct{}{}:
	default:
	}
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.stopCh
	return http.ErrServerClosed
}

func (m *mockHTTPServer) Shutdown(context.Context) error {
	m.shutdownCount.Add(1)
	m.stopOnce.Do(func() { close(m.stopCh) })
	return m.shutdownErr
}

func TestHTTPServerService(t *testing.T) {
	t.Parallel()

	t.Run("graceful shutdown on cancel", func(t *testing.T) {
		t.Parallel()
		srv := newMockHTTPServer()
		svc := NewHTTPServerService(srv, time.Second, zerolog.Nop())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Serve(ctx) }()

		<-srv.started
		cancel()

		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Serve = %v, want context.Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not return")
		}
		if got := srv.shutdownCount.Load(); got != 1 {
			t.Errorf("Shutdown called %d times, want 1", got)
		}
	})

	t.Run("listen failure", func(t *testing.T) {
		t.Parallel()
		srv := newMockHTTPServer()
		srv.listenErr = errors.New("address in use")
		svc := NewHTTPServerService(srv, time.Second, zerolog.Nop())

		err := svc.Serve(context.Background())
		if err == nil || !strings.Contains(err.Error(), "address in use") {
			t.Errorf("Serve = %v", err)
		}
	})

	t.Run("shutdown failure", func(t *testing.T) {
		t.Parallel()
		srv := newMockHTTPServer()
		srv.shutdownErr = errors.New("connections still open")
		svc := NewHTTPServerService(srv, time.Second, zerolog.Nop())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := svc.Serve(ctx)
		if err == nil || !strings.Contains(err.Error(), "shutdown failed") {
			t.Errorf("Serve = %v", err)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		svc := NewHTTPServerService(newMockHTTPServer(), 0, zerolog.Nop())
		if svc.shutdownTimeout != defaultShutdownTimeout || svc.String() != "http-server" {
			t.Errorf("timeout %v, name %q", svc.shutdownTimeout, svc.String())
		}
	})
}

type countingSource struct {
	mu    sync.Mutex
	stats recommend.Stats
}

func (c *countingSource) Stats() recommend.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Requests += 3
	c.stats.Fallbacks++
	return c.stats
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStatsService(t *testing.T) {
	t.Parallel()

	var out syncBuffer
	svc := NewStatsService(&countingSource{stats: recommend.Stats{Tracks: 42}}, 10*time.Millisecond, zerolog.New(&out))

	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()
	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Serve = %v", err)
	}

	logs := out.String()
	if !strings.Contains(logs, `"tracks":42`) {
		t.Errorf("start line missing track count:\n%s", logs)
	}
	reports := strings.Count(logs, `"message":"Engine stats"`)
	if reports < 2 {
		t.Errorf("got %d reports, want at least 2:\n%s", reports, logs)
	}
	if !strings.Contains(logs, `"requests_delta":3`) {
		t.Errorf("missing per-interval delta:\n%s", logs)
	}

	if d := NewStatsService(&countingSource{}, 0, zerolog.Nop()); d.interval != defaultStatsInterval {
		t.Errorf("default interval = %v", d.interval)
	}
}
