package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/doodl/internal/domain"
	"github.com/MrSnakeDoc/doodl/internal/logger"
)

type stubSource struct {
	block chan struct{}
}

func (s *stubSource) Extract(_ context.Context, rawURL string) domain.Metadata {
	if s.block != nil {
		<-s.block
	}
	return domain.Metadata{Title: "title of " + rawURL, Fetched: true}
}

type recordingWriter struct {
	mu      sync.Mutex
	applied map[string]domain.Metadata
	revs    map[string]int64
	done    chan string
}

func newRecordingWriter() *recordingWriter {
	return &recordingWriter{
		applied: make(map[string]domain.Metadata),
		revs:    make(map[string]int64),
		done:    make(chan string, 16),
	}
}

func (w *recordingWriter) ApplyMetadata(_ context.Context, _ domain.Scope, id string, rev int64, md domain.Metadata) (bool, error) {
	w.mu.Lock()
	defer func() {
		w.mu.Unlock()
		w.done <- id
	}()
	if w.revs[id] != rev {
		return false, nil
	}
	w.applied[id] = md
	w.revs[id]++
	return true, nil
}

func waitApplied(t *testing.T, w *recordingWriter, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-w.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for job %d of %d", i+1, n)
		}
	}
}

func TestEnricherAppliesMetadata(t *testing.T) {
	log := logger.New("error", false)
	writer := newRecordingWriter()
	e := NewEnricher(&stubSource{}, writer, log, 2, 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := e.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer e.Stop(context.Background())

	scope := domain.ScopeFor("u1")
	for _, id := range []string{"a", "b", "c"} {
		if !e.Schedule(EnrichJob{Scope: scope, BookmarkID: id, URL: "https://" + id + ".example"}) {
			t.Fatalf("Schedule(%s) rejected", id)
		}
	}
	waitApplied(t, writer, 3)

	writer.mu.Lock()
	defer writer.mu.Unlock()
	if got := writer.applied["b"].Title; got != "title of https://b.example" {
		t.Errorf("applied title = %q", got)
	}
}

func TestEnricherStaleRevisionIsDiscarded(t *testing.T) {
	log := logger.New("error", false)
	writer := newRecordingWriter()
	writer.revs["a"] = 1 // edited by the user after scheduling
	e := NewEnricher(&stubSource{}, writer, log, 1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := e.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer e.Stop(context.Background())

	e.Schedule(EnrichJob{Scope: domain.ScopeFor("u1"), BookmarkID: "a", URL: "https://a.example", Rev: 0})
	waitApplied(t, writer, 1)

	writer.mu.Lock()
	defer writer.mu.Unlock()
	if _, ok := writer.applied["a"]; ok {
		t.Error("stale enrichment overwrote a user edit")
	}
}

func TestEnricherScheduleNeverBlocks(t *testing.T) {
	log := logger.New("error", false)
	source := &stubSource{block: make(chan struct{})}
	writer := newRecordingWriter()
	e := NewEnricher(source, writer, log, 1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := e.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	scope := domain.ScopeFor("u1")
	accepted := 0
	start := time.Now()
	for i := 0; i < 10; i++ {
		if e.Schedule(EnrichJob{Scope: scope, BookmarkID: "x", URL: "https://x.example"}) {
			accepted++
		}
	}
	if time.Since(start) > time.Second {
		t.Error("Schedule blocked on a full queue")
	}
	// One job in the worker, one in the queue.
	if accepted > 2 {
		t.Errorf("accepted = %d, want at most 2", accepted)
	}

	close(source.block)
	e.Stop(context.Background())

	if e.Schedule(EnrichJob{Scope: scope, BookmarkID: "y"}) {
		t.Error("Schedule accepted a job after Stop")
	}
}

func TestEnricherStopDrainsQueue(t *testing.T) {
	source := &stubSource{block: make(chan struct{})}
	writer := newRecordingWriter()
	e := NewEnricher(source, writer, logger.NewNop(), 1, 4)

	ctx, cancel := context.WithCancel(context.Background())
	if err := e.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	scope := domain.ScopeFor("u1")
	ids := []string{"a", "b", "c", "d"}
	for _, id := range ids {
		if !e.Schedule(EnrichJob{Scope: scope, BookmarkID: id, URL: "https://" + id + ".example"}) {
			t.Fatalf("Schedule(%s) rejected", id)
		}
	}

	// A shutdown signal cancels the root context before Stop runs.
	cancel()

	stopped := make(chan struct{})
	go func() {
		e.Stop(context.Background())
		close(stopped)
	}()
	close(source.block)

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}

	writer.mu.Lock()
	defer writer.mu.Unlock()
	for _, id := range ids {
		if _, ok := writer.applied[id]; !ok {
			t.Errorf("job %s was abandoned at Stop", id)
		}
	}
}

func TestEnricherStopHonoursDeadline(t *testing.T) {
	source := &stubSource{block: make(chan struct{})}
	t.Cleanup(func() { close(source.block) })
	e := NewEnricher(source, newRecordingWriter(), logger.NewNop(), 1, 1)

	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	e.Schedule(EnrichJob{Scope: domain.ScopeFor("u1"), BookmarkID: "slow", URL: "https://slow.example"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	e.Stop(ctx)
	if time.Since(start) > time.Second {
		t.Error("Stop ignored its deadline")
	}
}
