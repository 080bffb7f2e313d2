package cli

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/blockseg/pkg/observability"
)

func TestSpinnerBasic(t *testing.T) {
	s := newSpinner("Testing...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, "Testing with context...")
	s.Start()

	// Cancel the context
	cancel()

	// Give goroutine time to notice cancellation
	time.Sleep(100 * time.Millisecond)

	// Spinner should be cancelled
	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
}

func TestSpinnerWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := newSpinnerWithContext(ctx, "Testing with timeout...")
	s.Start()

	// Wait for timeout
	time.Sleep(100 * time.Millisecond)

	// Spinner should be cancelled due to timeout
	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context timeout")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("Testing idempotent stop...")
	s.Start()

	// Stop multiple times should not panic
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithSuccess(t *testing.T) {
	s := newSpinner("Testing success...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithSuccess("Done!")
}

func TestSpinnerStopWithError(t *testing.T) {
	s := newSpinner("Testing error...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithError("Failed!")
}

func TestSpinnerUpdate(t *testing.T) {
	s := newSpinner("short")
	s.Start()
	s.Update("a much longer message")
	s.Update("tiny")
	s.Stop()

	if got := s.Message(); got != "tiny" {
		t.Errorf("Message() = %q, want %q", got, "tiny")
	}
	if s.width != len("a much longer message") {
		t.Errorf("width = %d, want widest message", s.width)
	}
}

func TestTrackStages(t *testing.T) {
	defer observability.Reset()

	s := newSpinner("start")
	restore := trackStages(s)

	ctx := context.Background()
	observability.Pipeline().OnLoadStart(ctx, "/tmp/photos/cat.png")
	if got := s.Message(); got != "Loading cat.png..." {
		t.Errorf("after load start = %q", got)
	}
	observability.Pipeline().OnSegmentStart(ctx, 12)
	if got := s.Message(); got != "Segmenting 12 blocks..." {
		t.Errorf("after segment start = %q", got)
	}
	observability.Pipeline().OnRenderStart(ctx, []string{"png", "json"})
	if got := s.Message(); got != "Rendering png, json..." {
		t.Errorf("after render start = %q", got)
	}

	restore()
	observability.Pipeline().OnLoadStart(ctx, "other.png")
	if got := s.Message(); got != "Rendering png, json..." {
		t.Errorf("hooks still attached after restore: %q", got)
	}
}
