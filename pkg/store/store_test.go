package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/matzehuels/blockseg/pkg/errors"
	"github.com/matzehuels/blockseg/pkg/pipeline"
	"github.com/matzehuels/blockseg/pkg/segment"
)

func sampleRun(created time.Time) *Run {
	opts := pipeline.Options{Input: "cat.png", BlockHeight: 50, BlockWidth: 50, Formats: []string{"png", "json"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		panic(err)
	}
	run := NewRun(opts, &pipeline.Result{
		ImageHash: "img",
		LabelHash: "lbl",
		Segment:   segment.Stats{Blocks: 4, Seeds: 1, Assigned: 3, Regions: 1},
		Stats: pipeline.Stats{
			Width: 100, Height: 100, Rows: 2, Cols: 2,
			LoadTime: 5 * time.Millisecond, SegmentTime: 10 * time.Millisecond,
		},
	})
	run.CreatedAt = created
	return run
}

func TestNewRun(t *testing.T) {
	run := sampleRun(time.Now())

	if err := errors.ValidateRunID(run.ID); err != nil {
		t.Errorf("generated ID %q is not a valid run id: %v", run.ID, err)
	}
	if run.Source != "cat.png" {
		t.Errorf("Source = %q", run.Source)
	}
	if run.Params.BlockHeight != 50 || run.Params.Threshold != 0.9 || !run.Params.Materialize {
		t.Errorf("Params = %+v", run.Params)
	}
	if run.Rows != 2 || run.Cols != 2 || run.Segment.Regions != 1 {
		t.Errorf("geometry/stats = %d %d %+v", run.Rows, run.Cols, run.Segment)
	}
	if run.DurationMS != 15 {
		t.Errorf("DurationMS = %d, want 15", run.DurationMS)
	}
	if len(run.Formats) != 2 {
		t.Errorf("Formats = %v", run.Formats)
	}

	if other := sampleRun(time.Now()); other.ID == run.ID {
		t.Error("run IDs should be unique")
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	older := sampleRun(base)
	newer := sampleRun(base.Add(time.Hour))
	for _, r := range []*Run{older, newer} {
		if err := s.Save(ctx, r); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	t.Run("get", func(t *testing.T) {
		got, err := s.Get(ctx, older.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.ImageHash != "img" || !got.CreatedAt.Equal(base) || got.Segment != older.Segment {
			t.Errorf("Get = %+v", got)
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := s.Get(ctx, "0123abcd")
		if !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("expected NOT_FOUND, got %v", err)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		_, err := s.Get(ctx, "../secret")
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("expected INVALID_INPUT, got %v", err)
		}
	})

	t.Run("list newest first", func(t *testing.T) {
		runs, err := s.List(ctx, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(runs) != 2 || runs[0].ID != newer.ID || runs[1].ID != older.ID {
			t.Errorf("List order wrong: %v", runs)
		}
	})

	t.Run("list limit", func(t *testing.T) {
		runs, err := s.List(ctx, 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(runs) != 1 || runs[0].ID != newer.ID {
			t.Errorf("List(1) = %v", runs)
		}
	})
}

func TestFileStoreListSkipsJunk(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dir+"/deadbeef.json", []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dir+"/notes.txt", []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}

	runs, err := s.List(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("BLOCKSEG_TEST_MONGO")
	if uri == "" {
		t.Skip("BLOCKSEG_TEST_MONGO not set")
	}
	ctx := context.Background()

	s, err := NewMongoStore(ctx, MongoConfig{URI: uri, Database: "blockseg_test"})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	run := sampleRun(time.Now().UTC().Truncate(time.Millisecond))
	if err := s.Save(ctx, run); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != run.ID || got.Params != run.Params {
		t.Errorf("Get = %+v, want %+v", got, run)
	}
	if _, err := s.Get(ctx, "0000ffff"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
	runs, err := s.List(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) == 0 {
		t.Error("List returned nothing after Save")
	}
}

func TestMongoStoreUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err := NewMongoStore(ctx, MongoConfig{URI: "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200"})
	if err == nil {
		t.Fatal("expected connection error")
	}
}
