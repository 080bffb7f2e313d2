package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/blockseg/pkg/errors"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to png", "", []string{"png"}},
		{"single format", "json", []string{"json"}},
		{"multiple formats", "png,json,svg", []string{"png", "json", "svg"}},
		{"spaces trimmed", "png, dot ,annotated", []string{"png", "dot", "annotated"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
				}
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"derived from input", "", "photos/cat.png", "photos/cat_seg"},
		{"derived without extension", "", "cat", "cat_seg"},
		{"known image extension stripped", "out/result.png", "cat.png", "out/result"},
		{"known data extension stripped", "result.json", "cat.png", "result"},
		{"unknown extension kept", "result.v2", "cat.png", "result.v2"},
		{"bare base", "result", "cat.png", "result"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestArtifactPath(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"png", "cat_seg.png"},
		{"jpeg", "cat_seg.jpg"},
		{"json", "cat_seg.labels.json"},
		{"dot", "cat_seg.regions.dot"},
		{"svg", "cat_seg.regions.svg"},
		{"annotated", "cat_seg.grid.png"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if got := artifactPath("cat_seg", tt.format); got != tt.want {
				t.Errorf("artifactPath(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "cat.png")
	artifacts := map[string][]byte{
		"png":  []byte("png-bytes"),
		"json": []byte(`{"rows":1}`),
	}

	t.Run("derived paths", func(t *testing.T) {
		paths, err := writeArtifacts(artifacts, []string{"png", "json"}, input, "")
		if err != nil {
			t.Fatalf("writeArtifacts: %v", err)
		}
		want := []string{
			filepath.Join(dir, "cat_seg.png"),
			filepath.Join(dir, "cat_seg.labels.json"),
		}
		if len(paths) != len(want) {
			t.Fatalf("paths = %v, want %v", paths, want)
		}
		for i, p := range paths {
			if p != want[i] {
				t.Errorf("paths[%d] = %q, want %q", i, p, want[i])
			}
		}
		data, err := os.ReadFile(want[1])
		if err != nil || string(data) != `{"rows":1}` {
			t.Errorf("labels file = %q, %v", data, err)
		}
	})

	t.Run("single format explicit output", func(t *testing.T) {
		out := filepath.Join(dir, "labels.out")
		paths, err := writeArtifacts(artifacts, []string{"json"}, input, out)
		if err != nil {
			t.Fatalf("writeArtifacts: %v", err)
		}
		if len(paths) != 1 || paths[0] != out {
			t.Errorf("paths = %v, want [%s]", paths, out)
		}
	})

	t.Run("missing artifact", func(t *testing.T) {
		if _, err := writeArtifacts(artifacts, []string{"svg"}, input, ""); err == nil {
			t.Error("expected error for missing artifact")
		}
	})

	t.Run("refuses to overwrite input", func(t *testing.T) {
		_, err := writeArtifacts(artifacts, []string{"png"}, input, input)
		if !errors.Is(err, errors.ErrCodeInvalidPath) {
			t.Errorf("expected INVALID_PATH, got %v", err)
		}
	})
}
