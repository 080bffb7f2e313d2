package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/blockseg/pkg/errors"
	"github.com/matzehuels/blockseg/pkg/imageio"
	"github.com/matzehuels/blockseg/pkg/pipeline"
)

// outputSuffix keeps derived output names from clobbering the input image.
const outputSuffix = "_seg"

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input and adds outputSuffix.
// If output has a known extension (.png, .json, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input)) + outputSuffix
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	if ext != "" && (imageio.IsFormat(ext) || pipeline.ValidFormats[ext]) {
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	return output
}

// artifactPath returns the file written for format under base.
// Image formats use their canonical extension; the other formats get a
// qualifier so they can sit next to the image.
func artifactPath(base, format string) string {
	switch format {
	case pipeline.FormatJSON:
		return base + ".labels.json"
	case pipeline.FormatDOT:
		return base + ".regions.dot"
	case pipeline.FormatSVG:
		return base + ".regions.svg"
	case pipeline.FormatAnnotated:
		return base + ".grid.png"
	default:
		return base + "." + imageio.Format(format).Ext()
	}
}

// writeArtifacts writes every requested format and returns the written paths
// in format order. With a single format, an explicit output path is used as is.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) ([]string, error) {
	var paths []string
	base := basePath(output, input)

	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			return paths, fmt.Errorf("missing artifact for format %s", format)
		}

		path := artifactPath(base, format)
		if len(formats) == 1 && output != "" {
			path = output
		}
		if samePath(path, input) {
			return paths, errors.New(errors.ErrCodeInvalidPath, "refusing to overwrite input %s", input)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && aa == bb
}
