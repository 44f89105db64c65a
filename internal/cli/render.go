package cli

import (
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pdjsoneditor/jsongraph/pkg/pipeline"
)

// stdinArg reads the document from standard input.
const stdinArg = "-"

// readDocument reads the input file, or stdin for "-".
func readDocument(input string) ([]byte, error) {
	if input == stdinArg {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", input, err)
	}
	return data, nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input. If output ends in a
// format extension (.svg, .dot, .json), that extension is stripped.
func basePath(output, input string) string {
	if output == "" {
		if input == stdinArg {
			return "graph"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPaths maps each format to its file. A single format written to an
// explicit output goes there unchanged; otherwise files are named
// <base>.layout.json, <base>.svg and <base>.dot.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		if f == pipeline.FormatJSON {
			paths[f] = base + ".layout.json"
		} else {
			paths[f] = base + "." + f
		}
	}
	return paths
}

// writeArtifacts writes each artifact to its path, or to stdout for "-", and
// returns the written paths in format order.
func writeArtifacts(artifacts map[string][]byte, paths map[string]string) ([]string, error) {
	var written []string
	for _, format := range slices.Sorted(maps.Keys(paths)) {
		path := paths[format]
		if err := writeOutput(path, artifacts[format]); err != nil {
			return written, err
		}
		if path != stdinArg {
			written = append(written, path)
		}
	}
	return written, nil
}

func writeOutput(path string, data []byte) error {
	if path == stdinArg {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}
