// Package discover locates test-definition files under the fixtures root and
// derives the artifact path paired with each input.
package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ArtifactSuffix replaces the test-definition extension when deriving the
// output path for an input file.
const ArtifactSuffix = ".ast.json"

// Pair is one input file together with its derived artifact path.
type Pair struct {
	Input  string
	Output string
}

// OutputPath derives the artifact path for an input file by swapping its
// extension for ArtifactSuffix. Pure; performs no filesystem access.
func OutputPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ArtifactSuffix
}

// Discover walks root recursively and returns a Pair for every file with the
// given extension, sorted lexicographically by input path so repeated runs
// over an unchanged tree process files in identical order. Hidden directories
// are skipped. An empty tree yields an empty slice and no error; a missing or
// non-directory root is an error.
func Discover(root, ext string) ([]Pair, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("fixtures root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("fixtures root %s is not a directory", root)
	}

	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	var pairs []Pair
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		// Exact match: extensions are case-sensitive, so X.TD is not
		// a test-definition file.
		if filepath.Ext(path) != ext {
			return nil
		}
		pairs = append(pairs, Pair{Input: path, Output: OutputPath(path)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan fixtures root: %w", err)
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Input < pairs[j].Input })
	return pairs, nil
}
