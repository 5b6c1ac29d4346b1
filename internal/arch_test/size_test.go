package arch_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	maxFilesPerPackage = 10
	maxLinesPerFile    = 500
)

func TestPackageSize(t *testing.T) {
	t.Parallel()
	pkgs := packages(t)
	for _, pkg := range sortedNames(pkgs) {
		files := pkgs[pkg]
		if len(files) > maxFilesPerPackage {
			t.Errorf("internal/%s has %d source files, limit %d; split the package", pkg, len(files), maxFilesPerPackage)
		}
		for _, f := range files {
			if f.lines > maxLinesPerFile {
				t.Errorf("%s has %d lines, limit %d", f.path, f.lines, maxLinesPerFile)
			}
		}
	}
}

// TestTestFileSize applies the line limit to tests as well, including the
// command package.
func TestTestFileSize(t *testing.T) {
	t.Parallel()
	root := moduleRoot(t)
	for _, pattern := range []string{"internal/*/*_test.go", "cmd/*_test.go"} {
		matches, err := filepath.Glob(filepath.Join(root, pattern))
		if err != nil {
			t.Fatalf("Glob(%s): %v", pattern, err)
		}
		for _, path := range matches {
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			if n := strings.Count(string(data), "\n"); n > maxLinesPerFile {
				t.Errorf("%s has %d lines, limit %d", path, n, maxLinesPerFile)
			}
		}
	}
}
