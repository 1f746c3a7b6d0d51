// Package testutil provides test helper utilities for batchmaker tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// TempProject creates a temporary directory with the given files and returns its path.
// Files is a map of relative path -> content. Directories are created as needed.
// The directory is automatically cleaned up when the test finishes.
func TempProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	for relPath, content := range files {
		absPath := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			t.Fatalf("creating directory for %s: %v", relPath, err)
		}
		if err := os.WriteFile(absPath, []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", relPath, err)
		}
	}

	return dir
}

// scanFiles returns n empty placeholder volumes under dir.
func scanFiles(dir string, n int) map[string]string {
	files := make(map[string]string, n)
	for i := 1; i <= n; i++ {
		files[fmt.Sprintf("%s/vol_%03d.nii", dir, i)] = ""
	}
	return files
}

// YAMLProject returns a two-session YAML design with parametric modulation
// in the first session and placeholder scan files for scans_glob.
func YAMLProject() map[string]string {
	files := map[string]string{
		"design.yaml": `name: sub01_glm
dir: out/glm
timing:
  units: secs
  rt: 2.5
sessions:
  - scans_glob: run1/*.nii
    multi_reg: [run1/rp.txt]
    conditions:
      - name: faces
        onsets: [0, 20, 40]
        durations: [5]
        pmod:
          - name: rt
            param: [0.41, 0.52, 0.47]
      - name: houses
        onsets: [10, 30, 50]
        durations: [5, 5, 5]
  - scans: [run2/vol_001.nii, run2/vol_002.nii]
    orth: false
    conditions:
      - name: faces
        onsets: [5]
        durations: [5]
cvi: FAST
`,
		"run1/rp.txt": "0 0 0 0 0 0\n",
	}
	for k, v := range scanFiles("run1", 4) {
		files[k] = v
	}
	for k, v := range scanFiles("run2", 2) {
		files[k] = v
	}
	return files
}

// HCLProject returns a one-session HCL design that uses range() for onsets.
func HCLProject() map[string]string {
	files := map[string]string{
		"design.hcl": `name = "sub02_glm"
dir  = "/data/sub02/glm"
hpf  = 96

timing {
  rt = 1.5
}

bases {
  derivs = [1, 0]
}

session {
  scans_glob = "func/*.nii"
  tmod       = 1

  condition "task" {
    onsets    = range(0, 60, 20)
    durations = [10, 10, 10]

    pmod "load" {
      param = [1, 2, 3]
      poly  = 2
    }
  }

  condition "rest" {
    onsets    = [10, 30]
    durations = [10, 10]
  }
}
`,
	}
	for k, v := range scanFiles("func", 3) {
		files[k] = v
	}
	return files
}

// EmptyProject returns an empty directory with no files.
func EmptyProject() map[string]string {
	return map[string]string{}
}
