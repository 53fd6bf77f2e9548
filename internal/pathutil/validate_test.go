package pathutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestValidatePath(t *testing.T) {
	allowedDir := t.TempDir()
	otherDir := t.TempDir()
	subDir := filepath.Join(allowedDir, "runs")
	if err := os.MkdirAll(subDir, 0700); err != nil {
		t.Fatalf("failed to create subdir: %v", err)
	}

	tests := []struct {
		name        string
		path        string
		allowedDirs []string
		errContains string
	}{
		{"inside allowed dir", filepath.Join(allowedDir, "syn.arrow"), []string{allowedDir}, ""},
		{"in subdirectory", filepath.Join(subDir, "syn.arrow"), []string{allowedDir}, ""},
		{"the allowed dir itself", allowedDir, []string{allowedDir}, ""},
		{"missing parents", filepath.Join(allowedDir, "a", "b", "syn.jsonl"), []string{allowedDir}, ""},
		{"dot-dot traversal", filepath.Join(allowedDir, "..", "etc", "passwd"), []string{allowedDir}, "outside allowed directories"},
		{"embedded dot-dot", filepath.Join(allowedDir, "runs", "..", "..", "x"), []string{allowedDir}, "outside allowed directories"},
		{"other directory", filepath.Join(otherDir, "syn.arrow"), []string{allowedDir}, "outside allowed directories"},
		{"second allowed dir", filepath.Join(otherDir, "syn.arrow"), []string{allowedDir, otherDir}, ""},
		{"null byte", filepath.Join(allowedDir, "syn\x00.arrow"), []string{allowedDir}, "null byte"},
		{"empty path", "", []string{allowedDir}, "empty"},
		{"no allowed dirs", filepath.Join(allowedDir, "syn.arrow"), nil, "no allowed directories"},
		{"prefix is not containment", allowedDir + "-evil/syn.arrow", []string{allowedDir}, "outside allowed directories"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path, tt.allowedDirs)
			if tt.errContains == "" {
				if err != nil {
					t.Errorf("ValidatePath() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("ValidatePath() error = %v, want error containing %q", err, tt.errContains)
			}
		})
	}
}

func TestValidatePath_Symlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink test not supported on Windows")
	}

	allowedDir := t.TempDir()
	outsideDir := t.TempDir()
	realDir := filepath.Join(allowedDir, "real")
	if err := os.MkdirAll(realDir, 0700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.Symlink(outsideDir, filepath.Join(allowedDir, "escape")); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	if err := os.Symlink(realDir, filepath.Join(allowedDir, "link")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	if err := ValidatePath(filepath.Join(allowedDir, "escape", "syn.arrow"), []string{allowedDir}); err == nil {
		t.Error("ValidatePath() accepted a symlink pointing outside the allowed dir")
	}
	if err := ValidatePath(filepath.Join(allowedDir, "link", "syn.arrow"), []string{allowedDir}); err != nil {
		t.Errorf("ValidatePath() rejected a symlink staying inside: %v", err)
	}
}

func TestExportPath(t *testing.T) {
	dataDir := t.TempDir()
	exports := filepath.Join(dataDir, ExportsDir)

	tests := []struct {
		name    string
		dataDir string
		file    string
		want    string
		wantErr bool
	}{
		{"bare name", dataDir, "syn.arrow", filepath.Join(exports, "syn.arrow"), false},
		{"nested name", dataDir, "run1/syn.jsonl", filepath.Join(exports, "run1", "syn.jsonl"), false},
		{"escape", dataDir, "../brainsim.db", "", true},
		{"absolute", dataDir, "/tmp/syn.arrow", "", true},
		{"directory itself", dataDir, ".", "", true},
		{"empty name", dataDir, "", "", true},
		{"no data dir", "", "syn.arrow", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExportPath(tt.dataDir, tt.file)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExportPath(%q) error = %v, wantErr %v", tt.file, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExportPath(%q) = %q, want %q", tt.file, got, tt.want)
			}
		})
	}
}

func TestRedactPath(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"/home/user/.brainsim/brainsim.db", ".../.brainsim/brainsim.db"},
		{"/a/b/c/d/e.txt", ".../d/e.txt"},
		{"/file.txt", "file.txt"},
		{"dir/file.txt", ".../dir/file.txt"},
		{"file.txt", "file.txt"},
		{"/home/user/.brainsim/", ".../user/.brainsim"},
	}
	for _, tt := range tests {
		if got := RedactPath(tt.input); got != tt.want {
			t.Errorf("RedactPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
