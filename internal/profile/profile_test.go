package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadText(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	got, err := Load(writeFile(t, dir, "resume.txt", "\n  Go engineer, 8 years  \n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != "Go engineer, 8 years" {
		t.Fatalf("unexpected text %q", got)
	}

	if _, err := Load(writeFile(t, dir, "blank.txt", " \n")); err == nil {
		t.Fatalf("expected error for blank profile")
	}
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadBrokenPDF(t *testing.T) {
	t.Parallel()

	if _, err := Load(writeFile(t, t.TempDir(), "resume.PDF", "not a pdf")); err == nil {
		t.Fatalf("expected error for broken pdf")
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	txt := writeFile(t, dir, "resume.txt", "profile")
	path, text, err := Resolve(filepath.Join(dir, "resume.pdf"), "", txt)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if path != txt || text != "profile" {
		t.Fatalf("unexpected result %q %q", path, text)
	}
}

func TestResolveNothing(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	_, _, err := Resolve(filepath.Join(dir, "a.pdf"), filepath.Join(dir, "b.txt"))
	if !errors.Is(err, ErrNoProfile) {
		t.Fatalf("expected ErrNoProfile, got %v", err)
	}

	broken := writeFile(t, dir, "broken.pdf", "garbage")
	_, _, err = Resolve(broken)
	if !errors.Is(err, ErrNoProfile) {
		t.Fatalf("expected ErrNoProfile, got %v", err)
	}
}
