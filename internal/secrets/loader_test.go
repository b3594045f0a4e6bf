package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestLoadPrecedence(t *testing.T) {
	keyring.MockInit()

	dir := t.TempDir()
	file := filepath.Join(dir, "key")
	if err := os.WriteFile(file, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := SetKeyring("gemini", "from-keyring"); err != nil {
		t.Fatalf("set keyring: %v", err)
	}

	tests := []struct {
		name    string
		src     Source
		expect  string
		wantErr bool
	}{
		{name: "file wins", src: Source{File: file, Value: "inline", Keyring: "gemini"}, expect: "from-file"},
		{name: "inline before keyring", src: Source{Value: " inline ", Keyring: "gemini"}, expect: "inline"},
		{name: "keyring", src: Source{Keyring: "gemini"}, expect: "from-keyring"},
		{name: "empty file", src: Source{File: empty, Value: "inline"}, wantErr: true},
		{name: "missing file", src: Source{File: filepath.Join(dir, "nope")}, wantErr: true},
		{name: "missing keyring entry", src: Source{Keyring: "unknown"}, wantErr: true},
		{name: "nothing", src: Source{Name: "gemini api key"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestLoadNotConfigured(t *testing.T) {
	_, err := Load(Source{Name: "token"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	got, err := LoadOptional(Source{Name: "token"})
	if err != nil || got != "" {
		t.Fatalf("expected empty optional secret, got %q, %v", got, err)
	}
}

func TestKeyringRoundTrip(t *testing.T) {
	keyring.MockInit()

	if err := SetKeyring("", "x"); err == nil {
		t.Fatalf("expected error for empty account")
	}
	if err := SetKeyring("hh", "token"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := DeleteKeyring("hh"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := Load(Source{Keyring: "hh"}); err == nil {
		t.Fatalf("expected error after delete")
	}
}
