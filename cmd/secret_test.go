package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"

	"github.com/spigell/job-router/internal/secrets"
)

func TestSecretSetAndDelete(t *testing.T) {
	keyring.MockInit()

	var out bytes.Buffer
	secretSetCmd.SetIn(strings.NewReader("s3cret\n"))
	secretSetCmd.SetOut(&out)
	if err := secretSetCmd.Flags().Set("stdin", "true"); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = secretSetCmd.Flags().Set("stdin", "false") })

	if err := secretSetCmd.RunE(secretSetCmd, []string{"hh"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !strings.Contains(out.String(), "stored job-router/hh") {
		t.Fatalf("unexpected output %q", out.String())
	}

	got, err := secrets.Load(secrets.Source{Name: "hh token", Keyring: "hh"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != "s3cret" {
		t.Fatalf("expected s3cret, got %q", got)
	}

	secretDeleteCmd.SetOut(&out)
	if err := secretDeleteCmd.RunE(secretDeleteCmd, []string{"hh"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := secrets.Load(secrets.Source{Keyring: "hh"}); err == nil {
		t.Fatal("expected the deleted secret to be gone")
	}
}

func TestSecretSetRejectsEmptyInput(t *testing.T) {
	keyring.MockInit()

	secretSetCmd.SetIn(strings.NewReader("\n"))
	if err := secretSetCmd.Flags().Set("stdin", "true"); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = secretSetCmd.Flags().Set("stdin", "false") })

	if err := secretSetCmd.RunE(secretSetCmd, []string{"hh"}); err == nil {
		t.Fatal("expected an empty secret to be rejected")
	}
}

func TestReadSecretFirstLine(t *testing.T) {
	t.Parallel()

	got, err := readSecret(strings.NewReader("token\r\nignored"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "token" {
		t.Fatalf("expected token, got %q", got)
	}

	got, err = readSecret(strings.NewReader("last"))
	if err != nil || got != "last" {
		t.Fatalf("expected last, got %q (%v)", got, err)
	}
}
