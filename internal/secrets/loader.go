package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups the application's secrets in the OS keychain.
const KeyringService = "job-router"

var ErrNotConfigured = errors.New("secret is not configured")

// Source describes how to load a secret value.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string `mapstructure:"-"`
	// Value is an inline secret value provided via configuration or flags.
	Value string `mapstructure:"value" json:"-"`
	// File points to a file containing the secret value. When set it takes
	// precedence over Value.
	File string `mapstructure:"file"`
	// Keyring is an account name under KeyringService. It is consulted last.
	Keyring string `mapstructure:"keyring"`
}

// Configured reports whether any of the three locations is set.
func (s Source) Configured() bool {
	return strings.TrimSpace(s.File) != "" || strings.TrimSpace(s.Value) != "" || strings.TrimSpace(s.Keyring) != ""
}

// Load returns the resolved secret value from the provided source. File wins
// over Value, Value wins over Keyring. The returned secret is always trimmed.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	if secret := strings.TrimSpace(src.Value); secret != "" {
		return secret, nil
	}

	if account := strings.TrimSpace(src.Keyring); account != "" {
		secret, err := keyring.Get(KeyringService, account)
		if err != nil {
			return "", fmt.Errorf("reading %s from keyring account %q: %w", name, account, err)
		}
		if secret = strings.TrimSpace(secret); secret == "" {
			return "", fmt.Errorf("%s keyring entry %q is empty", name, account)
		}
		return secret, nil
	}

	return "", fmt.Errorf("%s: %w", name, ErrNotConfigured)
}

// LoadOptional is Load that returns an empty value when nothing is configured.
func LoadOptional(src Source) (string, error) {
	if !src.Configured() {
		return "", nil
	}
	return Load(src)
}

func SetKeyring(account, value string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	return keyring.Set(KeyringService, account, value)
}

func DeleteKeyring(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}
