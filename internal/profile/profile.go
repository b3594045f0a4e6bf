// Package profile loads the candidate profile text used by scorers.
package profile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrNoProfile = errors.New("no readable profile")

// Load reads a profile. Paths ending in .pdf are parsed page by page,
// anything else is read as plain text.
func Load(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("profile path is empty")
	}

	var (
		text string
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err = readPDF(path)
	} else {
		var data []byte
		data, err = os.ReadFile(path)
		text = string(data)
	}
	if err != nil {
		return "", fmt.Errorf("reading profile %q: %w", path, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("profile %q is empty", path)
	}

	return text, nil
}

func readPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}

		text, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	return b.String(), nil
}

// Resolve returns the path and text of the first candidate that loads.
// Missing files are skipped silently, other failures are reported when no
// candidate succeeds.
func Resolve(candidates ...string) (string, string, error) {
	var errs []error
	for _, c := range candidates {
		if strings.TrimSpace(c) == "" {
			continue
		}

		text, err := Load(c)
		if err == nil {
			return c, text, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return "", "", fmt.Errorf("%w: %w", ErrNoProfile, errors.Join(errs...))
	}
	return "", "", fmt.Errorf("%w (tried %s)", ErrNoProfile, strings.Join(candidates, ", "))
}
