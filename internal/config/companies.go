package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spigell/job-router/internal/sources"
)

// Companies is the overlay file replacing the built-in ATS company lists.
type Companies struct {
	Greenhouse []sources.Company `yaml:"greenhouse"`
	Lever      []sources.Company `yaml:"lever"`
}

func LoadCompanies(path string) (*Companies, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading companies file: %w", err)
	}

	var companies Companies
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&companies); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing companies file %s: %w", path, err)
	}

	for i, c := range companies.Greenhouse {
		if c.Slug == "" {
			return nil, fmt.Errorf("greenhouse entry %d has no slug", i)
		}
	}
	for i, c := range companies.Lever {
		if c.Slug == "" {
			return nil, fmt.Errorf("lever entry %d has no slug", i)
		}
	}

	return &companies, nil
}

// ApplyCompanies replaces the configured lists with the non-empty lists of co.
func (c *Config) ApplyCompanies(co *Companies) {
	if co == nil {
		return
	}
	if len(co.Greenhouse) > 0 {
		c.Sources.Greenhouse.Companies = co.Greenhouse
	}
	if len(co.Lever) > 0 {
		c.Sources.Lever.Companies = co.Lever
	}
}
