package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/job-router/internal/job"
	"github.com/spigell/job-router/internal/routing"
	"github.com/spigell/job-router/internal/signals"
)

func TestClassifySingle(t *testing.T) {
	t.Parallel()

	in := strings.NewReader(`{"title":"Go Developer","company":"Acme","location":"Remote, India","url":"https://example.com/1"}`)
	var out bytes.Buffer

	if err := classify(in, &out, "Custom", signals.New(signals.Lists{}), zap.NewNop()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got classification
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not a classification: %v\n%s", err, out.String())
	}

	if got.Category != routing.IndianRemote {
		t.Fatalf("expected %s, got %s via %s", routing.IndianRemote, got.Category, got.Rule)
	}
	if !got.Signals.IsIndiaLocation || got.Signals.WorkMode != signals.Remote {
		t.Fatalf("unexpected signals: %+v", got.Signals)
	}
	if got.Job.Source != "Custom" {
		t.Fatalf("expected source label to be applied, got %q", got.Job.Source)
	}
}

func TestClassifyListSkipsMalformed(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	in := strings.NewReader(`["not a posting", {"title":"SRE","location":"Berlin"}]`)
	var out bytes.Buffer

	if err := classify(in, &out, "", signals.New(signals.Lists{}), zap.New(core)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []classification
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not a list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one classification, got %d", len(got))
	}
	if got[0].Job.Company != job.DefaultCompany {
		t.Fatalf("expected default company, got %q", got[0].Job.Company)
	}
	if logs.FilterMessage("skipping posting").Len() != 1 {
		t.Fatalf("expected the malformed posting to be logged")
	}
}

func TestClassifyErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "invalid json", input: `{`},
		{name: "scalar", input: `42`, want: job.ErrMalformedRecord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			err := classify(strings.NewReader(tt.input), &out, "", signals.New(signals.Lists{}), zap.NewNop())
			if err == nil {
				t.Fatalf("expected an error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if out.Len() != 0 {
				t.Fatalf("nothing should be written, got %q", out.String())
			}
		})
	}
}
