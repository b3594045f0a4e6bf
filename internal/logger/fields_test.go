package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/job-router/internal/job"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  scorer  ", Value: "  gemini  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "scorer" || fields[0].String != "gemini" {
		t.Fatalf("unexpected scorer field: %+v", fields[0])
	}

	if empty := StringFields(); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithFields(zap.New(core), zap.String("foo", "bar")).Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["foo"]; got != "bar" {
		t.Fatalf("expected field to be bar, got %q", got)
	}

	enriched := WithFields(nil, zap.String("baz", "qux"))
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}
	enriched.Info("another log")
}

func TestWithCommonFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithCommonFields(zap.New(core), "gemini", "model-x").Info("test log")

	ctx := observed.All()[0].ContextMap()
	if ctx[FieldScorer] != "gemini" {
		t.Fatalf("expected scorer field to be gemini, got %q", ctx[FieldScorer])
	}
	if ctx[FieldModel] != "model-x" {
		t.Fatalf("expected model field to be model-x, got %q", ctx[FieldModel])
	}

	if empty := CommonFields("", ""); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestJobFields(t *testing.T) {
	fields := JobFields(job.Job{Title: "Engineer", Company: "Acme", Source: "Lever"})

	if len(fields) != 3 {
		t.Fatalf("expected 3 fields without url, got %d", len(fields))
	}
	for _, f := range fields {
		if f.Key == FieldURL {
			t.Fatalf("blank url must be omitted")
		}
	}
}
