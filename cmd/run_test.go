package cmd

import (
	"errors"
	"testing"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/job-router/internal/config"
)

func TestHandleAction(t *testing.T) {
	proceed, err := handleAction(PromptYes, zap.NewNop(), nil)
	if err != nil || !proceed {
		t.Fatalf("expected to proceed, got %v %v", proceed, err)
	}

	proceed, err = handleAction(PromptNo, zap.NewNop(), nil)
	if !errors.Is(err, errExit) || proceed {
		t.Fatalf("expected errExit, got %v %v", proceed, err)
	}

	if _, err = handleAction("maybe", zap.NewNop(), nil); err == nil {
		t.Fatal("expected an error for an unknown action")
	}
}

func TestGetConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	core, logs := observer.New(zap.WarnLevel)

	viper.Set("sink.kind", config.SinkMemory)
	viper.Set("pipeline.per-category-limit", 3)

	cfg, err := getConfig(zap.New(core))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Pipeline.PerCategoryLimit != 3 {
		t.Fatalf("expected limit 3, got %d", cfg.Pipeline.PerCategoryLimit)
	}
	if cfg.AI.Provider != config.ProviderNone {
		t.Fatalf("expected provider default, got %q", cfg.AI.Provider)
	}
	if logs.FilterMessage("config").Len() == 0 {
		t.Fatal("expected the memory sink warning to be logged")
	}
}

func TestGetConfigInvalid(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("sink.kind", "ftp")
	viper.Set("sources.enabled", []string{"monster"})

	_, err := getConfig(zap.NewNop())
	if err == nil {
		t.Fatal("expected validation to fail")
	}
}
