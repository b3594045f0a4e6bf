package logger

import (
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-router/internal/job"
)

const (
	FieldScorer   = "scorer"
	FieldModel    = "model"
	FieldTitle    = "job_title"
	FieldCompany  = "job_company"
	FieldURL      = "job_url"
	FieldSource   = "job_source"
	FieldCategory = "category"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts key/value pairs into zap fields, skipping blank keys
// and values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	logger = OrNop(logger)

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CommonFields describes the scorer backend and model.
func CommonFields(scorer, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldScorer, Value: scorer},
		StringField{Key: FieldModel, Value: model},
	)
}

func WithCommonFields(logger *zap.Logger, scorer, model string) *zap.Logger {
	return WithFields(logger, CommonFields(scorer, model)...)
}

// JobFields identifies a posting in log entries. Blank URLs are omitted.
func JobFields(j job.Job) []zap.Field {
	return StringFields(
		StringField{Key: FieldTitle, Value: j.Title},
		StringField{Key: FieldCompany, Value: j.Company},
		StringField{Key: FieldURL, Value: j.URL},
		StringField{Key: FieldSource, Value: j.Source},
	)
}
