package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/contracts-ocr/internal/common"
	"github.com/joseph-ayodele/contracts-ocr/internal/entity"
	"github.com/joseph-ayodele/contracts-ocr/internal/numeral"
	"github.com/joseph-ayodele/contracts-ocr/internal/ocr"
)

// RuleExtractor derives a FieldRecord from recognized text with a RuleSet.
// Fields are matched independently; a miss yields the sentinel, never an error.
type RuleExtractor struct {
	rules  RuleSet
	schema *jsonschema.Schema
	logger *slog.Logger
}

func NewRuleExtractor(rules RuleSet, logger *slog.Logger) (*RuleExtractor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	schema, err := CompileSchema(BuildRecordJSONSchema())
	if err != nil {
		return nil, err
	}
	return &RuleExtractor{rules: rules, schema: schema, logger: logger}, nil
}

// Match exposes the per-field result, for diagnostics.
func (x *RuleExtractor) Match(field Field, text string) Result {
	return x.rules.Match(field, ocr.Normalize(text))
}

// ExtractFields normalizes text before matching, so callers may pass raw
// recognizer output with fullwidth digits and punctuation.
func (x *RuleExtractor) ExtractFields(ctx context.Context, filename, text string) (entity.FieldRecord, error) {
	logger := common.LoggerFrom(ctx, x.logger)
	text = ocr.Normalize(text)

	results := make(map[Field]Result, 6)
	for _, f := range []Field{FieldStartPeriod, FieldEmail, FieldUnitCount, FieldUnitPrice, FieldTotal, FieldCommission} {
		r := x.rules.Match(f, text)
		results[f] = r
		if !r.Found() {
			logger.Debug("field unrecognized", "field", string(f))
			continue
		}
		if x.isNumeral(r.Rule) {
			if err := numeral.Validate(r.Raw); err != nil {
				logger.Warn("numeral not in canonical order", "field", string(f), "raw", r.Raw, "value", r.Value.N, "error", err)
			}
		}
	}

	rec := entity.FieldRecord{
		FileName:    filename,
		StartPeriod: results[FieldStartPeriod].Text,
		Email:       results[FieldEmail].Text,
		UnitCount:   results[FieldUnitCount].Value,
		UnitPrice:   results[FieldUnitPrice].Value,
		Total:       results[FieldTotal].Value,
		Commission:  results[FieldCommission].Value,
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return entity.FieldRecord{}, fmt.Errorf("marshal record: %w", err)
	}
	if err := ValidateJSON(x.schema, b); err != nil {
		return entity.FieldRecord{}, err
	}

	found := 0
	for _, r := range results {
		if r.Found() {
			found++
		}
	}
	logger.Debug("fields extracted", "found", found, "of", len(results))
	return rec, nil
}

func (x *RuleExtractor) isNumeral(name string) bool {
	for _, r := range x.rules {
		if r.Name == name {
			return r.Numeral
		}
	}
	return false
}
