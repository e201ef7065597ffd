package extract

import "github.com/joseph-ayodele/contracts-ocr/constants"

// BuildRecordJSONSchema returns a JSON-Schema (draft 2020-12 subset) for one exported row.
// Every column is required; numeric columns hold a non-negative integer or the sentinel.
func BuildRecordJSONSchema() map[string]any {
	sentinel := map[string]any{"const": constants.Unrecognized}
	props := map[string]any{
		"filename": map[string]any{"type": "string", "minLength": 1},
		"start_period": map[string]any{"anyOf": []any{
			map[string]any{"type": "string", "pattern": `^\d{3}年\d{1,2}月$`},
			sentinel,
		}},
		"email":             map[string]any{"type": "string", "minLength": 1},
		"unit_count":        countProp(sentinel),
		"unit_price":        countProp(sentinel),
		"total":             countProp(sentinel),
		"commission_amount": countProp(sentinel),
	}
	required := []string{
		"filename", "start_period", "email",
		"unit_count", "unit_price", "total", "commission_amount",
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

func countProp(sentinel map[string]any) map[string]any {
	return map[string]any{"anyOf": []any{
		map[string]any{"type": "integer", "minimum": 0},
		sentinel,
	}}
}
