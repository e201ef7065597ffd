package entity

import (
	"encoding/json"
	"strconv"

	"github.com/joseph-ayodele/contracts-ocr/constants"
)

// Value is a numeric field that is either measured or unrecognized.
// The zero Value is unrecognized, never a measured zero.
type Value struct {
	N  int64
	OK bool
}

func Known(n int64) Value { return Value{N: n, OK: true} }

// Cell returns the integer, or the sentinel string when unrecognized.
func (v Value) Cell() any {
	if !v.OK {
		return constants.Unrecognized
	}
	return v.N
}

func (v Value) String() string {
	if !v.OK {
		return constants.Unrecognized
	}
	return strconv.FormatInt(v.N, 10)
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Cell())
}

// FieldRecord is the structured result for one document.
type FieldRecord struct {
	FileName    string `json:"filename"`
	StartPeriod string `json:"start_period"`
	Email       string `json:"email"`
	UnitCount   Value  `json:"unit_count"`
	UnitPrice   Value  `json:"unit_price"`
	Total       Value  `json:"total"`
	Commission  Value  `json:"commission_amount"`
}

// Cells returns the row in constants.Columns order.
func (r FieldRecord) Cells() []any {
	return []any{
		r.FileName,
		r.StartPeriod,
		r.Email,
		r.UnitCount.Cell(),
		r.UnitPrice.Cell(),
		r.Total.Cell(),
		r.Commission.Cell(),
	}
}
