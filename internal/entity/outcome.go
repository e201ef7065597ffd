package entity

import "github.com/joseph-ayodele/contracts-ocr/constants"

// Outcome is the per-document result of a batch: a record or an error.
type Outcome struct {
	Index  int
	Name   string
	Status constants.DocumentStatus
	Record *FieldRecord
	Err    error
}

func (o Outcome) OK() bool { return o.Status == constants.DocumentStatusOK && o.Record != nil }
