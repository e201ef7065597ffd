package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/joseph-ayodele/contracts-ocr/constants"
	"github.com/joseph-ayodele/contracts-ocr/internal/common"
	"github.com/joseph-ayodele/contracts-ocr/internal/entity"
	"github.com/joseph-ayodele/contracts-ocr/internal/extract"
	"github.com/joseph-ayodele/contracts-ocr/internal/ocr"
)

type stubText struct {
	text string
	err  error
}

func (s stubText) Extract(_ context.Context, _ entity.Document) (extract.TextExtractionResult, error) {
	return extract.TextExtractionResult{Text: s.text, Pages: 1, Method: "stub"}, s.err
}

type stubFields struct {
	err error
}

func (s stubFields) ExtractFields(_ context.Context, filename, text string) (entity.FieldRecord, error) {
	if s.err != nil {
		return entity.FieldRecord{}, s.err
	}
	return entity.FieldRecord{FileName: filename, StartPeriod: text}, nil
}

func TestProcessDocument_OK(t *testing.T) {
	p := NewProcessor(quietLogger(), stubText{text: "113年5月"}, stubFields{})
	rec, err := p.ProcessDocument(context.Background(), entity.Document{Name: "a.pdf"})
	if err != nil {
		t.Fatalf("ProcessDocument: %v", err)
	}
	if rec.FileName != "a.pdf" || rec.StartPeriod != "113年5月" {
		t.Errorf("record = %+v", rec)
	}
}

func TestProcessDocument_Stages(t *testing.T) {
	tests := []struct {
		name   string
		text   stubText
		fields stubFields
		want   constants.Stage
	}{
		{"rasterize", stubText{err: &ocr.StageError{Stage: constants.StageRasterize, Err: errors.New("bad pdf")}}, stubFields{}, constants.StageRasterize},
		{"recognize", stubText{err: &ocr.StageError{Stage: constants.StageRecognize, Page: 2, Err: errors.New("engine")}}, stubFields{}, constants.StageRecognize},
		{"unstaged", stubText{err: errors.New("other")}, stubFields{}, constants.StageRecognize},
		{"extract", stubText{text: "x"}, stubFields{err: errors.New("schema")}, constants.StageExtract},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProcessor(quietLogger(), tt.text, tt.fields)
			_, err := p.ProcessDocument(context.Background(), entity.Document{Name: "d.pdf"})
			var docErr *common.DocumentError
			if !errors.As(err, &docErr) {
				t.Fatalf("err = %v, want DocumentError", err)
			}
			if docErr.Stage != tt.want || docErr.Name != "d.pdf" {
				t.Errorf("stage = %s name = %s, want %s d.pdf", docErr.Stage, docErr.Name, tt.want)
			}
		})
	}
}

func TestProcessDocument_WithRuleExtractor(t *testing.T) {
	fields, err := extract.NewRuleExtractor(nil, quietLogger())
	if err != nil {
		t.Fatalf("NewRuleExtractor: %v", err)
	}
	p := NewProcessor(quietLogger(), stubText{text: "EIP聯網機三台\n合計 900"}, fields)
	rec, err := p.ProcessDocument(context.Background(), entity.Document{Name: "r.pdf"})
	if err != nil {
		t.Fatalf("ProcessDocument: %v", err)
	}
	if rec.UnitCount != entity.Known(3) || rec.Total != entity.Known(900) {
		t.Errorf("record = %+v", rec)
	}
	if rec.Email != constants.Unrecognized || rec.UnitPrice.OK {
		t.Errorf("unmatched fields should be sentinel: %+v", rec)
	}
}
