package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/contracts-ocr/constants"
	"github.com/joseph-ayodele/contracts-ocr/internal/common"
	"github.com/joseph-ayodele/contracts-ocr/internal/entity"
)

// Artifact is a finished workbook and the name it should be saved under.
type Artifact struct {
	FileName string
	Data     []byte
}

// Service produces XLSX bytes for a batch's result table.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// Export writes rows to a workbook named for the day of at.
func (s *Service) Export(ctx context.Context, rows []entity.FieldRecord, at time.Time) (Artifact, error) {
	data, err := s.WriteXLSX(ctx, rows)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{FileName: FileName(at), Data: data}, nil
}

// WriteXLSX returns a single-sheet workbook: one header row, then one row per
// record in the order given. Unrecognized numeric cells hold the sentinel text.
func (s *Service) WriteXLSX(ctx context.Context, rows []entity.FieldRecord) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = constants.ExportSheet
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	header := make([]any, len(constants.Columns))
	for i, h := range constants.Columns {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("xlsx header: %w", err)
	}

	for i, r := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		cells := r.Cells()
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return nil, fmt.Errorf("xlsx row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 32) // file name
	_ = f.SetColWidth(sheet, "B", "B", 12) // period
	_ = f.SetColWidth(sheet, "C", "C", 36) // email
	_ = f.SetColWidth(sheet, "D", "G", 12) // amounts

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	common.LoggerFrom(ctx, s.logger).Info("export.xlsx.ok",
		"rows", len(rows),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
