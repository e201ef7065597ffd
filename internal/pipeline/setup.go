package pipeline

import (
	"log/slog"

	"github.com/joseph-ayodele/contracts-ocr/internal/common"
	"github.com/joseph-ayodele/contracts-ocr/internal/export"
	"github.com/joseph-ayodele/contracts-ocr/internal/extract"
	"github.com/joseph-ayodele/contracts-ocr/internal/ocr"
	"github.com/joseph-ayodele/contracts-ocr/internal/ocr/engine"
)

// Stack is the fully wired batch pipeline a binary runs.
type Stack struct {
	Recognizer ocr.Recognizer
	OCR        *ocr.Extractor
	Fields     *extract.RuleExtractor
	Processor  *Processor
	Batch      *Batch
}

// OCRConfig maps application configuration onto the OCR layer.
func OCRConfig(cfg *common.Config) ocr.Config {
	threshold := cfg.Preprocess.Threshold
	if threshold < 0 || threshold > 255 {
		threshold = ocr.DefaultThreshold
	}
	return ocr.Config{
		Pdftoppm:      cfg.OCR.Pdftoppm,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		PSM:           cfg.OCR.PSM,
		OEM:           cfg.OCR.OEM,
		Preprocess: ocr.PreprocessOptions{
			Grayscale:    cfg.Preprocess.Grayscale,
			AutoContrast: cfg.Preprocess.AutoContrast,
			Binarize:     cfg.Preprocess.Binarize,
			Threshold:    uint8(threshold),
		},
	}
}

// Build creates the recognizer once and wires every stage around it.
// Callers must Close the stack to release the recognizer.
func Build(cfg *common.Config, logger *slog.Logger) (*Stack, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ocrCfg := OCRConfig(cfg)
	rec, err := engine.New(ocrCfg, logger)
	if err != nil {
		return nil, common.WrapError(err, "init recognizer")
	}
	fields, err := extract.NewRuleExtractor(extract.DefaultRules(), logger)
	if err != nil {
		_ = rec.Close()
		return nil, common.WrapError(err, "init field extractor")
	}

	ocrx := ocr.NewDefaultExtractor(ocrCfg, rec, logger)
	proc := NewProcessor(logger, extract.NewOCRAdapter(ocrx, logger), fields)
	batch := NewBatch(proc, export.NewService(logger), logger)
	batch.MaxDocuments = cfg.Batch.MaxDocuments

	return &Stack{
		Recognizer: rec,
		OCR:        ocrx,
		Fields:     fields,
		Processor:  proc,
		Batch:      batch,
	}, nil
}

func (s *Stack) Close() error {
	if s == nil || s.Recognizer == nil {
		return nil
	}
	return s.Recognizer.Close()
}
