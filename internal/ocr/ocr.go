package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/contracts-ocr/constants"
	"github.com/joseph-ayodele/contracts-ocr/internal/entity"
)

// Config wires the external engines used by NewDefaultExtractor.
type Config struct {
	Pdftoppm string // binary name or absolute path; if empty -> "pdftoppm"
	DPI      int    // rasterization DPI, default 300
	MaxPages int    // 0 = no limit

	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "chi_tra+eng"
	TessdataDir   string
	PSM           int
	OEM           int

	Preprocess PreprocessOptions
}

type ExtractionResult struct {
	Text     string
	Pages    int
	Method   string
	Language string
	Duration time.Duration
	Warnings []string
}

// StageError tags an extraction failure with the step that raised it.
type StageError struct {
	Stage constants.Stage
	Page  int // 1-based; 0 when not page specific
	Err   error
}

func (e *StageError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("%s page %d: %v", e.Stage, e.Page, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// StageOf returns the stage recorded in err, or fallback.
func StageOf(err error, fallback constants.Stage) constants.Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return fallback
}

// Extractor produces one text blob per document: rasterize, preprocess,
// recognize each page, join pages with a newline.
type Extractor struct {
	rasterizer Rasterizer
	pre        *Preprocessor
	recognizer Recognizer
	lang       string
	logger     *slog.Logger
}

func NewExtractor(r Rasterizer, pre *Preprocessor, rec Recognizer, lang string, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if lang == "" {
		lang = DefaultLanguages
	}
	return &Extractor{rasterizer: r, pre: pre, recognizer: rec, lang: lang, logger: logger}
}

// NewDefaultExtractor uses pdftoppm for pages and rec for recognition.
func NewDefaultExtractor(cfg Config, rec Recognizer, logger *slog.Logger) *Extractor {
	raster := NewPdftoppm(cfg.Pdftoppm, cfg.DPI, cfg.MaxPages, logger)
	return NewExtractor(raster, NewPreprocessor(cfg.Preprocess), rec, cfg.TesseractLang, logger)
}

// NewTesseractFromConfig builds the CLI recognizer described by cfg.
func NewTesseractFromConfig(cfg Config, logger *slog.Logger) *TesseractCLI {
	t := NewTesseractCLI(cfg.Tesseract, cfg.TesseractLang, logger)
	t.TessdataDir = cfg.TessdataDir
	t.PSM = cfg.PSM
	t.OEM = cfg.OEM
	return t
}

// Extract runs OCR over every page of doc. Any page failure fails the document.
func (e *Extractor) Extract(ctx context.Context, doc entity.Document) (ExtractionResult, error) {
	start := time.Now()
	res := ExtractionResult{Method: "pdf-ocr", Language: e.lang}
	e.logger.Debug("starting ocr extraction", "document", doc.Name, "bytes", len(doc.Data))

	pages, err := e.rasterizer.Rasterize(ctx, doc.Data)
	if err != nil {
		res.Duration = time.Since(start)
		return res, &StageError{Stage: constants.StageRasterize, Err: err}
	}
	res.Pages = len(pages)

	texts := make([]string, 0, len(pages))
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if e.pre.Enabled() {
			page = e.pre.Process(page)
		}
		txt, err := e.recognizer.Recognize(ctx, page)
		if err != nil {
			res.Duration = time.Since(start)
			return res, &StageError{Stage: constants.StageRecognize, Page: i + 1, Err: err}
		}
		if strings.TrimSpace(txt) == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: no text recognized", i+1))
		}
		texts = append(texts, txt)
	}

	res.Text = Normalize(strings.Join(texts, "\n"))
	res.Duration = time.Since(start)
	e.logger.Debug("ocr extraction done",
		"document", doc.Name,
		"pages", res.Pages,
		"chars", len([]rune(res.Text)),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
