package common

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/joseph-ayodele/contracts-ocr/constants"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{"TESSERACT_LANG", "OCR_DPI", "PREPROCESS_THRESHOLD", "BATCH_MAX_DOCUMENTS", "PREPROCESS_BINARIZE"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig()
	if cfg.OCR.TesseractLang != "chi_tra+eng" {
		t.Errorf("TesseractLang = %q, want chi_tra+eng", cfg.OCR.TesseractLang)
	}
	if cfg.OCR.DPI != 300 {
		t.Errorf("DPI = %d, want 300", cfg.OCR.DPI)
	}
	if cfg.Preprocess.Threshold != 180 {
		t.Errorf("Threshold = %d, want 180", cfg.Preprocess.Threshold)
	}
	if cfg.Preprocess.Binarize {
		t.Error("Binarize should default to false")
	}
	if cfg.Batch.MaxDocuments != constants.MaxBatchDocuments {
		t.Errorf("MaxDocuments = %d, want %d", cfg.Batch.MaxDocuments, constants.MaxBatchDocuments)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PREPROCESS_BINARIZE", "true")
	t.Setenv("PREPROCESS_THRESHOLD", "150")
	t.Setenv("OCR_DPI", "not-a-number")
	cfg := LoadConfig()
	if !cfg.Preprocess.Binarize {
		t.Error("Binarize = false, want true")
	}
	if cfg.Preprocess.Threshold != 150 {
		t.Errorf("Threshold = %d, want 150", cfg.Preprocess.Threshold)
	}
	if cfg.OCR.DPI != 300 {
		t.Errorf("unparsable OCR_DPI should fall back to 300, got %d", cfg.OCR.DPI)
	}
}

func TestConfigValidate_RejectsRaisedBatchCap(t *testing.T) {
	cfg := LoadConfig()
	cfg.Batch.MaxDocuments = 11
	cfg.Preprocess.Threshold = 300
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Code != CodeConfig {
		t.Fatalf("expected CONFIG_ERROR AppError, got %v", err)
	}
	if !strings.Contains(err.Error(), "BATCH_MAX_DOCUMENTS") || !strings.Contains(err.Error(), "PREPROCESS_THRESHOLD") {
		t.Errorf("error should name both fields: %v", err)
	}
}

func TestDocumentError_Unwrap(t *testing.T) {
	cause := errors.New("pdftoppm exit 1")
	err := NewDocumentError("b.pdf", constants.StageRasterize, cause)
	if !errors.Is(err, ErrDocumentProcessing) {
		t.Error("DocumentError should match ErrDocumentProcessing")
	}
	if !errors.Is(err, cause) {
		t.Error("DocumentError should match its cause")
	}
	if !strings.Contains(err.Error(), "b.pdf") {
		t.Errorf("message should name the document: %q", err.Error())
	}
}

func TestBatchSizeError(t *testing.T) {
	err := BatchSizeError(11, 10)
	if !errors.Is(err, ErrBatchSizeExceeded) {
		t.Fatalf("expected ErrBatchSizeExceeded, got %v", err)
	}
}

func TestNewLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogConfig{Level: "warn", Format: "text"})
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "k=v") {
		t.Errorf("unexpected text output: %q", out)
	}
}
