//go:build !gosseract

package engine

import (
	"testing"

	"github.com/joseph-ayodele/contracts-ocr/internal/ocr"
)

func TestNew_DefaultsToCLI(t *testing.T) {
	rec, err := New(ocr.Config{TesseractLang: "chi_tra+eng", PSM: 6}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer rec.Close()
	cli, ok := rec.(*ocr.TesseractCLI)
	if !ok {
		t.Fatalf("recognizer = %T, want *ocr.TesseractCLI", rec)
	}
	if cli.Lang != "chi_tra+eng" || cli.PSM != 6 || cli.Bin != "tesseract" {
		t.Errorf("unexpected config: %+v", cli)
	}
}
