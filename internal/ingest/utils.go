package ingest

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/contracts-ocr/constants"
)

// AllowedExt checks if a file extension names a PDF.
func AllowedExt(ext string) bool {
	return constants.IsPDFExt(ext)
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

// LooksLikePDF reports whether data starts with the PDF header, allowing leading junk
// within the first KiB as readers do.
func LooksLikePDF(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(head, []byte("%PDF-"))
}
