package constants

import "strings"

// PDF is the only accepted document format.
const PDF = "pdf"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// IsPDFExt reports whether ext (with or without the dot) names a PDF file.
func IsPDFExt(ext string) bool {
	return NormalizeExt(ext) == PDF
}
