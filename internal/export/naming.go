package export

import (
	"time"

	"github.com/joseph-ayodele/contracts-ocr/constants"
)

// FileName is the export name for the local calendar day of t.
func FileName(t time.Time) string {
	return constants.ExportPrefix + "_" + t.Format("20060102") + "." + constants.ExportExtension
}
