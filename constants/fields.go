package constants

// Unrecognized is written in place of any field whose pattern did not match.
const Unrecognized = "未辨識"

// SuspectedPrefix marks an email recovered only by the loose pattern.
const SuspectedPrefix = "疑似:"

// Export naming.
const (
	ExportPrefix    = "分潤增補匯總"
	ExportExtension = "xlsx"
	ExportSheet     = "分潤增補"
)

// Column headers of the exported table, in column order.
var Columns = []string{
	"檔名",
	"起始年月",
	"Email",
	"台數",
	"單價",
	"合計",
	"分潤金額",
}

// MaxBatchDocuments is the hard cap on documents per batch.
const MaxBatchDocuments = 10

// RasterDPI is the fixed rasterization resolution.
const RasterDPI = 300
