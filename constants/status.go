package constants

// DocumentStatus is the per-document outcome inside a batch.
type DocumentStatus string

const (
	DocumentStatusPending DocumentStatus = "PENDING" // not yet processed
	DocumentStatusOK      DocumentStatus = "OK"      // record extracted
	DocumentStatusFailed  DocumentStatus = "FAILED"  // rasterize / recognize / extract failed
)

// Stage names the pipeline step a document failed in.
type Stage string

const (
	StageRasterize Stage = "rasterize"
	StageRecognize Stage = "recognize"
	StageExtract   Stage = "extract"
)
