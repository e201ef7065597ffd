package ingest

import (
	"github.com/joseph-ayodele/contracts-ocr/internal/entity"
)

// LoadResult is the per-file load outcome.
type LoadResult struct {
	SourcePath   string
	Document     entity.Document
	HashHex      string
	Deduplicated bool // same bytes as an earlier file in the same load, only with FSIngestor.Dedup
	Err          string
}

func (r LoadResult) OK() bool { return r.Err == "" && !r.Deduplicated }

// DirStats summarizes a directory load.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Documents returns the loaded documents of results, skipping failures and duplicates.
func Documents(results []LoadResult) []entity.Document {
	var docs []entity.Document
	for _, r := range results {
		if r.OK() {
			docs = append(docs, r.Document)
		}
	}
	return docs
}
