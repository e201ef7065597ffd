package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/joseph-ayodele/contracts-ocr/constants"
	"github.com/joseph-ayodele/contracts-ocr/internal/common"
	"github.com/joseph-ayodele/contracts-ocr/internal/entity"
	"github.com/joseph-ayodele/contracts-ocr/internal/ingest"
	"github.com/joseph-ayodele/contracts-ocr/internal/pipeline"
)

const (
	formField        = "files"
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	HeaderDocErrors  = "X-Document-Errors"
	HeaderBatchID    = "X-Batch-Id"
	defaultUploadMax = 50 << 20
)

// BatchRunner runs one batch of documents.
type BatchRunner interface {
	Run(ctx context.Context, docs []entity.Document) (*pipeline.BatchResult, error)
}

// BatchServer accepts multipart uploads of up to the batch cap and answers with the workbook.
// Batches are serialized: the recognizer behind the runner is not safe for concurrent use.
type BatchServer struct {
	runner         BatchRunner
	maxUploadBytes int64
	maxDocuments   int
	mu             sync.Mutex
	logger         *slog.Logger
}

// NewBatchServer builds the handler. maxDocuments may lower the batch cap, never raise it.
func NewBatchServer(runner BatchRunner, maxUploadBytes int64, maxDocuments int, logger *slog.Logger) *BatchServer {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultUploadMax
	}
	if maxDocuments <= 0 || maxDocuments > constants.MaxBatchDocuments {
		maxDocuments = constants.MaxBatchDocuments
	}
	return &BatchServer{
		runner:         runner,
		maxUploadBytes: maxUploadBytes,
		maxDocuments:   maxDocuments,
		logger:         logger,
	}
}

// DocumentErrorJSON is one entry of the X-Document-Errors header.
type DocumentErrorJSON struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Stage string `json:"stage,omitempty"`
	Error string `json:"error"`
}

type errorResponse struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Errors  []DocumentErrorJSON `json:"documents,omitempty"`
}

func (s *BatchServer) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/batches", s.CreateBatch)
	mux.HandleFunc("GET /healthz", s.Health)
	return mux
}

func (s *BatchServer) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// uploadError is a request rejected while its parts are read.
type uploadError struct {
	status int
	code   string
	msg    string
}

func (e *uploadError) Error() string { return e.msg }

// CreateBatch streams the multipart body part by part, so an upload over the
// batch cap is rejected at its first extra file, before that payload is read.
func (s *BatchServer) CreateBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	mr, err := r.MultipartReader()
	if err != nil {
		s.fail(w, http.StatusBadRequest, common.CodeInvalidInput, "invalid multipart form", nil)
		return
	}
	docs, err := s.readUploads(mr)
	if err != nil {
		var ue *uploadError
		if !errors.As(err, &ue) {
			ue = &uploadError{http.StatusBadRequest, common.CodeInvalidInput, err.Error()}
		}
		s.fail(w, ue.status, ue.code, ue.msg, nil)
		return
	}

	s.mu.Lock()
	res, err := s.runner.Run(r.Context(), docs)
	s.mu.Unlock()

	var docErrs []DocumentErrorJSON
	if res != nil {
		docErrs = documentErrors(res.Outcomes)
		w.Header().Set(HeaderBatchID, res.ID.String())
	}
	switch {
	case errors.Is(err, common.ErrBatchSizeExceeded):
		s.fail(w, http.StatusBadRequest, common.CodeBatchSizeExceeded, err.Error(), nil)
		return
	case errors.Is(err, common.ErrEmptyResultSet):
		s.fail(w, http.StatusUnprocessableEntity, common.CodeEmptyResultSet, err.Error(), docErrs)
		return
	case err != nil:
		s.logger.Error("http.batch.failed", "err", err)
		s.fail(w, http.StatusInternalServerError, common.CodeInternal, "batch failed", docErrs)
		return
	}

	if len(docErrs) > 0 {
		b, _ := json.Marshal(docErrs)
		w.Header().Set(HeaderDocErrors, string(b))
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Export.FileName}))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Export.Data); err != nil {
		s.logger.Warn("http.batch.write_failed", "err", err)
	}
}

func (s *BatchServer) readUploads(mr *multipart.Reader) ([]entity.Document, error) {
	var docs []entity.Document
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, s.readError(err, "invalid multipart form")
		}
		if part.FormName() != formField || part.FileName() == "" {
			_ = part.Close()
			continue
		}
		name := filepath.Base(part.FileName())
		// Closing the part would drain it, so the extra payload is left unread.
		if len(docs) == s.maxDocuments {
			s.logger.Warn("http.batch.rejected", "documents_read", len(docs), "limit", s.maxDocuments)
			return nil, &uploadError{http.StatusBadRequest, common.CodeBatchSizeExceeded,
				fmt.Sprintf("at most %d documents per batch", s.maxDocuments)}
		}
		if !ingest.AllowedExt(filepath.Ext(name)) {
			return nil, &uploadError{http.StatusBadRequest, common.CodeInvalidInput,
				fmt.Sprintf("only PDF files are allowed: %s", name)}
		}
		data, err := io.ReadAll(part)
		_ = part.Close()
		if err != nil {
			return nil, s.readError(err, "unreadable upload: "+name)
		}
		docs = append(docs, entity.Document{Name: name, Data: data})
	}
	if len(docs) == 0 {
		return nil, &uploadError{http.StatusBadRequest, common.CodeInvalidInput, "field \"files\" is required"}
	}
	return docs, nil
}

func (s *BatchServer) readError(err error, msg string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &uploadError{http.StatusRequestEntityTooLarge, common.CodeInvalidInput,
			fmt.Sprintf("upload too large (max %d bytes)", s.maxUploadBytes)}
	}
	return &uploadError{http.StatusBadRequest, common.CodeInvalidInput, msg}
}

func documentErrors(outcomes []entity.Outcome) []DocumentErrorJSON {
	var out []DocumentErrorJSON
	for _, o := range outcomes {
		if o.OK() || o.Err == nil {
			continue
		}
		e := DocumentErrorJSON{Index: o.Index, Name: o.Name, Error: o.Err.Error()}
		var de *common.DocumentError
		if errors.As(o.Err, &de) {
			e.Stage = string(de.Stage)
			e.Error = de.Err.Error()
		}
		out = append(out, e)
	}
	return out
}

func (s *BatchServer) fail(w http.ResponseWriter, status int, code, msg string, docs []DocumentErrorJSON) {
	writeJSON(w, status, errorResponse{Code: code, Message: msg, Errors: docs})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
