package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/contracts-ocr/constants"
	"github.com/joseph-ayodele/contracts-ocr/internal/common"
	"github.com/joseph-ayodele/contracts-ocr/internal/entity"
	"github.com/joseph-ayodele/contracts-ocr/internal/export"
	"github.com/joseph-ayodele/contracts-ocr/internal/pipeline"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubRunner fails documents whose name is in fail; everything else succeeds.
type stubRunner struct {
	fail  map[string]bool
	calls int
	got   []entity.Document
}

func (s *stubRunner) Run(_ context.Context, docs []entity.Document) (*pipeline.BatchResult, error) {
	s.calls++
	s.got = docs
	res := &pipeline.BatchResult{ID: uuid.New()}
	for i, d := range docs {
		o := entity.Outcome{Index: i, Name: d.Name}
		if s.fail[d.Name] {
			o.Status = constants.DocumentStatusFailed
			o.Err = common.NewDocumentError(d.Name, constants.StageRasterize, errors.New("corrupt"))
		} else {
			rec := entity.FieldRecord{FileName: d.Name}
			o.Status = constants.DocumentStatusOK
			o.Record = &rec
			res.Table = append(res.Table, rec)
		}
		res.Outcomes = append(res.Outcomes, o)
	}
	if len(res.Table) == 0 {
		return res, common.EmptyResultError(len(docs))
	}
	res.Export = &export.Artifact{FileName: "分潤增補匯總_20240507.xlsx", Data: []byte("PK")}
	return res, nil
}

func upload(t *testing.T, names ...string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, n := range names {
		fw, err := mw.CreateFormFile("files", n)
		if err != nil {
			t.Fatal(err)
		}
		fmt.Fprintf(fw, "%%PDF-1.4 %s", n)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/batches", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestCreateBatch_OK(t *testing.T) {
	runner := &stubRunner{fail: map[string]bool{"b.pdf": true}}
	srv := NewBatchServer(runner, 0, 0, quietLogger())

	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, upload(t, "a.pdf", "b.pdf", "c.pdf"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("content-type = %q", ct)
	}
	_, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	if err != nil {
		t.Fatalf("content-disposition: %v", err)
	}
	if params["filename"] != "分潤增補匯總_20240507.xlsx" {
		t.Errorf("filename = %q", params["filename"])
	}
	if rec.Body.String() != "PK" {
		t.Errorf("body = %q", rec.Body.String())
	}

	var docErrs []DocumentErrorJSON
	if err := json.Unmarshal([]byte(rec.Header().Get(HeaderDocErrors)), &docErrs); err != nil {
		t.Fatalf("X-Document-Errors: %v", err)
	}
	if len(docErrs) != 1 || docErrs[0].Name != "b.pdf" || docErrs[0].Index != 1 || docErrs[0].Stage != "rasterize" {
		t.Errorf("document errors = %+v", docErrs)
	}

	if len(runner.got) != 3 || runner.got[0].Name != "a.pdf" || runner.got[2].Name != "c.pdf" {
		t.Errorf("runner docs = %v", runner.got)
	}
}

func TestCreateBatch_TooManyFiles(t *testing.T) {
	runner := &stubRunner{}
	srv := NewBatchServer(runner, 0, 0, quietLogger())
	names := make([]string, 11)
	for i := range names {
		names[i] = fmt.Sprintf("%02d.pdf", i)
	}

	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, upload(t, names...))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != common.CodeBatchSizeExceeded {
		t.Errorf("code = %q", resp.Code)
	}
	if runner.calls != 0 {
		t.Error("runner invoked for oversized batch")
	}
}

func TestCreateBatch_AllFailed(t *testing.T) {
	runner := &stubRunner{fail: map[string]bool{"a.pdf": true}}
	rec := httptest.NewRecorder()
	NewBatchServer(runner, 0, 0, quietLogger()).Routes().ServeHTTP(rec, upload(t, "a.pdf"))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != common.CodeEmptyResultSet || len(resp.Errors) != 1 {
		t.Errorf("response = %+v", resp)
	}
}

func TestCreateBatch_BadInput(t *testing.T) {
	tests := []struct {
		name string
		req  func(t *testing.T) *http.Request
	}{
		{"non-pdf", func(t *testing.T) *http.Request { return upload(t, "a.pdf", "notes.txt") }},
		{"no files", func(t *testing.T) *http.Request { return upload(t) }},
		{"not multipart", func(t *testing.T) *http.Request {
			return httptest.NewRequest(http.MethodPost, "/api/batches", bytes.NewBufferString("x"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &stubRunner{}
			rec := httptest.NewRecorder()
			NewBatchServer(runner, 0, 0, quietLogger()).Routes().ServeHTTP(rec, tt.req(t))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d", rec.Code)
			}
			if runner.calls != 0 {
				t.Error("runner invoked for bad input")
			}
		})
	}
}

func TestCreateBatch_LoweredCap(t *testing.T) {
	runner := &stubRunner{}
	rec := httptest.NewRecorder()
	NewBatchServer(runner, 0, 2, quietLogger()).Routes().ServeHTTP(rec, upload(t, "a.pdf", "b.pdf", "c.pdf"))
	if rec.Code != http.StatusBadRequest || runner.calls != 0 {
		t.Fatalf("status = %d calls = %d", rec.Code, runner.calls)
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	NewBatchServer(&stubRunner{}, 0, 0, quietLogger()).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	NewBatchServer(&stubRunner{}, 0, 0, quietLogger()).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/batches", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}

// countingReader records how many body bytes the handler consumed.
type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

func TestCreateBatch_RejectsAtFirstExtraFile(t *testing.T) {
	const payload = 1 << 20
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for i := 0; i < 12; i++ {
		fw, err := mw.CreateFormFile("files", fmt.Sprintf("%02d.pdf", i))
		if err != nil {
			t.Fatal(err)
		}
		data := []byte("%PDF-1.4 small")
		if i >= 10 {
			data = append([]byte("%PDF-1.4 "), bytes.Repeat([]byte("x"), payload)...)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	total := body.Len()
	cr := &countingReader{r: &body}
	req := httptest.NewRequest(http.MethodPost, "/api/batches", cr)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	runner := &stubRunner{}
	rec := httptest.NewRecorder()
	NewBatchServer(runner, 0, 0, quietLogger()).Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != common.CodeBatchSizeExceeded || runner.calls != 0 {
		t.Errorf("code = %q calls = %d", resp.Code, runner.calls)
	}
	if cr.n > total-payload {
		t.Errorf("read %d of %d bytes, want the extra payloads left unread", cr.n, total)
	}
}

func TestCreateBatch_IgnoresOtherFields(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("note", "hello"); err != nil {
		t.Fatal(err)
	}
	fw, err := mw.CreateFormFile("files", "a.pdf")
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprint(fw, "%PDF-1.4 a")
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/batches", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	runner := &stubRunner{}
	rec := httptest.NewRecorder()
	NewBatchServer(runner, 0, 0, quietLogger()).Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || len(runner.got) != 1 || string(runner.got[0].Data) != "%PDF-1.4 a" {
		t.Fatalf("status = %d docs = %v", rec.Code, runner.got)
	}
}

func TestCreateBatch_UploadTooLarge(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("files", "big.pdf")
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprint(fw, "%PDF-1.4 ")
	_, _ = fw.Write(bytes.Repeat([]byte("x"), 16<<10))
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/batches", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	runner := &stubRunner{}
	rec := httptest.NewRecorder()
	NewBatchServer(runner, 4<<10, 0, quietLogger()).Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge || runner.calls != 0 {
		t.Fatalf("status = %d calls = %d", rec.Code, runner.calls)
	}
}

type failingRunner struct{}

func (failingRunner) Run(context.Context, []entity.Document) (*pipeline.BatchResult, error) {
	return nil, errors.New("disk full")
}

func TestCreateBatch_InternalError(t *testing.T) {
	rec := httptest.NewRecorder()
	NewBatchServer(failingRunner{}, 0, 0, quietLogger()).Routes().ServeHTTP(rec, upload(t, "a.pdf"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != common.CodeInternal {
		t.Errorf("code = %q, want %s", resp.Code, common.CodeInternal)
	}
}
