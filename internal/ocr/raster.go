package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/joseph-ayodele/contracts-ocr/constants"
)

// Rasterizer turns a PDF payload into page images, in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdf []byte) ([]image.Image, error)
}

// PageCounter reports the page count of a PDF, failing on malformed input.
type PageCounter func(rs io.ReadSeeker) (int, error)

// PdfcpuPageCount parses the document with pdfcpu in relaxed validation mode.
func PdfcpuPageCount(rs io.ReadSeeker) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.PageCount(rs, conf)
}

// Pdftoppm rasterizes with poppler's pdftoppm.
type Pdftoppm struct {
	Bin        string
	DPI        int
	MaxPages   int
	CountPages PageCounter

	runner Runner
	logger *slog.Logger
}

func NewPdftoppm(bin string, dpi, maxPages int, logger *slog.Logger) *Pdftoppm {
	if logger == nil {
		logger = slog.Default()
	}
	if bin == "" {
		bin = "pdftoppm"
	}
	if dpi <= 0 {
		dpi = constants.RasterDPI
	}
	return &Pdftoppm{
		Bin:        bin,
		DPI:        dpi,
		MaxPages:   maxPages,
		CountPages: PdfcpuPageCount,
		runner:     execRunner{},
		logger:     logger,
	}
}

// WithRunner swaps the command runner; used by tests.
func (p *Pdftoppm) WithRunner(r Runner) *Pdftoppm {
	p.runner = r
	return p
}

func (p *Pdftoppm) Rasterize(ctx context.Context, pdf []byte) ([]image.Image, error) {
	pages, err := p.CountPages(bytes.NewReader(pdf))
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	if pages == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	tmpDir, err := os.MkdirTemp("", "co-pp-*")
	if err != nil {
		return nil, err
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			p.logger.Warn("failed to remove temp dir", "dir", path, "error", err)
		}
	}(tmpDir)

	in := filepath.Join(tmpDir, "in.pdf")
	if err := os.WriteFile(in, pdf, 0o600); err != nil {
		return nil, err
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png [-l N] <in.pdf> <tmp/page>
	args := []string{"-r", strconv.Itoa(p.DPI), "-png"}
	if p.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(p.MaxPages))
	}
	args = append(args, in, prefix)
	_, errb, err := p.runner.Run(ctx, p.Bin, p.logger, args...)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(strings.TrimSpace(string(errb)), 512))
	}

	// pdftoppm zero-pads page numbers to the width of the page count,
	// so a lexical sort is page order.
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if p.MaxPages > 0 && len(matches) > p.MaxPages {
		matches = matches[:p.MaxPages]
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no pages rendered")
	}

	imgs := make([]image.Image, 0, len(matches))
	for _, m := range matches {
		img, err := imaging.Open(m)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", filepath.Base(m), err)
		}
		imgs = append(imgs, img)
	}
	p.logger.Debug("pdf rasterized", "pages", len(imgs), "pdf_pages", pages, "dpi", p.DPI)
	return imgs, nil
}
