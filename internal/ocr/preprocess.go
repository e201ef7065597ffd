package ocr

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// DefaultThreshold is the binarization cut-off on a 0-255 luminance scale.
const DefaultThreshold = 180

// PreprocessOptions selects the preprocessing steps, applied in field order.
type PreprocessOptions struct {
	Grayscale    bool
	AutoContrast bool
	Binarize     bool
	Threshold    uint8
}

// DefaultPreprocess is grayscale plus auto-contrast, no binarization.
func DefaultPreprocess() PreprocessOptions {
	return PreprocessOptions{Grayscale: true, AutoContrast: true, Threshold: DefaultThreshold}
}

// Preprocessor prepares a rasterized page for recognition. It never crops,
// rotates or resizes.
type Preprocessor struct {
	opts PreprocessOptions
}

func NewPreprocessor(opts PreprocessOptions) *Preprocessor {
	return &Preprocessor{opts: opts}
}

func (p *Preprocessor) Enabled() bool {
	return p != nil && (p.opts.Grayscale || p.opts.AutoContrast || p.opts.Binarize)
}

// Process returns img unchanged when no step is enabled.
func (p *Preprocessor) Process(img image.Image) image.Image {
	if !p.Enabled() {
		return img
	}
	out := imaging.Clone(img)
	if p.opts.Grayscale {
		out = imaging.Grayscale(out)
	}
	if p.opts.AutoContrast {
		out = autoContrast(out)
	}
	if p.opts.Binarize {
		out = binarize(out, p.opts.Threshold)
	}
	return out
}

// autoContrast linearly remaps the darkest channel value to 0 and the
// brightest to 255. Flat images are returned as-is.
func autoContrast(img *image.NRGBA) *image.NRGBA {
	lo, hi := uint8(255), uint8(0)
	pix := img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		for _, c := range pix[i : i+3] {
			if c < lo {
				lo = c
			}
			if c > hi {
				hi = c
			}
		}
	}
	if hi <= lo || (lo == 0 && hi == 255) {
		return img
	}
	var lut [256]uint8
	span := int(hi) - int(lo)
	for v := 0; v < 256; v++ {
		switch {
		case v <= int(lo):
			lut[v] = 0
		case v >= int(hi):
			lut[v] = 255
		default:
			lut[v] = uint8((v - int(lo)) * 255 / span)
		}
	}
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{R: lut[c.R], G: lut[c.G], B: lut[c.B], A: c.A}
	})
}

// binarize maps pixels with luminance below threshold to black, others to white.
func binarize(img *image.NRGBA, threshold uint8) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		if luminance(c) < threshold {
			return color.NRGBA{A: c.A}
		}
		return color.NRGBA{R: 255, G: 255, B: 255, A: c.A}
	})
}

func luminance(c color.NRGBA) uint8 {
	return uint8((299*uint32(c.R) + 587*uint32(c.G) + 114*uint32(c.B)) / 1000)
}
