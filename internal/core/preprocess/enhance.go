package preprocess

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

const (
	// MinSide is the smallest width/height sent to the model without upscaling.
	MinSide        = 800
	UpscaleFactor  = 2
	ContrastFactor = 1.5
)

// sharpenKernel is the classic 3x3 SHARPEN filter (weights sum to 16).
var sharpenKernel = [9]float64{
	-2, -2, -2,
	-2, 32, -2,
	-2, -2, -2,
}

// Page is one canonical page image: PNG encoded, opaque RGB, enhanced once.
type Page struct {
	Number int // 1-based position in the source
	PNG    []byte
	Width  int
	Height int
}

// Enhance applies the normalisation pass: opaque RGB, 2x Lanczos upscale when
// either side is below MinSide, contrast boost around the mean luminance, sharpen.
func Enhance(img image.Image) *image.NRGBA {
	out := toOpaque(img)
	w, h := out.Bounds().Dx(), out.Bounds().Dy()
	if w < MinSide || h < MinSide {
		out = imaging.Resize(out, w*UpscaleFactor, h*UpscaleFactor, imaging.Lanczos)
	}
	out = adjustContrast(out, ContrastFactor)
	return imaging.Convolve3x3(out, sharpenKernel, &imaging.ConvolveOptions{Normalize: true})
}

// NewPage encodes img as-is (no enhancement) into a Page.
func NewPage(img image.Image, number int) (Page, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return Page{}, fmt.Errorf("encode png: %w", err)
	}
	b := img.Bounds()
	return Page{Number: number, PNG: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}

// Decode decodes a page back into pixels.
func (p Page) Decode() (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(p.PNG))
	if err != nil {
		return nil, fmt.Errorf("decode page %d: %w", p.Number, err)
	}
	return img, nil
}

// toOpaque drops the alpha channel the way an RGB conversion does: colour values are kept, alpha forced to 255.
func toOpaque(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

// adjustContrast blends each channel away from the rounded mean luminance by factor.
func adjustContrast(img *image.NRGBA, factor float64) *image.NRGBA {
	mean := meanLuminance(img)
	var lut [256]uint8
	for i := range lut {
		lut[i] = clamp8(mean + factor*(float64(i)-mean))
	}
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{R: lut[c.R], G: lut[c.G], B: lut[c.B], A: c.A}
	})
}

func meanLuminance(img *image.NRGBA) float64 {
	n := len(img.Pix) / 4
	if n == 0 {
		return 0
	}
	var sum uint64
	for i := 0; i+3 < len(img.Pix); i += 4 {
		r, g, b := uint64(img.Pix[i]), uint64(img.Pix[i+1]), uint64(img.Pix[i+2])
		sum += (r*299 + g*587 + b*114) / 1000
	}
	return float64(int(float64(sum)/float64(n) + 0.5))
}

func clamp8(v float64) uint8 {
	v += 0.5
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}
