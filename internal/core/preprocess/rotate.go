package preprocess

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Rotator re-renders pages; it holds no state.
type Rotator struct{}

func (Rotator) Rotate(p Page, degreesClockwise int) (Page, error) {
	return Rotate(p, degreesClockwise)
}

// Rotate returns a new page turned clockwise by the given degrees, canvas expanded
// to fit. Right angles are exact; enhancement is not reapplied. The input is not modified.
func Rotate(p Page, degreesClockwise int) (Page, error) {
	d := ((degreesClockwise % 360) + 360) % 360
	if d == 0 {
		out := p
		out.PNG = append([]byte(nil), p.PNG...)
		return out, nil
	}

	img, err := p.Decode()
	if err != nil {
		return Page{}, err
	}

	// imaging rotates counter-clockwise.
	var rotated *image.NRGBA
	switch d {
	case 90:
		rotated = imaging.Rotate270(img)
	case 180:
		rotated = imaging.Rotate180(img)
	case 270:
		rotated = imaging.Rotate90(img)
	default:
		rotated = imaging.Rotate(img, float64(-d), color.Black)
	}
	return NewPage(rotated, p.Number)
}
