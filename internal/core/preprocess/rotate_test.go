package preprocess

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

// markerPage is 3x2 with a distinct colour in every pixel.
func markerPage(t *testing.T) Page {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(40 * x), G: uint8(100 * y), B: 7, A: 255})
		}
	}
	p, err := NewPage(img, 1)
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	return p
}

func pixel(t *testing.T, p Page, x, y int) color.NRGBA {
	t.Helper()
	img, err := p.Decode()
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	return color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
}

func TestRotate_ZeroIsNoOp(t *testing.T) {
	p := markerPage(t)
	for _, d := range []int{0, 360, -360} {
		out, err := Rotate(p, d)
		if err != nil {
			t.Fatalf("Rotate(%d): %v", d, err)
		}
		if !bytes.Equal(out.PNG, p.PNG) || out.Width != p.Width || out.Height != p.Height {
			t.Errorf("Rotate(%d) changed the page", d)
		}
	}
}

func TestRotate_QuarterTurnSwapsDimensions(t *testing.T) {
	p := markerPage(t)
	out, err := Rotate(p, 90)
	if err != nil {
		t.Fatal(err)
	}
	if out.Width != 2 || out.Height != 3 {
		t.Fatalf("size = %dx%d, want 2x3", out.Width, out.Height)
	}
	// clockwise: the top-left pixel ends up top-right
	if got, want := pixel(t, out, 1, 0), pixel(t, p, 0, 0); got != want {
		t.Errorf("top-right after 90 = %v, want %v", got, want)
	}
}

func TestRotate_NegativeEqualsComplement(t *testing.T) {
	p := markerPage(t)
	a, err := Rotate(p, -90)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Rotate(p, 270)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.PNG, b.PNG) {
		t.Error("Rotate(-90) should equal Rotate(270)")
	}
}

func TestRotate_RoundTripRestoresPixels(t *testing.T) {
	p := markerPage(t)
	for _, pair := range [][2]int{{90, 270}, {180, 180}, {270, -270}} {
		mid, err := Rotate(p, pair[0])
		if err != nil {
			t.Fatal(err)
		}
		back, err := Rotate(mid, pair[1])
		if err != nil {
			t.Fatal(err)
		}
		if back.Width != p.Width || back.Height != p.Height {
			t.Fatalf("%v: size = %dx%d", pair, back.Width, back.Height)
		}
		for y := 0; y < p.Height; y++ {
			for x := 0; x < p.Width; x++ {
				if got, want := pixel(t, back, x, y), pixel(t, p, x, y); got != want {
					t.Errorf("%v: pixel (%d,%d) = %v, want %v", pair, x, y, got, want)
				}
			}
		}
	}
}

func TestRotator_KeepsPageNumber(t *testing.T) {
	p := markerPage(t)
	p.Number = 3
	out, err := Rotator{}.Rotate(p, 180)
	if err != nil {
		t.Fatal(err)
	}
	if out.Number != 3 {
		t.Errorf("page number = %d, want 3", out.Number)
	}
}
