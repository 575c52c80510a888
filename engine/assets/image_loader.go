package assets

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// LoadImage decodes a PNG, JPEG, BMP or WebP file into tightly packed RGBA
// (stride == 4*w, top-left origin). flipY reverses the rows to match GL's
// bottom-left texture origin.
func LoadImage(path string, flipY bool) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	img, err := DecodeImage(f, flipY)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	return img, nil
}

// DecodeImage is LoadImage over a reader.
func DecodeImage(r io.Reader, flipY bool) (*image.RGBA, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	rgba := imageToRGBA(img)
	if flipY {
		FlipY(rgba)
	}
	return rgba, nil
}

// LoadPixels returns width, height, and the packed RGBA8 pixels of path.
func LoadPixels(path string, flipY bool) (w, h int, pix []byte, err error) {
	img, err := LoadImage(path, flipY)
	if err != nil {
		return 0, 0, nil, err
	}
	return img.Rect.Dx(), img.Rect.Dy(), img.Pix, nil
}

// FlipY reverses the rows of img in place.
func FlipY(img *image.RGBA) {
	h, row := img.Rect.Dy(), img.Rect.Dx()*4
	tmp := make([]byte, row)
	for y := 0; y < h/2; y++ {
		top := img.Pix[y*img.Stride : y*img.Stride+row]
		bottom := img.Pix[(h-1-y)*img.Stride : (h-1-y)*img.Stride+row]
		copy(tmp, top)
		copy(top, bottom)
		copy(bottom, tmp)
	}
}

// imageToRGBA returns img when it is already packed RGBA at the origin,
// otherwise a converted copy.
func imageToRGBA(img image.Image) *image.RGBA {
	if m, ok := img.(*image.RGBA); ok && m.Stride == m.Rect.Dx()*4 && m.Rect.Min == (image.Point{}) {
		return m
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
