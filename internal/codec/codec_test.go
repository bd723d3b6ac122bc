package codec

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/spf13/afero"

	"github.com/artemshloyda/imagetoolbox/internal/format"
)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, fs afero.Fs, path string, img image.Image) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	if err := afero.WriteFile(fs, path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestProbeAndOpen(t *testing.T) {
	fs := afero.NewMemMapFs()
	writePNG(t, fs, "/in/a.png", solid(30, 20, color.NRGBA{R: 255, A: 255}))

	d, err := Probe(fs, "/in/a.png")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if d.Width != 30 || d.Height != 20 || d.Format != format.PNG {
		t.Errorf("Probe() = %+v, want 30x20 PNG", d)
	}

	img, d2, err := Open(fs, "/in/a.png")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if img.Bounds().Dx() != 30 || d2 != d {
		t.Errorf("Open() descriptor = %+v, want %+v", d2, d)
	}
}

func TestOpen_Corrupt(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/in/bad.jpg", []byte("not an image"), 0644)

	if _, _, err := Open(fs, "/in/bad.jpg"); err == nil {
		t.Error("Open() on corrupt file should fail")
	}
	if _, err := Probe(fs, "/in/missing.jpg"); err == nil {
		t.Error("Probe() on missing file should fail")
	}
}

func TestHasTransparency(t *testing.T) {
	opaqueRGBA := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range opaqueRGBA.Pix {
		opaqueRGBA.Pix[i] = 0xff
	}
	translucentRGBA := image.NewRGBA(image.Rect(0, 0, 2, 2))

	tests := []struct {
		name string
		img  image.Image
		want bool
	}{
		{"nrgba", solid(2, 2, color.NRGBA{A: 255}), true},
		{"opaque rgba", opaqueRGBA, false},
		{"translucent rgba", translucentRGBA, true},
		{"gray", image.NewGray(image.Rect(0, 0, 2, 2)), false},
		{"ycbcr", image.NewYCbCr(image.Rect(0, 0, 2, 2), image.YCbCrSubsampleRatio420), false},
		{"paletted opaque", image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black}), false},
		{"paletted transparent", image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Transparent}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasTransparency(tt.img); got != tt.want {
				t.Errorf("HasTransparency() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFlatten_TransparentBecomesWhite(t *testing.T) {
	img := solid(4, 4, color.NRGBA{})
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})

	flat := Flatten(img)
	if got := flat.RGBAAt(1, 1); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("transparent pixel = %v, want white", got)
	}
	if got := flat.RGBAAt(0, 0); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("opaque pixel = %v, want red", got)
	}
}

func TestEncode(t *testing.T) {
	img := solid(16, 8, color.NRGBA{G: 200, A: 128})

	tests := []struct {
		name   string
		format format.Format
		decode func(*bytes.Buffer) (image.Image, error)
	}{
		{"jpeg", format.JPEG, func(b *bytes.Buffer) (image.Image, error) { return jpeg.Decode(b) }},
		{"png", format.PNG, func(b *bytes.Buffer) (image.Image, error) { return png.Decode(b) }},
		{"bmp falls back to jpeg", format.BMP, func(b *bytes.Buffer) (image.Image, error) { return jpeg.Decode(b) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, img, tt.format, 80); err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			out, err := tt.decode(&buf)
			if err != nil {
				t.Fatalf("decode error = %v", err)
			}
			if out.Bounds().Dx() != 16 || out.Bounds().Dy() != 8 {
				t.Errorf("decoded size = %v, want 16x8", out.Bounds())
			}
		})
	}
}

func TestWriteFile_Atomic(t *testing.T) {
	fs := afero.NewMemMapFs()

	size, err := WriteFile(fs, "/out/sub/x.png", solid(10, 10, color.NRGBA{B: 255, A: 255}), format.PNG, 0)
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if size <= 0 {
		t.Errorf("WriteFile() size = %d, want > 0", size)
	}

	if ok, _ := afero.Exists(fs, "/out/sub/x.converting.png"); ok {
		t.Error("temporary file left behind")
	}
	if got, _ := FileSize(fs, "/out/sub/x.png"); got != size {
		t.Errorf("FileSize() = %d, want %d", got, size)
	}
}

func TestResizeAndCrop(t *testing.T) {
	img := solid(200, 100, color.NRGBA{R: 10, A: 255})

	if r := Resize(img, 50, 25); r.Bounds().Dx() != 50 || r.Bounds().Dy() != 25 {
		t.Errorf("Resize() bounds = %v, want 50x25", r.Bounds())
	}
	if r := Resize(img, 200, 100); r != image.Image(img) {
		t.Error("Resize() to the same size should return the source")
	}

	c := Crop(img, image.Rect(150, 50, 300, 200))
	if c.Bounds().Dx() != 50 || c.Bounds().Dy() != 50 {
		t.Errorf("Crop() clipped bounds = %v, want 50x50", c.Bounds())
	}
}
