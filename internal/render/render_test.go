package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pable/tkstats/internal/roster"
)

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	return img
}

func sameRGB(c color.Color, want color.RGBA) bool {
	r, g, b, _ := c.RGBA()
	return uint8(r>>8) == want.R && uint8(g>>8) == want.G && uint8(b>>8) == want.B
}

func TestPlaceholder(t *testing.T) {
	data, err := Placeholder("Devil Jin")
	if err != nil {
		t.Fatalf("Placeholder: %v", err)
	}
	img := decodePNG(t, data)
	if img.Bounds().Dx() != PlaceholderSize || img.Bounds().Dy() != PlaceholderSize {
		t.Fatalf("size = %v", img.Bounds())
	}
	if !sameRGB(img.At(0, 0), placeholderBG) {
		t.Errorf("corner should be background, got %v", img.At(0, 0))
	}
	if sameRGB(img.At(PlaceholderSize/2, 20), placeholderBG) {
		t.Error("outer ring not drawn")
	}
}

func TestDefaultImage(t *testing.T) {
	data, err := DefaultImage()
	if err != nil {
		t.Fatalf("DefaultImage: %v", err)
	}
	img := decodePNG(t, data)
	if img.Bounds().Dx() != DefaultSize {
		t.Errorf("size = %v", img.Bounds())
	}
	if !sameRGB(img.At(2, 2), defaultBG) {
		t.Errorf("corner should be background, got %v", img.At(2, 2))
	}
	if !sameRGB(img.At(DefaultSize/2, 25), defaultCircle) {
		t.Errorf("circle not drawn, got %v", img.At(DefaultSize/2, 25))
	}
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolve_PrioritisedDirs(t *testing.T) {
	root := t.TempDir()
	primary := filepath.Join(root, "renders")
	fallback := filepath.Join(root, "renders", "tekken7")

	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	pngData, _ := DefaultImage()
	writeFile(t, filepath.Join(fallback, "devil_jin.jpg"), jpeg)
	writeFile(t, filepath.Join(fallback, "paul.png"), pngData)
	writeFile(t, filepath.Join(primary, "paul.webp"), []byte("RIFF\x00\x00\x00\x00WEBPVP8 "))

	r := NewResolver(roster.Default(), []string{primary, fallback}, zerolog.Nop())

	img, err := r.Resolve("Devil Jin")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if img.Source != SourceFile || img.ContentType != "image/jpeg" {
		t.Errorf("devil jin: source %s type %s", img.Source, img.ContentType)
	}

	img, _ = r.Resolve("paul")
	if img.Path != filepath.Join(primary, "paul.webp") || img.ContentType != "image/webp" {
		t.Errorf("paul: expected primary webp, got %s (%s)", img.Path, img.ContentType)
	}

	img, _ = r.Resolve("Kazuya")
	if img.Source != SourcePlaceholder || img.ContentType != "image/png" {
		t.Errorf("kazuya: expected placeholder, got %s", img.Source)
	}

	img, _ = r.Resolve("Ryu")
	if img.Source != SourceDefault {
		t.Errorf("unknown character: expected default, got %s", img.Source)
	}

	if _, ok := r.Find("../../etc/passwd"); ok {
		t.Error("path traversal resolved")
	}
}

func TestWritePlaceholders(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	cat, err := roster.New([]string{"Jin", "Lucky Chloe"}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "jin.png"), []byte("keep"))

	n, err := WritePlaceholders(dir, cat, zerolog.Nop())
	if err != nil {
		t.Fatalf("WritePlaceholders: %v", err)
	}
	if n != 2 {
		t.Errorf("written = %d, want 2 (lucky_chloe + default)", n)
	}
	kept, _ := os.ReadFile(filepath.Join(dir, "jin.png"))
	if string(kept) != "keep" {
		t.Error("existing render was overwritten")
	}
	for _, f := range []string{"lucky_chloe.png", DefaultFile} {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Errorf("%s not written: %v", f, err)
		}
	}

	n, err = WritePlaceholders(dir, cat, zerolog.Nop())
	if err != nil || n != 0 {
		t.Errorf("second run wrote %d files, err %v", n, err)
	}
}
