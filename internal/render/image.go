package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"unicode"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Image sizes in pixels.
const (
	PlaceholderSize = 512
	DefaultSize     = 200
)

var (
	placeholderBG = color.RGBA{26, 26, 26, 255}
	ringColor     = color.RGBA{255, 60, 40, 255}
	outlineColor  = color.RGBA{255, 60, 40, 255}
	captionColor  = color.RGBA{255, 167, 38, 255}
	defaultBG     = color.RGBA{30, 30, 40, 255}
	defaultCircle = color.RGBA{100, 100, 120, 255}
)

// Placeholder draws the stand-in portrait for a character without art:
// concentric translucent red rings, the enlarged initial and the name.
func Placeholder(name string) ([]byte, error) {
	const size = PlaceholderSize
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(placeholderBG), image.Point{}, draw.Src)

	center := image.Pt(size/2, size/2)
	for i := 0; i < 5; i++ {
		c := ringColor
		c.A = uint8(50 - i*8)
		fillCircle(dst, center, 250-i*40, premultiply(c))
	}

	initial := strings.ToUpper(string(firstLetter(name)))
	glyphBox := image.Rect(0, 0, 140, 260).Add(image.Pt(center.X-70, 80))
	for _, off := range []image.Point{{-4, 0}, {4, 0}, {0, -4}, {0, 4}, {-3, -3}, {3, 3}, {-3, 3}, {3, -3}} {
		drawText(dst, initial, outlineColor, glyphBox.Add(off))
	}
	drawText(dst, initial, color.White, glyphBox)

	drawCaption(dst, name, captionColor, 420, 480)
	return encodePNG(dst)
}

// DefaultImage draws the generic "?" portrait served when nothing else can be.
func DefaultImage() ([]byte, error) {
	const size = DefaultSize
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(defaultBG), image.Point{}, draw.Src)
	fillCircle(dst, image.Pt(size/2, size/2), 80, defaultCircle)
	drawText(dst, "?", color.White, image.Rect(0, 0, 56, 104).Add(image.Pt(size/2-28, size/2-52)))
	return encodePNG(dst)
}

func firstLetter(name string) rune {
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
	}
	return '?'
}

// fillCircle composites c over every pixel within r of center.
func fillCircle(dst draw.Image, center image.Point, r int, c color.Color) {
	mask := &circle{p: center, r: r}
	draw.DrawMask(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, mask, image.Point{}, draw.Over)
}

// circle is an alpha mask for a filled disc.
type circle struct {
	p image.Point
	r int
}

func (c *circle) ColorModel() color.Model { return color.AlphaModel }

func (c *circle) Bounds() image.Rectangle {
	return image.Rect(c.p.X-c.r, c.p.Y-c.r, c.p.X+c.r, c.p.Y+c.r)
}

func (c *circle) At(x, y int) color.Color {
	xx, yy, rr := float64(x-c.p.X)+0.5, float64(y-c.p.Y)+0.5, float64(c.r)
	if xx*xx+yy*yy < rr*rr {
		return color.Alpha{255}
	}
	return color.Alpha{0}
}

func premultiply(c color.RGBA) color.RGBA {
	a := uint32(c.A)
	return color.RGBA{
		R: uint8(uint32(c.R) * a / 255),
		G: uint8(uint32(c.G) * a / 255),
		B: uint8(uint32(c.B) * a / 255),
		A: c.A,
	}
}

// textImage renders s with the 7x13 bitmap face onto a transparent image
// just large enough to hold it.
func textImage(s string, c color.Color) *image.RGBA {
	face := basicfont.Face7x13
	width := font.MeasureString(face, s).Ceil()
	if width == 0 {
		width = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, width, face.Height))
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(s)
	return img
}

// drawText scales the rendered text to fill box.
func drawText(dst draw.Image, s string, c color.Color, box image.Rectangle) {
	src := textImage(s, c)
	draw.CatmullRom.Scale(dst, box, src, src.Bounds(), draw.Over, nil)
}

// drawCaption centres s horizontally with its baseline band starting at y,
// scaled as large as fits within maxWidth.
func drawCaption(dst draw.Image, s string, c color.Color, y, maxWidth int) {
	src := textImage(s, c)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	scale := 3
	for scale > 1 && w*scale > maxWidth {
		scale--
	}
	bw, bh := w*scale, h*scale
	x := (dst.Bounds().Dx() - bw) / 2
	draw.CatmullRom.Scale(dst, image.Rect(x, y, x+bw, y+bh), src, src.Bounds(), draw.Over, nil)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
