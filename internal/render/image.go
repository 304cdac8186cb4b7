package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/scholarnet/kgraph/internal/force"
)

// LabelSize is the label font size in canvas pixels.
const LabelSize = 12

var (
	fontOnce sync.Once
	fontData *opentype.Font
	fontErr  error
)

func labelFont() (*opentype.Font, error) {
	fontOnce.Do(func() {
		fontData, fontErr = opentype.Parse(goregular.TTF)
	})
	return fontData, fontErr
}

// Image is a raster Surface. Drawing happens on a buffer Scale times larger
// than the output, which is downsampled on Image() for smooth edges.
type Image struct {
	width, height int
	scale         float64
	buf           *image.RGBA
	face          font.Face
}

// NewImage returns a width x height surface supersampled scale times.
// A scale below 1 is treated as 1.
func NewImage(width, height, scale int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	if scale < 1 {
		scale = 1
	}
	fnt, err := labelFont()
	if err != nil {
		return nil, fmt.Errorf("parsing label font: %w", err)
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64(LabelSize * scale),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("creating label face: %w", err)
	}
	return &Image{
		width:  width,
		height: height,
		scale:  float64(scale),
		buf:    image.NewRGBA(image.Rect(0, 0, width*scale, height*scale)),
		face:   face,
	}, nil
}

// Bounds returns the output image size.
func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.width, m.height)
}

func (m *Image) Clear(bg color.NRGBA) {
	draw.Draw(m.buf, m.buf.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
}

func (m *Image) Line(a, b force.Vec, width float64, c color.NRGBA) {
	if width <= 0 || c.A == 0 {
		return
	}
	a, b = a.Scale(m.scale), b.Scale(m.scale)
	half := width * m.scale / 2
	if half < 0.5 {
		half = 0.5
	}
	ab := b.Sub(a)
	lenSq := ab.X*ab.X + ab.Y*ab.Y

	x0, x1 := int(math.Floor(math.Min(a.X, b.X)-half-1)), int(math.Ceil(math.Max(a.X, b.X)+half+1))
	y0, y1 := int(math.Floor(math.Min(a.Y, b.Y)-half-1)), int(math.Ceil(math.Max(a.Y, b.Y)+half+1))
	m.fill(x0, y0, x1, y1, c, func(p force.Vec) float64 {
		t := 0.0
		if lenSq > 0 {
			ap := p.Sub(a)
			t = (ap.X*ab.X + ap.Y*ab.Y) / lenSq
			t = math.Max(0, math.Min(1, t))
		}
		d := p.Dist(a.Add(ab.Scale(t)))
		return half - d + 0.5
	})
}

func (m *Image) Circle(center force.Vec, r float64, c color.NRGBA) {
	if r <= 0 || c.A == 0 {
		return
	}
	center = center.Scale(m.scale)
	r *= m.scale
	m.fill(int(center.X-r-1), int(center.Y-r-1), int(center.X+r+2), int(center.Y+r+2), c, func(p force.Vec) float64 {
		return r - p.Dist(center) + 0.5
	})
}

// Ring strokes a circle outline of the given width centered on radius r.
func (m *Image) Ring(center force.Vec, r, width float64, c color.NRGBA) {
	if width <= 0 || c.A == 0 {
		return
	}
	center = center.Scale(m.scale)
	r *= m.scale
	half := width * m.scale / 2
	outer := r + half
	m.fill(int(center.X-outer-1), int(center.Y-outer-1), int(center.X+outer+2), int(center.Y+outer+2), c, func(p force.Vec) float64 {
		d := p.Dist(center)
		return math.Min(d-(r-half), outer-d) + 0.5
	})
}

func (m *Image) Text(at force.Vec, s string, c color.NRGBA) {
	if s == "" {
		return
	}
	at = at.Scale(m.scale)
	w := font.MeasureString(m.face, s)
	d := &font.Drawer{
		Dst:  m.buf,
		Src:  image.NewUniform(c),
		Face: m.face,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(at.X*64) - w/2,
			Y: fixed.Int26_6(at.Y * 64),
		},
	}
	d.DrawString(s)
}

// fill blends c into every buffer pixel in [x0,x1)x[y0,y1) with coverage
// cover(pixel center) clamped to [0, 1].
func (m *Image) fill(x0, y0, x1, y1 int, c color.NRGBA, cover func(force.Vec) float64) {
	r := image.Rect(x0, y0, x1, y1).Intersect(m.buf.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			k := cover(force.Vec{X: float64(x) + 0.5, Y: float64(y) + 0.5})
			if k <= 0 {
				continue
			}
			m.blend(x, y, c, math.Min(k, 1))
		}
	}
}

// blend composites c over the premultiplied pixel at (x, y).
func (m *Image) blend(x, y int, c color.NRGBA, coverage float64) {
	a := float64(c.A) / 255 * coverage
	if a <= 0 {
		return
	}
	off := m.buf.PixOffset(x, y)
	pix := m.buf.Pix[off : off+4 : off+4]
	pix[0] = uint8(float64(c.R)*a + float64(pix[0])*(1-a) + 0.5)
	pix[1] = uint8(float64(c.G)*a + float64(pix[1])*(1-a) + 0.5)
	pix[2] = uint8(float64(c.B)*a + float64(pix[2])*(1-a) + 0.5)
	pix[3] = uint8(255*a + float64(pix[3])*(1-a) + 0.5)
}

// Image returns the downsampled output.
func (m *Image) Image() *image.RGBA {
	if m.scale == 1 {
		out := image.NewRGBA(m.buf.Bounds())
		copy(out.Pix, m.buf.Pix)
		return out
	}
	out := image.NewRGBA(m.Bounds())
	draw.CatmullRom.Scale(out, out.Bounds(), m.buf, m.buf.Bounds(), draw.Src, nil)
	return out
}

// EncodePNG writes the output image as PNG.
func (m *Image) EncodePNG(w io.Writer) error {
	return png.Encode(w, m.Image())
}
