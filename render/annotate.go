package render

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
)

// Annotator draws a title onto a rendered heatmap with a loaded TrueType
// face, composing with the basicfont-based tick labels DrawGrid already
// draws.
type Annotator struct {
	font *truetype.Font
	size float64
}

// NewAnnotator loads a TTF font from fontPath for later use by Title.
func NewAnnotator(fontPath string, size float64) (*Annotator, error) {
	raw, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("annotate: reading font %q: %w", fontPath, err)
	}
	parsed, err := freetype.ParseFont(raw)
	if err != nil {
		return nil, fmt.Errorf("annotate: parsing font %q: %w", fontPath, err)
	}
	return &Annotator{font: parsed, size: size}, nil
}

// Title draws text in black with its baseline starting at (x, y); the
// text is not centred or measured. Typically used to
// caption a drift-plane render with its owning coarse-channel and scan.
func (a *Annotator) Title(canvas *image.RGBA, text string, x, y int) error {
	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(a.font)
	ctx.SetFontSize(a.size)
	ctx.SetClip(canvas.Bounds())
	ctx.SetDst(canvas)
	ctx.SetSrc(image.NewUniform(color.Black))

	pt := freetype.Pt(x, y)
	if _, err := ctx.DrawString(text, pt); err != nil {
		return fmt.Errorf("annotate: drawing title: %w", err)
	}
	return nil
}
