package render

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	gridMarginTop  = 20
	gridMarginLeft = 150
	gridTickLen    = 10
	gridMinStepX   = 100
	gridMinStepY   = 20
)

var (
	gridColor           = image.Black
	gridBackgroundColor = image.White
)

// GridOptions describes the physical axes a drift-plane or waterfall
// image spans, generalizing the teacher's frequency/time grid to
// frequency/drift-rate.
type GridOptions struct {
	LowFreqHz, HighFreqHz           float64
	LowDriftHzPerSec, HighDriftHzPerSec float64
}

func drawTick(canvas *image.RGBA, start image.Point, length int, horizontal bool) {
	for i := 0; i <= length; i++ {
		if horizontal {
			canvas.Set(start.X+i, start.Y, gridColor)
		} else {
			canvas.Set(start.X, start.Y+i, gridColor)
		}
	}
}

func findGridStepSize(step int, horizontal bool) int {
	gridMinStep := gridMinStepY
	if horizontal {
		gridMinStep = gridMinStepX
	}
	for step > gridMinStep {
		n := step / 2
		if n < gridMinStep {
			return step
		}
		step = n
	}
	return step
}

// GetReadableFreq formats a frequency in Hz with an SI suffix, the way
// the teacher's waterfall renderer labels its frequency axis.
func GetReadableFreq(freqHz float64) string {
	suffixes := []string{"Hz", "kHz", "MHz", "GHz", "THz"}
	exp := 0
	f := freqHz
	for math.Abs(f) > 1000 && exp < len(suffixes)-1 {
		f /= 1000.0
		exp++
	}
	return fmt.Sprintf("%.2f %s", f, suffixes[exp])
}

// DrawGrid enlarges source to make room for axis labels, then draws tick
// marks and labels for the frequency (X) and drift-rate (Y) axes.
func DrawGrid(source *image.RGBA, opts GridOptions) *image.RGBA {
	canvas := image.NewRGBA(image.Rectangle{
		Min: source.Bounds().Min,
		Max: image.Point{
			X: source.Bounds().Max.X - 1 + gridMarginLeft,
			Y: source.Bounds().Max.Y - 1 + gridMarginTop,
		},
	})
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{gridBackgroundColor}, canvas.Bounds().Min, draw.Src)
	r := canvas.Bounds()
	r.Min.X += gridMarginLeft
	r.Min.Y += gridMarginTop
	draw.Draw(canvas, r, source, source.Bounds().Min, draw.Src)

	xStep := findGridStepSize(source.Bounds().Max.X, true)
	for i := source.Bounds().Min.X; i < source.Bounds().Max.X; i += xStep {
		drawTick(canvas, image.Point{
			X: canvas.Bounds().Min.X + gridMarginLeft + i,
			Y: canvas.Bounds().Min.Y + gridMarginTop - gridTickLen,
		}, gridTickLen, false)
		point := fixed.Point26_6{
			X: fixed.Int26_6((canvas.Bounds().Min.X + gridMarginLeft + i + 5) * 64),
			Y: fixed.Int26_6((canvas.Bounds().Min.Y + gridMarginTop - 2) * 64),
		}
		d := &font.Drawer{
			Dst:  canvas,
			Src:  image.NewUniform(gridColor),
			Face: basicfont.Face7x13,
			Dot:  point,
		}
		freq := opts.LowFreqHz + (float64(i)*(opts.HighFreqHz-opts.LowFreqHz))/float64(source.Bounds().Max.X)
		d.DrawString(GetReadableFreq(freq))
	}

	yStep := findGridStepSize(source.Bounds().Max.Y, false)
	for i := source.Bounds().Min.Y; i < source.Bounds().Max.Y; i += yStep {
		drawTick(canvas, image.Point{
			X: canvas.Bounds().Min.X + gridMarginLeft - gridTickLen,
			Y: canvas.Bounds().Min.Y + gridMarginTop + i,
		}, gridTickLen, true)
		point := fixed.Point26_6{
			X: fixed.Int26_6((canvas.Bounds().Min.X + 5) * 64),
			Y: fixed.Int26_6((canvas.Bounds().Min.Y + gridMarginTop + i + 5) * 64),
		}
		d := &font.Drawer{
			Dst:  canvas,
			Src:  image.NewUniform(gridColor),
			Face: basicfont.Face7x13,
			Dot:  point,
		}
		driftRate := opts.LowDriftHzPerSec + (float64(i)*(opts.HighDriftHzPerSec-opts.LowDriftHzPerSec))/float64(source.Bounds().Max.Y)
		d.DrawString(fmt.Sprintf("%.3f Hz/s", driftRate))
	}

	return canvas
}
