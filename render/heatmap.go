// Package render draws drift-plane and waterfall heatmaps, generalizing
// the teacher's sqlite-backed waterfall renderer (extraction/extraction.go,
// render/render.go) from dB-over-time images to integrated-power-over-
// drift-rate images of a core.FrequencyDriftPlane or core.Matrix.
package render

import (
	"image"
	"image/color"
	"math"

	"github.com/hb9tf/bliss/core"
)

// gradient is the same black -> blue -> cyan -> green -> yellow -> red ->
// white heatmap gradient the teacher's waterfall renderer uses.
var gradient = map[int]color.RGBA{
	0: {0, 0, 0, 255},
	1: {0, 0, 255, 255},
	2: {0, 255, 255, 255},
	3: {0, 255, 0, 255},
	4: {255, 255, 0, 255},
	5: {255, 0, 0, 255},
	6: {255, 255, 255, 255},
}

// GetColor maps a 16-bit level onto the heatmap gradient.
// http://www.andrewnoske.com/wiki/Code_-_heatmaps_and_color_gradients
func GetColor(lvl uint16) color.RGBA {
	for i := 0; i < len(gradient); i++ {
		currC := gradient[i]
		currV := uint16(i * math.MaxUint16 / len(gradient))
		if lvl < currV {
			prevIdx := int(math.Max(0.0, float64(i-1)))
			prevC := gradient[prevIdx]
			prevV := uint16(prevIdx * math.MaxUint16 / len(gradient))
			fract := 0.0
			if currV != prevV {
				fract = (float64(lvl) - float64(prevV)) / (float64(currV) - float64(prevV))
			}
			return color.RGBA{
				uint8(float64(prevC.R) + (float64(currC.R)-float64(prevC.R))*fract),
				uint8(float64(prevC.G) + (float64(currC.G)-float64(prevC.G))*fract),
				uint8(float64(prevC.B) + (float64(currC.B)-float64(prevC.B))*fract),
				uint8(float64(prevC.A) + (float64(currC.A)-float64(prevC.A))*fract),
			}
		}
	}
	return gradient[len(gradient)-1]
}

// Heatmap rasterizes a (rows x cols) power tensor into an RGBA image, one
// pixel per cell, scaling the observed [min,max] power range onto the
// gradient.
func Heatmap(rows, cols int, at func(r, c int) float64) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, cols, rows))
	if rows == 0 || cols == 0 {
		return canvas
	}

	min, max := at(0, 0), at(0, 0)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := at(r, c)
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	span := max - min
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			var lvl uint16
			if span != 0 {
				lvl = uint16((at(r, c) - min) * math.MaxUint16 / span)
			}
			canvas.SetRGBA(c, r, GetColor(lvl))
		}
	}
	return canvas
}

// DriftPlaneHeatmap rasterizes a FrequencyDriftPlane's integrated power
// into an image, one row per drift rate and one column per frequency bin.
func DriftPlaneHeatmap(plane *core.FrequencyDriftPlane) *image.RGBA {
	return Heatmap(plane.Power.Rows, plane.Power.Cols, plane.Power.At)
}

// WaterfallHeatmap rasterizes a coarse channel's raw power tensor, one
// row per time step and one column per frequency bin.
func WaterfallHeatmap(m *core.Matrix) *image.RGBA {
	return Heatmap(m.Rows, m.Cols, m.At)
}
