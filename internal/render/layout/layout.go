package layout

import (
	"image"

	"github.com/rook-computer/crhashtag/internal/card"
)

// Normalize ensures Min is <= Max on both axes.
func Normalize(rect image.Rectangle) image.Rectangle {
	if rect.Min.X > rect.Max.X {
		rect.Min.X, rect.Max.X = rect.Max.X, rect.Min.X
	}
	if rect.Min.Y > rect.Max.Y {
		rect.Min.Y, rect.Max.Y = rect.Max.Y, rect.Min.Y
	}
	return rect
}

// FitSize returns the largest (w, h) with the aspect ratio of src that
// fits into box. Dimensions are truncated and never below 1.
func FitSize(src image.Point, box card.Size) (int, int) {
	if src.X <= 0 || src.Y <= 0 || box.W <= 0 || box.H <= 0 {
		return 0, 0
	}
	aspect := float64(src.X) / float64(src.Y)
	width, height := box.W, box.H
	if float64(box.W)/float64(box.H) > aspect {
		width = int(float64(box.H) * aspect)
	} else {
		height = int(float64(box.W) / aspect)
	}
	return max(width, 1), max(height, 1)
}

// Center returns a rectangle of size (widthPx, heightPx) centered in rect.
func Center(rect image.Rectangle, widthPx, heightPx int) image.Rectangle {
	rect = Normalize(rect)
	x := rect.Min.X + (rect.Dx()-widthPx)/2
	y := rect.Min.Y + (rect.Dy()-heightPx)/2
	return image.Rect(x, y, x+widthPx, y+heightPx)
}

// FitSquare returns the largest square centered in rect.
func FitSquare(rect image.Rectangle) image.Rectangle {
	rect = Normalize(rect)
	size := min(rect.Dx(), rect.Dy())
	return Center(rect, size, size)
}

// Scale maps coordinates between a preview surface and the export canvas.
// Both are square; From is the preview side, To the canvas side.
type Scale struct {
	From int
	To   int
}

func (s Scale) factor() float64 {
	if s.From <= 0 || s.To <= 0 {
		return 1
	}
	return float64(s.To) / float64(s.From)
}

// ToCanvas converts a preview coordinate (e.g. a drag end) to canvas pixels.
func (s Scale) ToCanvas(p card.Point) card.Point {
	f := s.factor()
	return card.Point{X: p.X * f, Y: p.Y * f}
}

// ToPreview converts a canvas coordinate to preview pixels.
func (s Scale) ToPreview(p card.Point) card.Point {
	f := s.factor()
	return card.Point{X: p.X / f, Y: p.Y / f}
}
