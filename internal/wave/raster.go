package wave

import (
	"image"
	"image/draw"

	"github.com/fogleman/gg"
)

// Rasterizer draws one window of samples into a fixed-size RGBA frame.
// Render is a pure function of its inputs: identical samples always
// produce byte-identical output.
type Rasterizer struct {
	spec  FrameSpec
	style Style
}

// NewRasterizer creates a rasterizer for the given frame geometry and style.
func NewRasterizer(spec FrameSpec, style Style) *Rasterizer {
	return &Rasterizer{spec: spec, style: style}
}

// Render rasterizes the samples as a connected antialiased line on a fully
// transparent background. Pixels the line does not cover keep alpha == 0.
// An empty window yields an all-transparent frame.
func (r *Rasterizer) Render(samples []float64) *image.RGBA {
	w := r.spec.Width
	h := r.spec.Height

	if len(samples) == 0 {
		return image.NewRGBA(image.Rect(0, 0, w, h))
	}

	dc := gg.NewContext(w, h)
	dc.SetRGBA(
		float64(r.style.Color.R)/255,
		float64(r.style.Color.G)/255,
		float64(r.style.Color.B)/255,
		float64(r.style.Color.A)/255,
	)
	dc.SetLineWidth(r.style.LineWidth)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)

	if len(samples) == 1 {
		dc.DrawPoint(float64(w)/2, r.sampleY(samples[0]), r.style.LineWidth/2)
		dc.Fill()
		return dc.Image().(*image.RGBA)
	}

	step := float64(w-1) / float64(len(samples)-1)
	for k, s := range samples {
		x := float64(k) * step
		y := r.sampleY(s)
		if k == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.Stroke()

	return dc.Image().(*image.RGBA)
}

// sampleY maps an amplitude in [-1,1] to a pixel row; positive amplitude
// goes up.
func (r *Rasterizer) sampleY(s float64) float64 {
	half := float64(r.spec.Height) / 2
	return half - s*r.style.VerticalScale*half
}

// Composite layers tracks in input order with the "over" operator onto a
// transparent background. All layers must share the same bounds.
func Composite(layers ...*image.RGBA) *image.RGBA {
	if len(layers) == 1 {
		return layers[0]
	}

	bounds := layers[0].Bounds()
	dst := image.NewRGBA(bounds)
	for _, layer := range layers {
		draw.Draw(dst, bounds, layer, bounds.Min, draw.Over)
	}
	return dst
}
