// seehuhn.de/go/pagerender - a tiled page renderer
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package testcases

import (
	"fmt"
	"io"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	"seehuhn.de/go/pdf/graphics"
	"seehuhn.de/go/pdf/graphics/color"
	"seehuhn.de/go/pdf/graphics/extgstate"

	"seehuhn.de/go/pagerender/scene"
)

// WritePDF writes the cases to w, as a PDF file with one page per case.
// One PDF unit corresponds to one pixel at zoom 1.
//
// The PDF is meant for visual comparison with other renderers.  Some
// paints have no simple PDF equivalent: gradients are drawn in the color
// of their first stop, and images are drawn as grey rectangles.
func WritePDF(w io.Writer, cases []Case) error {
	doc, err := document.WriteMultiPage(w, &pdf.Rectangle{URx: 1, URy: 1}, pdf.V1_7, nil)
	if err != nil {
		return err
	}
	for _, c := range cases {
		page := doc.AddPage()
		page.SetPageSize(&pdf.Rectangle{URx: float64(c.Width), URy: float64(c.Height)})
		writeOps(page.Builder, c)
		if err := page.Close(); err != nil {
			return fmt.Errorf("%s: %w", c.Name, err)
		}
	}
	return doc.Close()
}

// pdfState mirrors the graphics state of the scene builder.  The CTM is
// tracked here instead of in the PDF content stream, since PDF can only
// concatenate transformations, not replace them.
type pdfState struct {
	ctm          matrix.Matrix
	fill, stroke scene.Paint
}

func writeOps(b pdfBuilder, c Case) {
	// PDF has the origin in the bottom-left corner, pages have it in the
	// top-left corner.
	b.Transform(matrix.Matrix{1, 0, 0, -1, 0, float64(c.Height)})

	st := pdfState{ctm: matrix.Identity, fill: scene.Black, stroke: scene.Black}
	var stack []pdfState
	for _, op := range c.Ops {
		switch op := op.(type) {
		case scene.SetTransform:
			st.ctm = op.M
		case scene.Transform:
			st.ctm = op.M.Mul(st.ctm)
		case scene.Save:
			stack = append(stack, st)
			b.PushGraphicsState()
		case scene.Restore:
			if len(stack) == 0 {
				continue
			}
			st = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			b.PopGraphicsState()
		case scene.SetClip:
			// The clip must outlive the current operation, so it cannot
			// be drawn inside q/Q.  Transform the path directly instead.
			emitPath(b, op.Path.Transform(st.ctm))
			if op.Rule == scene.EvenOdd {
				b.ClipEvenOdd()
			} else {
				b.ClipNonZero()
			}
			b.EndPath()
		case scene.SetPaint:
			st.fill = op.Paint
		case scene.SetStrokePaint:
			st.stroke = op.Paint
		case scene.Fill:
			b.PushGraphicsState()
			b.Transform(st.ctm)
			setPaint(b, st.fill, true)
			emitPath(b, op.Path)
			fillPath(b, op.Rule)
			b.PopGraphicsState()
		case scene.Stroke:
			b.PushGraphicsState()
			b.Transform(st.ctm)
			setPaint(b, st.stroke, false)
			setLineStyle(b, op.Style)
			emitPath(b, op.Path)
			b.Stroke()
			b.PopGraphicsState()
		case scene.FillStroke:
			b.PushGraphicsState()
			b.Transform(st.ctm)
			setPaint(b, st.fill, true)
			emitPath(b, op.Path)
			fillPath(b, op.Rule)
			setPaint(b, st.stroke, false)
			setLineStyle(b, op.Style)
			emitPath(b, op.Path)
			b.Stroke()
			b.PopGraphicsState()
		case scene.DrawGlyph:
			m := op.M
			if m == (matrix.Matrix{}) {
				m = matrix.Identity
			}
			b.PushGraphicsState()
			b.Transform(m.Mul(st.ctm))
			setPaint(b, st.fill, true)
			emitPath(b, op.Outline)
			b.Fill()
			b.PopGraphicsState()
		case scene.DrawImage:
			r := op.Rect
			b.PushGraphicsState()
			b.Transform(st.ctm)
			b.SetFillColor(color.DeviceGray(0.5))
			b.Rectangle(r.LLx, r.LLy, r.URx-r.LLx, r.URy-r.LLy)
			b.Fill()
			b.PopGraphicsState()
		}
	}
	for range stack {
		b.PopGraphicsState()
	}
}

// pdfBuilder lists the content stream operators used by [WritePDF].
type pdfBuilder interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	CurveTo(x1, y1, x2, y2, x3, y3 float64)
	ClosePath()
	Rectangle(x, y, width, height float64)
	Fill()
	FillEvenOdd()
	Stroke()
	EndPath()
	ClipNonZero()
	ClipEvenOdd()
	PushGraphicsState()
	PopGraphicsState()
	Transform(m matrix.Matrix)
	SetFillColor(c color.Color)
	SetStrokeColor(c color.Color)
	SetExtGState(gs *extgstate.ExtGState)
	SetLineWidth(width float64)
	SetLineCap(cap graphics.LineCapStyle)
	SetLineJoin(join graphics.LineJoinStyle)
	SetMiterLimit(limit float64)
	SetLineDash(pattern []float64, phase float64)
}

func emitPath(b pdfBuilder, p path.Path) {
	for cmd, pts := range p.ToCubic() {
		switch cmd {
		case path.CmdMoveTo:
			b.MoveTo(pts[0].X, pts[0].Y)
		case path.CmdLineTo:
			b.LineTo(pts[0].X, pts[0].Y)
		case path.CmdCubeTo:
			b.CurveTo(pts[0].X, pts[0].Y, pts[1].X, pts[1].Y, pts[2].X, pts[2].Y)
		case path.CmdClose:
			b.ClosePath()
		}
	}
}

func fillPath(b pdfBuilder, rule scene.FillRule) {
	if rule == scene.EvenOdd {
		b.FillEvenOdd()
	} else {
		b.Fill()
	}
}

func setPaint(b pdfBuilder, p scene.Paint, fill bool) {
	var c scene.Color
	switch p := p.(type) {
	case scene.Color:
		c = p
	case *scene.LinearGradient:
		if len(p.Stops) > 0 {
			c = p.Stops[0].Color
		}
	case *scene.RadialGradient:
		if len(p.Stops) > 0 {
			c = p.Stops[0].Color
		}
	}

	col := color.DeviceRGB{c.R, c.G, c.B}
	if fill {
		b.SetFillColor(col)
	} else {
		b.SetStrokeColor(col)
	}
	if c.A < 1 {
		gs := &extgstate.ExtGState{SingleUse: true}
		if fill {
			gs.Set = graphics.StateFillAlpha
			gs.FillAlpha = c.A
		} else {
			gs.Set = graphics.StateStrokeAlpha
			gs.StrokeAlpha = c.A
		}
		b.SetExtGState(gs)
	}
}

func setLineStyle(b pdfBuilder, s scene.StrokeStyle) {
	b.SetLineWidth(s.Width)
	b.SetLineCap(s.Cap)
	b.SetLineJoin(s.Join)
	if s.MiterLimit >= 1 {
		b.SetMiterLimit(s.MiterLimit)
	}
	if len(s.Dash) > 0 {
		b.SetLineDash(s.Dash, s.DashPhase)
	}
}
