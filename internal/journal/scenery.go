package journal

import (
	"math"

	"github.com/jung-kurt/gofpdf/v2"
)

type sketch func(pdf *gofpdf.Fpdf, x, y, r float64)

// sketches maps catalog scenery tags to pen drawings.
var sketches = map[string]sketch{
	"shore":         sketchShore,
	"forest":        sketchForest,
	"road":          sketchRoad,
	"bridge":        sketchBridge,
	"cave":          sketchCave,
	"dungeon":       sketchCave,
	"river":         sketchRiver,
	"hills":         sketchHills,
	"village":       sketchVillage,
	"town":          sketchVillage,
	"house_inside":  sketchHouse,
	"castle_inside": sketchHouse,
}

func drawStop(pdf *gofpdf.Fpdf, x, y float64, scenery string, fight, last bool) {
	r := stopSize / 2
	if last {
		pdf.SetDrawColor(80, 50, 20)
		pdf.SetLineWidth(2)
		pdf.Circle(x, y, r+4, "D")
	}
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(1.2)
	draw, ok := sketches[scenery]
	if !ok {
		draw = sketchUnknown
	}
	draw(pdf, x, y, r)
	if fight {
		sketchSwords(pdf, x, y, r)
	}
	pdf.SetLineWidth(1)
	pdf.SetDrawColor(80, 50, 30)
}

func drawCompass(pdf *gofpdf.Fpdf, cx, cy float64) {
	const rad = 20.0
	pdf.SetDrawColor(101, 67, 33)
	pdf.Circle(cx, cy, rad, "D")
	for i := 0; i < 8; i++ {
		angle := float64(i)*math.Pi/4 - math.Pi/2
		if i%2 == 0 {
			pdf.SetDrawColor(180, 40, 40)
			pdf.SetLineWidth(1.5)
		} else {
			pdf.SetDrawColor(180, 140, 60)
			pdf.SetLineWidth(1)
		}
		pdf.Line(cx, cy, cx+rad*math.Cos(angle), cy+rad*math.Sin(angle))
	}
	pdf.SetLineWidth(1)
	pdf.SetDrawColor(80, 50, 30)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(cx-4, cy-rad-13)
	pdf.CellFormat(8, 6, "N", "", 0, "C", false, 0, "")
}

func sketchShore(pdf *gofpdf.Fpdf, x, y, r float64) {
	for i := 0; i < 4; i++ {
		dx := -r + float64(i)*r*0.5
		pdf.Arc(x+dx+r*0.25, y+4, r*0.25, 4, 0, 180, 360, "D")
	}
	pdf.Circle(x+r*0.35, y-r*0.45, 5, "D")
}

func sketchForest(pdf *gofpdf.Fpdf, x, y, r float64) {
	for i, dx := range []float64{-r * 0.45, 0, r * 0.4} {
		h := 10 + float64(i%2)*6
		pdf.Line(x+dx, y+r*0.4, x+dx, y+r*0.4-h)
		pdf.Polygon([]gofpdf.PointType{
			{X: x + dx - 7, Y: y + r*0.4 - h},
			{X: x + dx, Y: y + r*0.4 - h - 16},
			{X: x + dx + 7, Y: y + r*0.4 - h},
		}, "D")
	}
}

func sketchRoad(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.Line(x-r*0.2, y-r*0.6, x-r*0.7, y+r*0.6)
	pdf.Line(x+r*0.2, y-r*0.6, x+r*0.7, y+r*0.6)
	pdf.SetDashPattern([]float64{3, 3}, 0)
	pdf.Line(x, y-r*0.6, x, y+r*0.6)
	pdf.SetDashPattern([]float64{}, 0)
}

func sketchBridge(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.Arc(x, y+r*0.3, r*0.7, r*0.45, 0, 180, 360, "D")
	pdf.Line(x-r*0.8, y+r*0.3-r*0.45, x+r*0.8, y+r*0.3-r*0.45)
	for _, dx := range []float64{-0.5, 0, 0.5} {
		pdf.Line(x+dx*r, y+r*0.3-r*0.45, x+dx*r, y+r*0.3-r*0.65)
	}
}

func sketchCave(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.Arc(x, y+r*0.4, r*0.75, r*0.7, 0, 180, 360, "D")
	pdf.Line(x-r*0.75, y+r*0.4, x+r*0.75, y+r*0.4)
	pdf.SetFillColor(40, 30, 20)
	pdf.Arc(x, y+r*0.4, r*0.35, r*0.35, 0, 180, 360, "F")
}

func sketchRiver(pdf *gofpdf.Fpdf, x, y, r float64) {
	for _, dy := range []float64{-5, 5} {
		pts := make([]gofpdf.PointType, 0, 9)
		for i := 0; i <= 8; i++ {
			t := float64(i) / 8
			pts = append(pts, gofpdf.PointType{X: x - r + 2*r*t, Y: y + dy + 3*math.Sin(t*2*math.Pi)})
		}
		for i := 1; i < len(pts); i++ {
			pdf.Line(pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y)
		}
	}
}

func sketchHills(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.Arc(x-r*0.4, y+r*0.3, r*0.55, r*0.5, 0, 180, 360, "D")
	pdf.Arc(x+r*0.35, y+r*0.3, r*0.5, r*0.35, 0, 180, 360, "D")
}

func sketchVillage(pdf *gofpdf.Fpdf, x, y, r float64) {
	for i, dx := range []float64{-r * 0.5, 0, r * 0.5} {
		h := 10 + float64(i)*3
		base := y + r*0.4
		pdf.Rect(x+dx-6, base-h, 12, h, "D")
		pdf.Line(x+dx-7, base-h, x+dx, base-h-7)
		pdf.Line(x+dx, base-h-7, x+dx+7, base-h)
	}
}

func sketchHouse(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.Rect(x-r*0.55, y-r*0.45, r*1.1, r*0.9, "D")
	pdf.Rect(x-r*0.2, y-r*0.15, r*0.4, r*0.6, "D")
	pdf.Circle(x+r*0.1, y+r*0.15, 1.2, "F")
}

func sketchUnknown(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.Circle(x, y, r*0.35, "D")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(x-4, y-5)
	pdf.CellFormat(8, 10, "?", "", 0, "C", false, 0, "")
}

func sketchSwords(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.SetDrawColor(150, 20, 20)
	pdf.SetLineWidth(1.6)
	pdf.Line(x-r*0.45, y-r*0.45, x+r*0.45, y+r*0.45)
	pdf.Line(x-r*0.45, y+r*0.45, x+r*0.45, y-r*0.45)
	pdf.Line(x-r*0.55, y-r*0.2, x-r*0.2, y-r*0.55)
	pdf.Line(x+r*0.2, y-r*0.55, x+r*0.55, y-r*0.2)
}
