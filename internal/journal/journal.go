// Package journal renders a finished quest as a printable PDF keepsake: the
// scenes visited drawn along a trail, the adventure log and the cards won.
package journal

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/jung-kurt/gofpdf/v2"

	"taskventure/internal/game"
	"taskventure/internal/progression"
)

const (
	pageW     = 595.0
	pageH     = 842.0
	margin    = 40.0
	stopSize  = 52.0
	trailStep = 96.0
	perRow    = 4
	bodySize  = 9
	titleSize = 18
	labelSize = 7
	cardW     = 110.0
	cardH     = 64.0
)

var outcomeText = map[game.Phase]string{
	game.PhaseCompleted: "Quest complete",
	game.PhaseAbandoned: "Quest abandoned",
	game.PhaseDefeated:  "Defeated",
}

// Generate returns the PDF journal of rec. hero names the player on the
// title line and may be empty.
func Generate(rec game.Record, hero string) ([]byte, error) {
	if rec.QuestID == "" {
		return nil, fmt.Errorf("journal needs a finished quest")
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin+12, margin+12, margin+12)
	pdf.SetAutoPageBreak(true, margin+16)
	pdf.SetHeaderFunc(func() { drawParchment(pdf) })
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	y := drawTitle(pdf, tr, rec, hero)
	y = drawTrail(pdf, tr, rec.Stops, rec.Outcome, y)
	drawLog(pdf, tr, rec.Log, y)
	if rec.Rewards != nil {
		drawRewards(pdf, tr, rec.Rewards)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render journal: %w", err)
	}
	return buf.Bytes(), nil
}

func drawParchment(pdf *gofpdf.Fpdf) {
	pdf.SetFillColor(245, 235, 210)
	pdf.Rect(0, 0, pageW, pageH, "F")
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(2)
	pdf.Polygon(raggedFrame(margin, margin, pageW-2*margin, pageH-2*margin, 14, 4), "D")
	pdf.SetLineWidth(1)
	pdf.SetDrawColor(80, 50, 30)
	pdf.SetTextColor(80, 50, 30)
}

// raggedFrame walks the rectangle clockwise with a sine wobble on each edge.
func raggedFrame(x, y, w, h float64, steps int, amp float64) []gofpdf.PointType {
	corners := [][4]float64{
		{x, y, w, 0},
		{x + w, y, 0, h},
		{x + w, y + h, -w, 0},
		{x, y + h, 0, -h},
	}
	pts := make([]gofpdf.PointType, 0, 4*steps+1)
	for side, c := range corners {
		for i := 0; i < steps; i++ {
			t := float64(i) / float64(steps)
			phase := float64(i) * (0.5 + 0.1*float64(side))
			pts = append(pts, gofpdf.PointType{
				X: c[0] + t*c[2] + amp*math.Sin(phase),
				Y: c[1] + t*c[3] + amp*math.Cos(phase),
			})
		}
	}
	return append(pts, pts[0])
}

func drawTitle(pdf *gofpdf.Fpdf, tr func(string) string, rec game.Record, hero string) float64 {
	left := margin + 12
	width := pageW - 2*left

	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.SetXY(left, margin+14)
	pdf.CellFormat(width, 20, tr(rec.Title), "", 1, "L", false, 0, "")

	sub := outcomeText[rec.Outcome]
	if rec.Daily {
		sub = "Daily quest · " + sub
	}
	if hero != "" {
		sub = hero + " · " + sub
	}
	if !rec.FinishedAt.IsZero() {
		sub += " · " + rec.FinishedAt.Format("2 January 2006")
	}
	pdf.SetFont("Helvetica", "I", bodySize)
	pdf.SetX(left)
	pdf.CellFormat(width, 12, tr(sub), "", 1, "L", false, 0, "")

	drawCompass(pdf, pageW-margin-48, margin+40)
	return margin + 90
}

// drawTrail lays the stops out boustrophedon and joins them with a dashed
// red line. It returns the y below the last row.
func drawTrail(pdf *gofpdf.Fpdf, tr func(string) string, stops []game.Stop, outcome game.Phase, top float64) float64 {
	if len(stops) == 0 {
		return top
	}
	pos := trailPositions(len(stops), margin+12+stopSize, top+stopSize/2)

	pdf.SetDrawColor(180, 40, 40)
	pdf.SetLineWidth(2)
	pdf.SetDashPattern([]float64{10, 6}, 0)
	for i := 1; i < len(pos); i++ {
		pdf.Line(pos[i-1][0], pos[i-1][1], pos[i][0], pos[i][1])
	}
	pdf.SetDashPattern([]float64{}, 0)
	pdf.SetLineWidth(1)

	for i, st := range stops {
		x, y := pos[i][0], pos[i][1]
		last := i == len(stops)-1
		drawStop(pdf, x, y, st.Scenery, st.Combat, last)

		pdf.SetFont("Helvetica", "B", labelSize)
		pdf.SetTextColor(40, 25, 15)
		pdf.SetXY(x-trailStep/2+4, y+stopSize/2+4)
		pdf.CellFormat(trailStep-8, 9, tr(stopLabel(st, i)), "", 0, "C", false, 0, "")
		if last {
			pdf.SetFont("Helvetica", "I", labelSize)
			pdf.SetXY(x-trailStep/2+4, y+stopSize/2+13)
			pdf.CellFormat(trailStep-8, 8, tr(outcomeText[outcome]), "", 0, "C", false, 0, "")
		}
	}
	pdf.SetTextColor(80, 50, 30)

	rows := (len(stops) + perRow - 1) / perRow
	return top + float64(rows)*trailStep + 8
}

func trailPositions(n int, x0, y0 float64) [][2]float64 {
	pos := make([][2]float64, n)
	for i := range pos {
		row, col := i/perRow, i%perRow
		if row%2 == 1 {
			col = perRow - 1 - col
		}
		pos[i] = [2]float64{x0 + float64(col)*trailStep, y0 + float64(row)*trailStep}
	}
	return pos
}

func stopLabel(st game.Stop, i int) string {
	name := strings.ReplaceAll(st.Scenery, "_", " ")
	if name == "" {
		name = fmt.Sprintf("stop %d", i+1)
	}
	if st.Combat {
		name += " (fight)"
	}
	return strings.ToUpper(name)
}

func drawLog(pdf *gofpdf.Fpdf, tr func(string) string, lines []string, top float64) {
	left := margin + 12
	width := pageW - 2*left
	pdf.SetXY(left, top)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(width, 16, "Adventure log", "B", 1, "L", false, 0, "")
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", bodySize)
	for _, line := range lines {
		pdf.SetX(left)
		pdf.MultiCell(width, 12, tr(line), "", "L", false)
	}
}

func drawRewards(pdf *gofpdf.Fpdf, tr func(string) string, r *game.RewardSummary) {
	left := margin + 12
	width := pageW - 2*left
	pdf.Ln(10)
	if pdf.GetY()+40+cardH > pageH-margin-16 {
		pdf.AddPage()
	}
	pdf.SetX(left)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(width, 16, "Rewards", "B", 1, "L", false, 0, "")
	pdf.Ln(4)
	pdf.SetX(left)
	pdf.SetFont("Helvetica", "", bodySize)
	pdf.MultiCell(width, 12, tr(r.Text()), "", "L", false)
	pdf.Ln(6)

	perLine := int(width / (cardW + 10))
	y := pdf.GetY()
	for i, c := range r.Cards {
		col := i % perLine
		if i > 0 && col == 0 {
			y += cardH + 10
			if y+cardH > pageH-margin-16 {
				pdf.AddPage()
				y = margin + 16
			}
		}
		drawCard(pdf, tr, c, left+float64(col)*(cardW+10), y)
	}
}

func drawCard(pdf *gofpdf.Fpdf, tr func(string) string, c progression.Card, x, y float64) {
	pdf.SetFillColor(250, 245, 230)
	pdf.SetDrawColor(101, 67, 33)
	pdf.SetLineWidth(1.2)
	pdf.RoundedRect(x, y, cardW, cardH, 6, "1234", "FD")
	pdf.SetLineWidth(1)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(x+4, y+5)
	pdf.CellFormat(cardW-8, 10, tr(c.Name), "", 2, "C", false, 0, "")
	pdf.SetFont("Helvetica", "I", labelSize)
	pdf.SetX(x + 4)
	pdf.CellFormat(cardW-8, 9, tr(c.Rarity), "", 2, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", labelSize)
	pdf.SetX(x + 4)
	pdf.MultiCell(cardW-8, 8, tr(c.Effect), "", "C", false)
}
