package web

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const sceneryCacheControl = "public, max-age=3600"

// Backdrops are drawn on a 32x24 grid of 8px blocks.
const (
	blockPx          = 8
	gridW, gridH     = 32, 24
	backdropW        = gridW * blockPx
	backdropH        = gridH * blockPx
	defaultSceneryID = "default"
)

var (
	inkNight = color.RGBA{0x18, 0x14, 0x28, 0xff}
	inkSky   = color.RGBA{0x45, 0x2c, 0x5c, 0xff}
	inkWater = color.RGBA{0x2d, 0x3a, 0x5c, 0xff}
	inkSand  = color.RGBA{0x8b, 0x73, 0x55, 0xff}
	inkStone = color.RGBA{0x55, 0x55, 0x66, 0xff}
	inkLeaf  = color.RGBA{0x2d, 0x5a, 0x3d, 0xff}
	inkMoss  = color.RGBA{0x6b, 0x8c, 0x5a, 0xff}
	inkLamp  = color.RGBA{0xc4, 0x6c, 0x32, 0xff}
)

// span fills rows [y0,y1) and columns [x0,x1) of the grid.
type span struct {
	x0, y0, x1, y1 int
	ink            color.RGBA
}

func rows(y0, y1 int, ink color.RGBA) span { return span{0, y0, gridW, y1, ink} }

// backdrops lists the spans painted for each scenery tag, back to front.
var backdrops = map[string][]span{
	defaultSceneryID: {rows(0, 12, inkSky), rows(12, gridH, inkLeaf)},
	"forest": {
		rows(0, 8, inkSky), rows(22, gridH, inkLeaf),
		{1, 15, 4, 21, inkLeaf}, {2, 21, 3, gridH, inkStone},
		{8, 13, 11, 21, inkLeaf}, {9, 21, 10, gridH, inkStone},
		{15, 16, 18, 21, inkLeaf}, {16, 21, 17, gridH, inkStone},
		{22, 14, 25, 21, inkLeaf}, {23, 21, 24, gridH, inkStone},
		{9, 13, 10, 14, inkMoss}, {23, 14, 24, 15, inkMoss},
	},
	"road":     {rows(0, 8, inkSky), rows(8, gridH, inkLeaf), {4, 11, 28, 14, inkStone}},
	"clearing": {rows(0, 6, inkSky), rows(6, gridH, inkLeaf), {10, 14, 22, 22, inkMoss}, {2, 19, 3, gridH, inkLeaf}},
	"shore":    {rows(0, 14, inkSky), rows(14, 18, inkWater), rows(18, gridH, inkSand)},
	"hills":    {rows(0, 6, inkSky), rows(8, 10, inkLeaf), rows(13, 15, inkLeaf), rows(18, 20, inkMoss), rows(22, gridH, inkLeaf)},
	"bridge":   {rows(0, 10, inkSky), rows(14, gridH, inkWater), {0, 12, gridW, 13, inkStone}, {6, 13, 8, 18, inkStone}, {24, 13, 26, 18, inkStone}},
	"river":    {rows(0, 8, inkSky), rows(8, gridH, inkLeaf), rows(11, 15, inkWater)},
	"cave":     {{4, 0, 6, gridH, inkStone}, {10, 0, 12, gridH, inkStone}, {16, 0, 18, gridH, inkStone}, {22, 0, 24, gridH, inkStone}, {28, 0, 30, gridH, inkStone}},
	"house_inside": {
		{4, 6, 28, gridH, inkStone}, {2, 5, 30, 6, inkLamp}, {13, 14, 19, gridH, inkNight},
	},
	"village": {
		rows(0, 10, inkSky),
		{2, 18, 6, gridH, inkStone}, {2, 17, 6, 18, inkLamp},
		{8, 20, 12, gridH, inkStone}, {8, 19, 12, 20, inkLamp},
		{14, 16, 18, gridH, inkStone}, {14, 15, 18, 16, inkLamp},
		{20, 19, 24, gridH, inkStone}, {20, 18, 24, 19, inkLamp},
		{26, 17, 30, gridH, inkStone}, {26, 16, 30, 17, inkLamp},
	},
}

func init() {
	backdrops["dungeon"] = backdrops["cave"]
	backdrops["castle_inside"] = backdrops["house_inside"]
	backdrops["town"] = backdrops["village"]
}

// GET /scenery/{tag}: a PNG from SceneryDir when present, otherwise a
// generated pixel-art backdrop.
func (s *Server) handleScenery(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(r.PathValue("tag"), ".png")
	if _, ok := backdrops[id]; !ok {
		http.NotFound(w, r)
		return
	}

	if b, ok := s.sceneryFile(id); ok {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", sceneryCacheControl)
		_, _ = w.Write(b)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, paintBackdrop(id)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", sceneryCacheControl)
	_, _ = w.Write(buf.Bytes())
}

// sceneryFile reads SceneryDir/<id>.png. id is already on the allowlist;
// the path is still checked to stay under the directory.
func (s *Server) sceneryFile(id string) ([]byte, bool) {
	if s.SceneryDir == "" {
		return nil, false
	}
	base := filepath.Clean(s.SceneryDir)
	p := filepath.Join(base, id+".png")
	rel, err := filepath.Rel(base, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, false
	}
	b, err := os.ReadFile(p) // #nosec G304 -- p is under SceneryDir
	if err != nil {
		return nil, false
	}
	return b, true
}

func paintBackdrop(id string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, backdropW, backdropH))
	fill(img, span{0, 0, gridW, gridH, inkNight})
	for _, sp := range backdrops[id] {
		fill(img, sp)
	}
	return img
}

func fill(img *image.RGBA, sp span) {
	x0, y0 := max(sp.x0, 0)*blockPx, max(sp.y0, 0)*blockPx
	x1, y1 := min(sp.x1, gridW)*blockPx, min(sp.y1, gridH)*blockPx
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img.SetRGBA(x, y, sp.ink)
		}
	}
}
