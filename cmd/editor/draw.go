package main

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"

	"github.com/milk9111/levelforge/common"
	"github.com/milk9111/levelforge/placement"
	"github.com/milk9111/levelforge/prefabs"
)

var (
	gridLineColor  = color.RGBA{R: 0x30, G: 0x30, B: 0x38, A: 0xff}
	validColor     = color.RGBA{R: 0x30, G: 0xd0, B: 0x50, A: 0x90}
	invalidColor   = color.RGBA{R: 0xe0, G: 0x30, B: 0x30, A: 0x90}
	removeColor    = color.RGBA{R: 0xff, G: 0x80, B: 0x00, A: 0x90}
	hudPanelColor  = color.RGBA{A: 0xc0}
	markerOutline  = colornames.White
	statusBadColor = colornames.Salmon
)

func (g *EditorGame) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Black)
	g.drawGridLines(screen)
	g.drawPlaced(screen)
	g.drawPreview(screen)
	g.drawHUD(screen)
}

func (g *EditorGame) drawGridLines(screen *ebiten.Image) {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	ppc := float32(common.PixelsPerCell)
	ox := float32(g.camX) - float32(int(g.camX/common.PixelsPerCell))*ppc
	oy := float32(g.camY) - float32(int(g.camY/common.PixelsPerCell))*ppc
	for x := ox; x < float32(w); x += ppc {
		vector.StrokeLine(screen, x, 0, x, float32(h), 1, gridLineColor, false)
	}
	for y := oy; y < float32(h); y += ppc {
		vector.StrokeLine(screen, 0, y, float32(w), y, 1, gridLineColor, false)
	}
}

// drawPlaced draws floor before furniture, markers last.
func (g *EditorGame) drawPlaced(screen *ebiten.Image) {
	all := g.ctrl.Placer().All()
	sort.SliceStable(all, func(i, j int) bool { return drawRank(all[i].Spec.Kind) < drawRank(all[j].Spec.Kind) })
	ppc := float32(common.PixelsPerCell)
	for _, p := range all {
		clr := p.Spec.RGBA()
		for _, c := range p.Footprint() {
			x, y := cellToScreen(c, g.camX, g.camY)
			inset := float32(0)
			if p.Spec.Kind != prefabs.KindFloor {
				inset = 3
			}
			vector.FillRect(screen, x+inset, y+inset, ppc-2*inset, ppc-2*inset, clr, false)
		}
		if p.Spec.Kind.Marker() {
			x, y := cellToScreen(p.Anchor, g.camX, g.camY)
			vector.StrokeCircle(screen, x+ppc/2, y+ppc/2, ppc/3, 2, markerOutline, true)
		}
	}
}

func drawRank(k prefabs.Kind) int {
	switch k {
	case prefabs.KindFloor:
		return 0
	case prefabs.KindFurniture:
		return 1
	}
	return 2
}

func (g *EditorGame) drawPreview(screen *ebiten.Image) {
	pv := g.ctrl.Preview()
	if !pv.Active {
		return
	}
	clr := validColor
	if !pv.Valid {
		clr = invalidColor
	}
	if g.ctrl.Mode() == placement.ModeRemoving {
		clr = removeColor
	}
	ppc := float32(common.PixelsPerCell)
	for _, c := range pv.Footprint {
		x, y := cellToScreen(c, g.camX, g.camY)
		vector.FillRect(screen, x, y, ppc, ppc, clr, false)
	}
	if len(pv.Footprint) > 0 && pv.Spec.Name != "" {
		x, y := cellToScreen(pv.Cell, g.camX, g.camY)
		g.drawText(screen, pv.Spec.Name, x, y-14, colornames.White)
	}
}

func (g *EditorGame) drawHUD(screen *ebiten.Image) {
	var b strings.Builder
	pv := g.ctrl.Preview()
	fmt.Fprintf(&b, "mode: %s  cell: %s  facing: %s\n", g.ctrl.Mode(), g.cursor, pv.Dir)
	fmt.Fprintf(&b, "level: %s  objects: %d  floor cells: %d  furniture cells: %d\n",
		g.levelName, g.ctrl.Placer().Len(), g.ctrl.Layers().Floor.Cells(), g.ctrl.Layers().Furniture.Cells())
	fmt.Fprintf(&b, "filter: %s (Tab)\n", g.purpose)
	for i, spec := range g.items {
		if i >= maxHotkeys {
			break
		}
		sel := " "
		if i == g.selected {
			sel = ">"
		}
		fmt.Fprintf(&b, "%s%d %s %dx%d %s\n", sel, i+1, spec.Name, spec.Size.W, spec.Size.D, spec.Kind)
	}
	b.WriteString("R rotate  X remove  F fill  G random  Space reroll  Esc cancel\n")
	b.WriteString("Ctrl+S save  Ctrl+L reload  Ctrl+N clear  C copy  P play test\n")

	lines := strings.Count(b.String(), "\n") + 2
	vector.FillRect(screen, 0, 0, 520, float32(lines*14+8), hudPanelColor, false)
	g.drawText(screen, b.String(), 8, 6, colornames.White)

	if g.statusTimer > 0 && g.status != "" {
		clr := color.Color(colornames.Lightgreen)
		if err := g.ctrl.Feedback(); err != nil && isPlacementError(err) {
			clr = statusBadColor
		}
		g.drawText(screen, g.status, 8, float32(screen.Bounds().Dy()-20), clr)
	}
}

func (g *EditorGame) drawText(screen *ebiten.Image, s string, x, y float32, clr color.Color) {
	op := &ebtext.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(clr)
	op.LineSpacing = 14
	ebtext.Draw(screen, s, g.face, op)
}
