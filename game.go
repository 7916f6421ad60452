package main

import (
	"fmt"
	"image/color"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"

	"github.com/milk9111/levelforge/common"
	"github.com/milk9111/levelforge/playtest"
	"github.com/milk9111/levelforge/prefabs"
)

var (
	walkableColor   = color.RGBA{R: 0x20, G: 0x40, B: 0x28, A: 0xff}
	unwalkableColor = color.RGBA{R: 0x40, G: 0x18, B: 0x18, A: 0xff}
	pathColor       = colornames.Yellow
)

// Game hosts a play-test scene in a window.
type Game struct {
	scene      *playtest.Scene
	exitUI     *ebitenui.UI
	confirming bool
	quit       bool
	showNodes  bool
	face       ebtext.Face
	frames     int
}

func NewGame(scene *playtest.Scene) *Game {
	g := &Game{
		scene:     scene,
		showNodes: true,
		face:      ebtext.NewGoXFace(basicfont.Face7x13),
	}
	g.exitUI = NewExitUI(g)
	return g
}

func (g *Game) requestQuit() {
	g.quit = true
}

func (g *Game) Update() error {
	if g.quit {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.confirming = !g.confirming
	}
	if g.confirming {
		g.exitUI.Update()
		return nil
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.showNodes = !g.showNodes
	}

	const dt = 1.0 / 60
	var dir common.Vec3
	if ebiten.IsKeyPressed(ebiten.KeyW) {
		dir.Z--
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) {
		dir.Z++
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) {
		dir.X--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) {
		dir.X++
	}
	if !dir.IsZero() {
		g.scene.MovePlayer(dir, dt)
	}
	g.scene.Update(dt)
	g.frames++
	return nil
}

// worldToScreen keeps the player at the centre of the view, looking down
// the Y axis.
func (g *Game) worldToScreen(p common.Vec3) (float32, float32) {
	pl := g.scene.Player().Position
	x := (p.X-pl.X)*common.PixelsPerCell + common.BaseWidth/2
	y := (p.Z-pl.Z)*common.PixelsPerCell + common.BaseHeight/2
	return float32(x), float32(y)
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Black)
	ppc := float32(common.PixelsPerCell)

	if g.showNodes {
		ng := g.scene.Grid()
		for x := 0; x < ng.SizeX(); x++ {
			for z := 0; z < ng.SizeZ(); z++ {
				n := ng.Node(x, z)
				clr := unwalkableColor
				if n.Walkable {
					clr = walkableColor
				}
				sx, sy := g.worldToScreen(n.World)
				vector.FillRect(screen, sx-ppc/2+1, sy-ppc/2+1, ppc-2, ppc-2, clr, false)
			}
		}
	}

	for _, p := range g.scene.Objects() {
		inset := float32(0)
		if p.Spec.Kind != prefabs.KindFloor {
			inset = 4
		}
		for _, c := range p.Footprint() {
			sx, sy := g.worldToScreen(common.CellToWorld(c, common.CellSize))
			vector.FillRect(screen, sx+inset, sy+inset, ppc-2*inset, ppc-2*inset, p.Spec.RGBA(), false)
		}
	}

	for _, e := range g.scene.Enemies() {
		path := e.Path()
		for i := 1; i < len(path); i++ {
			x0, y0 := g.worldToScreen(path[i-1].World)
			x1, y1 := g.worldToScreen(path[i].World)
			vector.StrokeLine(screen, x0, y0, x1, y1, 2, pathColor, true)
		}
		ex, ey := g.worldToScreen(e.Position)
		vector.FillCircle(screen, ex, ey, ppc/3, colornames.Red, true)
	}

	px, py := g.worldToScreen(g.scene.Player().Position)
	vector.FillCircle(screen, px, py, ppc/3, colornames.Deepskyblue, true)

	g.drawHUD(screen)

	if g.confirming {
		g.exitUI.Draw(screen)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	pl := g.scene.Player()
	s := fmt.Sprintf("level: %s  player: %s  walkable nodes: %d\n", g.scene.Level().Name, pl.Position, g.scene.Grid().WalkableCount())
	for _, e := range g.scene.Enemies() {
		s += fmt.Sprintf("enemy %d: %s\n", e.ID, e.State)
	}
	if err := g.scene.Warnings(); err != nil {
		s += "warnings: " + err.Error() + "\n"
	}
	s += "WASD move  N nodes  Esc exit"

	op := &ebtext.DrawOptions{}
	op.GeoM.Translate(8, 6)
	op.ColorScale.ScaleWithColor(colornames.White)
	op.LineSpacing = 14
	ebtext.Draw(screen, s, g.face, op)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return common.BaseWidth, common.BaseHeight
}
