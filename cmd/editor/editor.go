package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"github.com/milk9111/levelforge/common"
	"github.com/milk9111/levelforge/grid"
	"github.com/milk9111/levelforge/levels"
	"github.com/milk9111/levelforge/placement"
	"github.com/milk9111/levelforge/prefabs"
)

const (
	panSpeed     = 8.0
	statusFrames = 180
	maxHotkeys   = 9
)

// EditorGame is the Ebiten game for the level editor.
type EditorGame struct {
	ctrl  *placement.Controller
	queue placement.EventQueue

	catalogName string
	watcher     *prefabs.Watcher
	session     *levels.SessionStore

	levelDir  string
	levelName string

	camX, camY float64
	cursor     grid.Cell
	hasCursor  bool

	purpose  prefabs.Purpose
	items    []prefabs.ObjectSpec
	selected int

	status      string
	statusTimer int
	face        ebtext.Face
}

type editorConfig struct {
	levelDir    string
	levelName   string
	catalogName string
	watch       bool
}

func newEditorGame(cfg editorConfig, catalog *prefabs.Catalog, session *levels.SessionStore) *EditorGame {
	g := &EditorGame{
		ctrl:        placement.NewController(catalog, grid.NewLayers(), placement.NewObjectPlacer(nil), 0),
		catalogName: cfg.catalogName,
		session:     session,
		levelDir:    cfg.levelDir,
		levelName:   cfg.levelName,
		purpose:     prefabs.PurposeNone,
		face:        ebtext.NewGoXFace(basicfont.Face7x13),
		camX:        common.BaseWidth / 4,
		camY:        common.BaseHeight / 4,
	}
	g.refreshItems()

	if cfg.watch {
		w, err := prefabs.NewWatcher(prefabs.Dir)
		if err != nil {
			log.Printf("editor: watch %s: %v", prefabs.Dir, err)
		} else {
			g.watcher = w
		}
	}

	if g.levelName != "" {
		lvl, err := levels.Open(g.levelDir, g.levelName)
		if err != nil {
			log.Printf("editor: open level %s: %v", g.levelName, err)
		} else if err := g.ctrl.Load(lvl); err != nil {
			g.setStatus("loaded %s with problems: %v", g.levelName, err)
		} else {
			g.setStatus("loaded %s", g.levelName)
		}
	}
	return g
}

func (g *EditorGame) Update() error {
	g.pollWatcher()
	g.handleCamera()
	g.handlePointer()
	if err := g.handleKeys(); err != nil {
		return err
	}
	if err := g.ctrl.Pump(&g.queue); err != nil {
		g.setStatus("%v", err)
	}
	if g.statusTimer > 0 {
		g.statusTimer--
	}
	return nil
}

func (g *EditorGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return common.BaseWidth, common.BaseHeight
}

func (g *EditorGame) pollWatcher() {
	changes := g.watcher.Poll()
	reload := false
	for _, c := range changes {
		if c.Kind == prefabs.ChangeCatalog {
			reload = true
		}
	}
	if !reload {
		return
	}
	cat, err := prefabs.LoadCatalog(g.catalogName)
	if err != nil {
		g.setStatus("catalog reload failed: %v", err)
		return
	}
	g.ctrl.RefreshCatalog(cat)
	g.refreshItems()
	g.setStatus("catalog reloaded (%d objects)", cat.Len())
}

func (g *EditorGame) handleCamera() {
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.camX += panSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.camX -= panSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.camY += panSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.camY -= panSpeed
	}
}

func (g *EditorGame) handlePointer() {
	mx, my := ebiten.CursorPosition()
	cell := screenToCell(mx, my, g.camX, g.camY)
	if !g.hasCursor || cell != g.cursor {
		g.cursor, g.hasCursor = cell, true
		g.queue.Push(placement.Event{Kind: placement.EventPointerMove, Cell: cell})
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.queue.Push(placement.Event{Kind: placement.EventConfirm, Cell: cell})
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.queue.Push(placement.Event{Kind: placement.EventRelease, Cell: cell})
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		g.queue.Push(placement.Event{Kind: placement.EventCancel, Cell: cell})
	}
}

func (g *EditorGame) handleKeys() error {
	ctrlDown := ebiten.IsKeyPressed(ebiten.KeyControl)

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.queue.Push(placement.Event{Kind: placement.EventRotate, Cell: g.cursor})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyX) {
		g.queue.Push(placement.Event{Kind: placement.EventRemove, Cell: g.cursor})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.queue.Push(placement.Event{Kind: placement.EventCancel, Cell: g.cursor})
	}
	for i := 0; i < maxHotkeys; i++ {
		if inpututil.IsKeyJustPressed(ebiten.Key1 + ebiten.Key(i)) {
			g.selectItem(i)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.cyclePurpose()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		if spec, ok := g.selectedSpec(); ok {
			if err := g.ctrl.StartFilling(spec.ID); err != nil {
				g.setStatus("%v", err)
			}
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		if err := g.ctrl.StartRandom(); err != nil {
			g.setStatus("%v", err)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if err := g.ctrl.Reroll(); err != nil {
			g.setStatus("%v", err)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) && ctrlDown {
		if _, err := g.save(); err != nil {
			g.setStatus("save failed: %v", err)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyL) && ctrlDown {
		g.reload()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) && ctrlDown {
		g.ctrl.Clear()
		g.setStatus("scene cleared")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) && !ctrlDown {
		g.copyToClipboard()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		if err := g.markForPlayTest(); err != nil {
			g.setStatus("play test: %v", err)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) && ctrlDown {
		return ebiten.Termination
	}
	return nil
}

func (g *EditorGame) selectItem(i int) {
	if i < 0 || i >= len(g.items) {
		return
	}
	g.selected = i
	if err := g.ctrl.StartPlacement(g.items[i].ID); err != nil {
		g.setStatus("%v", err)
		return
	}
	g.setStatus("placing %s", g.items[i].Name)
}

func (g *EditorGame) selectedSpec() (prefabs.ObjectSpec, bool) {
	if g.selected < 0 || g.selected >= len(g.items) {
		return prefabs.ObjectSpec{}, false
	}
	return g.items[g.selected], true
}

// cyclePurpose steps the item panel filter through none and every purpose
// present in the catalog.
func (g *EditorGame) cyclePurpose() {
	purposes := append([]prefabs.Purpose{prefabs.PurposeNone}, g.ctrl.Catalog().Purposes()...)
	next := 0
	for i, p := range purposes {
		if p == g.purpose {
			next = (i + 1) % len(purposes)
			break
		}
	}
	g.purpose = purposes[next]
	g.refreshItems()
	g.setStatus("filter: %s", g.purpose)
}

func (g *EditorGame) refreshItems() {
	g.items = g.ctrl.Catalog().ByPurpose(g.purpose)
	if g.selected >= len(g.items) {
		g.selected = 0
	}
}

func (g *EditorGame) setStatus(format string, args ...any) {
	g.status = fmt.Sprintf(format, args...)
	g.statusTimer = statusFrames
	log.Printf("editor: %s", g.status)
}

// screenToCell maps a cursor position to the grid cell under it. Screen x
// is world X and screen y is world Z.
func screenToCell(mx, my int, camX, camY float64) grid.Cell {
	wx := (float64(mx) - camX) / common.PixelsPerCell * common.CellSize
	wz := (float64(my) - camY) / common.PixelsPerCell * common.CellSize
	return common.V(wx, 0, wz).FloorCell(common.CellSize)
}

// cellToScreen returns the top-left pixel of a cell.
func cellToScreen(c grid.Cell, camX, camY float64) (float32, float32) {
	return float32(float64(c.X)*common.PixelsPerCell + camX), float32(float64(c.Z)*common.PixelsPerCell + camY)
}

func isPlacementError(err error) bool {
	return errors.Is(err, grid.ErrAlreadyOccupied) ||
		errors.Is(err, placement.ErrNoFloor) ||
		errors.Is(err, placement.ErrSpawnExists) ||
		errors.Is(err, placement.ErrPatrolFull)
}
