package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/levelforge/common"
	"github.com/milk9111/levelforge/levels"
	"github.com/milk9111/levelforge/playtest"
	"github.com/milk9111/levelforge/prefabs"
)

// fallbackLevel is the embedded sample opened when nothing else is asked for.
const fallbackLevel = "courtyard"

func main() {
	levelName := flag.String("level", "", "level name to play (basename, .json optional); defaults to the level handed over by the editor")
	levelDir := flag.String("dir", levels.DefaultDir, "directory levels are loaded from")
	catalogName := flag.String("catalog", prefabs.DefaultCatalog, "object catalog")
	headless := flag.Bool("headless", false, "run the simulation without a window and log enemy positions")
	ticks := flag.Int("ticks", 600, "ticks to simulate in headless mode")
	flag.Parse()

	catalog, err := prefabs.LoadCatalog(*catalogName)
	if err != nil {
		log.Fatalf("playtest: load catalog: %v", err)
	}

	session := levels.OpenSessionStore(levels.AppName)
	lvl, err := resolveLevel(*levelDir, *levelName, session)
	if err != nil {
		log.Fatalf("playtest: %v", err)
	}

	scene, err := playtest.NewScene(lvl, catalog, playtest.Options{Nav: playtest.DefaultNavConfig()})
	if err != nil {
		log.Fatalf("playtest: build scene: %v", err)
	}

	if *headless {
		runHeadless(scene, *ticks)
		return
	}

	ebiten.SetWindowSize(common.BaseWidth, common.BaseHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle("Play Test - " + lvl.Name)

	if err := ebiten.RunGame(NewGame(scene)); err != nil {
		log.Fatal(err)
	}
}

// resolveLevel picks the -level flag first, then the level the editor marked
// in the session, then the embedded sample.
func resolveLevel(dir, name string, session *levels.SessionStore) (*levels.Level, error) {
	if name == "" {
		if sdir, sname, ok := session.Take(); ok {
			name = sname
			if sdir != "" {
				dir = sdir
			}
			log.Printf("playtest: opening %s handed over by the editor", name)
		}
	}
	if name == "" {
		name = fallbackLevel
	}
	lvl, err := levels.Open(dir, name)
	if err != nil {
		return nil, fmt.Errorf("open level %s: %w", name, err)
	}
	if lvl.Name == "" {
		lvl.Name = name
	}
	return lvl, nil
}

func runHeadless(scene *playtest.Scene, ticks int) {
	const dt = 1.0 / 60
	for i := 1; i <= ticks; i++ {
		scene.Update(dt)
		if i%60 != 0 {
			continue
		}
		for _, e := range scene.Enemies() {
			log.Printf("playtest: tick=%d enemy=%d state=%s pos=%s", i, e.ID, e.State, e.Position)
		}
	}
	log.Printf("playtest: headless run finished after %d ticks", ticks)
}
