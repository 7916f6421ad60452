package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/levelforge/common"
	"github.com/milk9111/levelforge/levels"
	"github.com/milk9111/levelforge/prefabs"
)

func main() {
	levelDir := flag.String("dir", levels.DefaultDir, "directory levels are saved to and loaded from")
	levelName := flag.String("level", "", "level name to open (basename, .json optional)")
	catalogName := flag.String("catalog", prefabs.DefaultCatalog, "object catalog (prefabs/ on disk overrides the embedded copy)")
	watch := flag.Bool("watch", false, "reload the catalog when files under prefabs/ change")
	flag.Parse()

	log.Println("Editor starting...")
	catalog, err := prefabs.LoadCatalog(*catalogName)
	if err != nil {
		log.Fatalf("editor: load catalog: %v", err)
	}
	log.Printf("editor: catalog %s with %d objects", *catalogName, catalog.Len())

	session := levels.OpenSessionStore(levels.AppName)

	game := newEditorGame(editorConfig{
		levelDir:    *levelDir,
		levelName:   *levelName,
		catalogName: *catalogName,
		watch:       *watch,
	}, catalog, session)
	if game.watcher != nil {
		defer game.watcher.Close()
	}

	ebiten.SetWindowSize(common.BaseWidth, common.BaseHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle("Level Editor")

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
