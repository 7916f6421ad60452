package main

import (
	"fmt"
	"log"
	"sync"

	"golang.design/x/clipboard"

	"github.com/milk9111/levelforge/levels"
)

var (
	clipboardOnce sync.Once
	clipboardErr  error
)

func (g *EditorGame) save() (*levels.Level, error) {
	if g.levelName == "" {
		g.levelName = "untitled"
	}
	lvl := g.ctrl.Snapshot()
	lvl.Name = g.levelName
	path, err := levels.Save(g.levelDir, g.levelName, lvl)
	if err != nil {
		return nil, err
	}
	g.ctrl.SetLevelID(lvl.ID)
	g.setStatus("saved %s (%d objects)", path, len(lvl.Objects))
	return lvl, nil
}

func (g *EditorGame) reload() {
	lvl, err := levels.Open(g.levelDir, g.levelName)
	if err != nil {
		g.setStatus("reload %s: %v", g.levelName, err)
		return
	}
	if err := g.ctrl.Load(lvl); err != nil {
		g.setStatus("reloaded %s with problems: %v", g.levelName, err)
		return
	}
	g.setStatus("reloaded %s", g.levelName)
}

// markForPlayTest saves the level and records it in the session so the next
// play-test run opens it.
func (g *EditorGame) markForPlayTest() error {
	lvl, err := g.save()
	if err != nil {
		return err
	}
	if g.session == nil {
		return fmt.Errorf("no session store")
	}
	err = g.session.Update(func(s *levels.Session) {
		s.LevelToLoad = g.levelName
		s.LevelDir = g.levelDir
		s.ApplyLevel(lvl)
	})
	if err != nil {
		return err
	}
	g.setStatus("%s ready for play test", g.levelName)
	return nil
}

func (g *EditorGame) copyToClipboard() {
	clipboardOnce.Do(func() {
		clipboardErr = clipboard.Init()
		if clipboardErr != nil {
			log.Printf("editor: clipboard unavailable: %v", clipboardErr)
		}
	})
	if clipboardErr != nil {
		g.setStatus("clipboard unavailable")
		return
	}
	lvl := g.ctrl.Snapshot()
	lvl.Name = g.levelName
	data, err := levels.Encode(lvl)
	if err != nil {
		g.setStatus("encode level: %v", err)
		return
	}
	clipboard.Write(clipboard.FmtText, data)
	g.setStatus("copied level JSON (%d bytes)", len(data))
}
