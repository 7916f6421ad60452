package levels

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
)

//go:embed *.json
var LevelsFS embed.FS

// LoadLevelFromFS loads one of the sample levels shipped with the binary.
func LoadLevelFromFS(name string) (*Level, error) {
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	data, err := fs.ReadFile(LevelsFS, name)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	lvl, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return lvl, nil
}

// Open loads name from dir, falling back to the embedded samples.
func Open(dir, name string) (*Level, error) {
	lvl, err := Load(dir, name)
	if err == nil {
		return lvl, nil
	}
	if embedded, embErr := LoadLevelFromFS(cleanName(name)); embErr == nil {
		return embedded, nil
	}
	return nil, err
}
