package prefabs

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Content holds the catalog and behaviour scripts shipped with the binary.
//
//go:embed *.yaml scripts/*.tengo
var Content embed.FS

// Dir is the on-disk directory checked before the embedded copies. Editing a
// file there takes effect without rebuilding.
var Dir = "prefabs"

// Load reads a catalog file, preferring the copy under Dir.
func Load(name string) ([]byte, error) {
	return read(contentPath(name, ""))
}

// LoadScript reads a tengo script from the scripts folder. Names may be bare
// ("patrol.tengo") or carry a prefabs/ or scripts/ prefix.
func LoadScript(name string) ([]byte, error) {
	return read(contentPath(name, "scripts"))
}

func read(rel string) ([]byte, error) {
	if rel == "" {
		return nil, fs.ErrInvalid
	}
	data, err := os.ReadFile(filepath.Join(Dir, filepath.FromSlash(rel)))
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return Content.ReadFile(rel)
}

// contentPath strips known prefixes and places name under folder.
func contentPath(name, folder string) string {
	s := strings.TrimSpace(filepath.ToSlash(name))
	if s == "" {
		return ""
	}
	s = path.Clean(s)
	s = strings.TrimPrefix(s, "prefabs/")
	if folder != "" {
		s = path.Join(folder, strings.TrimPrefix(s, folder+"/"))
	}
	return s
}
