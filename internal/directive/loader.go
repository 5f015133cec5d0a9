// If you are AI: default FileLoader resolving include paths relative to
// the directory of the including file, the same rule nginx's
// build_buffer/parse_file uses.
package directive

import (
	"os"
	"path/filepath"
)

// OSFileLoader loads includes from disk, relative to BaseDir (the root
// file's directory; the parser has already joined a nested include's
// name onto its including file's directory).
type OSFileLoader struct {
	BaseDir string
}

// Load reads path relative to the loader's base directory.
func (l OSFileLoader) Load(path string) ([]byte, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.BaseDir, path)
	}
	return os.ReadFile(path)
}

// ParseFile reads and parses a root config file, resolving any includes
// relative to its own directory.
func ParseFile(path string) (*Directive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	loader := OSFileLoader{BaseDir: filepath.Dir(path)}
	return Parse(data, path, loader)
}
