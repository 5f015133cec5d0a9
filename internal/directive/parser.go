// If you are AI: the recursive-descent half of the config reader: it
// drives the lexer to build the tree, recursing into blocks and resolving
// "include" specially by loading and parsing the named file(s) inline at
// the including directive's position.
package directive

import (
	"fmt"
	"path/filepath"

	"github.com/srsgo/srs/internal/srserr"
)

// blockContext mirrors SrsDirectiveContext: whether we're parsing the
// top of a file/include (context "file") or inside a "{ }" block.
type blockContext uint8

const (
	contextFile blockContext = iota
	contextBlock
)

// FileLoader resolves an "include" directive's filename to its content,
// letting callers control path resolution and sandboxing in tests. A
// relative name inside an included file reaches Load already joined onto
// that file's directory, so the loader resolves every name against the
// root file's location.
type FileLoader interface {
	Load(path string) ([]byte, error)
}

// Parse parses the root config file content into a directive tree. The
// returned root directive has Name "root" and holds every top-level
// directive as a child, includes already expanded inline.
func Parse(content []byte, path string, loader FileLoader) (*Directive, error) {
	root := newRoot()
	l := newLexer(content)
	if err := parseInto(root, l, contextFile, path, "", loader); err != nil {
		return nil, err
	}
	return root, nil
}

// parseInto appends directives onto parent until the block or file
// ends, recursing into child blocks and expanding includes. dir is the
// current file's directory as the loader sees it, empty for the root.
func parseInto(parent *Directive, l *lexer, ctx blockContext, path, dir string, loader FileLoader) error {
	for {
		args, lineStart, state, err := l.readToken()
		if err != nil {
			return srserr.NewConfigInvalid("parse", path, l.line, err)
		}

		if state == StateBlockEnd {
			if ctx == contextBlock {
				return nil
			}
			return srserr.NewConfigInvalid("parse", path, l.line,
				fmt.Errorf("unexpected \"}\""))
		}
		if state == StateEOF {
			if ctx != contextBlock {
				return nil
			}
			return srserr.NewConfigInvalid("parse", path, l.line,
				fmt.Errorf("unexpected end of file, expecting \"}\""))
		}
		if len(args) == 0 {
			return srserr.NewConfigInvalid("parse", path, l.line, fmt.Errorf("empty directive"))
		}

		if args[0] != "include" {
			child := &Directive{Name: args[0], Args: args[1:], Line: lineStart}
			parent.Children = append(parent.Children, child)
			if state == StateBlockStart {
				if err := parseInto(child, l, contextBlock, path, dir, loader); err != nil {
					return err
				}
			}
			continue
		}

		files := args[1:]
		if len(files) == 0 {
			return srserr.NewConfigInvalid("parse", path, l.line, fmt.Errorf("include is empty directive"))
		}
		if loader == nil {
			return srserr.NewConfigInvalid("parse", path, l.line, fmt.Errorf("include used with no file loader"))
		}
		for _, f := range files {
			if !filepath.IsAbs(f) {
				f = filepath.Join(dir, f)
			}
			data, err := loader.Load(f)
			if err != nil {
				return srserr.NewConfigInvalid("include", f, 0, err)
			}
			incLexer := newLexer(data)
			if err := parseInto(parent, incLexer, contextFile, f, filepath.Dir(f), loader); err != nil {
				return err
			}
		}
	}
}
