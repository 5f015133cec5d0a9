// If you are AI: re-emits a directive tree in canonical nginx-style
// form — one directive per line, 4-space indent per nesting level,
// blocks wrapped in "{ }".
package directive

import "strings"

const indentUnit = "    "

// Persist renders the tree rooted at d (normally the synthetic root) to
// its canonical text form.
func Persist(d *Directive) string {
	var b strings.Builder
	persist(&b, d, 0)
	return b.String()
}

// persist writes one node and its children at the given depth.
func persist(b *strings.Builder, d *Directive, level int) {
	if level > 0 {
		for i := 0; i < level-1; i++ {
			b.WriteString(indentUnit)
		}
		b.WriteString(d.Name)
		if len(d.Args) > 0 {
			b.WriteByte(' ')
		}
		for i, a := range d.Args {
			b.WriteString(a)
			if i < len(d.Args)-1 {
				b.WriteByte(' ')
			}
		}
		if len(d.Children) == 0 {
			b.WriteByte(';')
		}
	}

	if level > 0 {
		if len(d.Children) > 0 {
			b.WriteByte(' ')
			b.WriteByte('{')
		}
		b.WriteByte('\n')
	}

	for _, c := range d.Children {
		persist(b, c, level+1)
	}

	if level > 0 && len(d.Children) > 0 {
		for i := 0; i < level-1; i++ {
			b.WriteString(indentUnit)
		}
		b.WriteString("}\n")
	}
}
