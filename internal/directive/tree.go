// If you are AI: Directive is the in-memory config tree node: a name,
// ordered args, ordered children, and the source line. The reload engine
// and the typed accessor layer (internal/srsconfig) are built against
// this exact shape.
package directive

// Directive is one node of the nginx-style config tree: a name, zero or
// more positional arguments, and zero or more child directives (a block).
// The synthetic root directive has Name "root" and Line 0.
type Directive struct {
	Name     string
	Args     []string
	Children []*Directive
	Line     int
}

// newRoot builds the synthetic root node.
func newRoot() *Directive { return &Directive{Name: "root"} }

// Arg returns the i-th argument, or "" if absent.
func (d *Directive) Arg(i int) string {
	if i < 0 || i >= len(d.Args) {
		return ""
	}
	return d.Args[i]
}

// Arg0 returns the first argument, or "".
func (d *Directive) Arg0() string { return d.Arg(0) }
// Arg1 returns the second argument, or "".
func (d *Directive) Arg1() string { return d.Arg(1) }
// Arg2 returns the third argument, or "".
func (d *Directive) Arg2() string { return d.Arg(2) }
// Arg3 returns the fourth argument, or "".
func (d *Directive) Arg3() string { return d.Arg(3) }

// Get returns the first child directive named name, or nil.
func (d *Directive) Get(name string) *Directive {
	for _, c := range d.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// GetAll returns every child directive named name, in document order —
// used for multi-instance blocks like "transcode" and "ingest" which key
// on their first argument rather than being unique per parent.
func (d *Directive) GetAll(name string) []*Directive {
	var out []*Directive
	for _, c := range d.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// GetArg returns the first child directive named name whose arg0 equals
// arg0, used to look up a vhost by name inside the root, or a
// multi-instance block by its keying argument.
func (d *Directive) GetArg(name, arg0 string) *Directive {
	for _, c := range d.Children {
		if c.Name == name && c.Arg0() == arg0 {
			return c
		}
	}
	return nil
}

// GetOrCreate returns the first child named name with the given leading
// args, appending a new one if absent, for patching a tree in place.
func (d *Directive) GetOrCreate(name string, args ...string) *Directive {
	for _, c := range d.Children {
		if c.Name != name {
			continue
		}
		match := true
		for i, a := range args {
			if c.Arg(i) != a {
				match = false
				break
			}
		}
		if match {
			return c
		}
	}
	child := &Directive{Name: name, Args: append([]string(nil), args...)}
	d.Children = append(d.Children, child)
	return child
}

// IsVhost reports whether d is a top-level "vhost name { ... }" block.
func (d *Directive) IsVhost() bool { return d.Name == "vhost" }

// Equals performs a deep structural comparison, used by the reload
// engine to decide whether a sub-tree changed (srs_directive_equals).
func (d *Directive) Equals(o *Directive) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.Name != o.Name || len(d.Args) != len(o.Args) || len(d.Children) != len(o.Children) {
		return false
	}
	for i := range d.Args {
		if d.Args[i] != o.Args[i] {
			return false
		}
	}
	for i := range d.Children {
		if !d.Children[i].Equals(o.Children[i]) {
			return false
		}
	}
	return true
}

// EqualsExcept is Equals but ignores any direct child of d/o named
// exceptName — used by the reload engine to diff "dvr { ... }" while
// disregarding its "dvr_apply" child, which is a per-reload runtime
// selector rather than a structural setting.
func (d *Directive) EqualsExcept(o *Directive, exceptName string) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.Name != o.Name || len(d.Args) != len(o.Args) {
		return false
	}
	for i := range d.Args {
		if d.Args[i] != o.Args[i] {
			return false
		}
	}
	dc := filterOutExcept(d.Children, exceptName)
	oc := filterOutExcept(o.Children, exceptName)
	if len(dc) != len(oc) {
		return false
	}
	for i := range dc {
		if !dc[i].Equals(oc[i]) {
			return false
		}
	}
	return true
}

// filterOutExcept drops children with the given name.
func filterOutExcept(children []*Directive, name string) []*Directive {
	out := make([]*Directive, 0, len(children))
	for _, c := range children {
		if c.Name != name {
			out = append(out, c)
		}
	}
	return out
}

// Clone deep-copies the sub-tree rooted at d.
func (d *Directive) Clone() *Directive {
	return d.CloneExcept("")
}

// CloneExcept deep-copies d, omitting direct children named exceptName
// at every level. An empty exceptName copies everything.
func (d *Directive) CloneExcept(exceptName string) *Directive {
	if d == nil {
		return nil
	}
	c := &Directive{Name: d.Name, Line: d.Line, Args: append([]string(nil), d.Args...)}
	for _, child := range d.Children {
		if exceptName != "" && child.Name == exceptName {
			continue
		}
		c.Children = append(c.Children, child.CloneExcept(exceptName))
	}
	return c
}
