// If you are AI: port of srs_config_transform_vhost — rewrites a freshly
// parsed tree in place to the current directive names/shapes before
// validation ever sees it, so old-style config files keep working. Run
// once per load/reload, before check_config/diff.
package directive

// Transform rewrites root in place to the current directive vocabulary.
// warn receives a human-readable message for every compat rewrite it
// performs.
func Transform(root *Directive, warn func(string)) {
	if warn == nil {
		warn = func(string) {}
	}
	for _, dir := range root.Children {
		// SRS2.0: global http_stream -> http_server.
		if dir.Name == "http_stream" {
			dir.Name = "http_server"
			warn("transform: http_stream => http_server")
			continue
		}

		// SRS4.0: rtc_server no longer supports perf_stat/queue_length.
		if dir.Name == "rtc_server" {
			dir.Children = filterOut(dir.Children, "perf_stat", "queue_length")
		}

		// GB28181 casters never take jitterbuffer_enable.
		if dir.Name == "stream_caster" {
			if caster := dir.Get("caster"); caster != nil && caster.Arg0() == "gb28181" {
				dir.Children = filterOut(dir.Children, "jitterbuffer_enable")
			}
		}

		if !dir.IsVhost() {
			continue
		}
		transformVhost(dir, warn)
	}
}

// filterOut drops the named children.
func filterOut(children []*Directive, names ...string) []*Directive {
	out := children[:0]
	for _, c := range children {
		drop := false
		for _, n := range names {
			if c.Name == n {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, c)
		}
	}
	return out
}

// transformVhost applies the per-vhost renames and collapses.
func transformVhost(vhost *Directive, warn func(string)) {
	var kept []*Directive
	var refer *Directive // the new-style block, built lazily on first flat refer/refer_play/refer_publish

	for _, conf := range vhost.Children {
		switch {
		case conf.Name == "http":
			// SRS2.0: vhost.http -> vhost.http_static.
			conf.Name = "http_static"
			warn("transform: vhost." + vhost.Arg0() + ".http => http_static")
			kept = append(kept, conf)

		case conf.Name == "http_remux":
			// SRS3.0: hstrs is ignored, always on.
			conf.Children = filterOut(conf.Children, "hstrs")
			kept = append(kept, conf)

		case conf.Name == "refer" && len(conf.Children) == 0,
			conf.Name == "refer_play",
			conf.Name == "refer_publish":
			// SRS3.0: flat refer/refer_play/refer_publish collapse into
			// one nested refer { enabled on; all/play/publish ...; }.
			if refer == nil {
				refer = &Directive{Name: "refer"}
				kept = append(kept, refer)
			}
			if refer.Get("enabled") == nil {
				refer.Children = append(refer.Children, &Directive{Name: "enabled", Args: []string{"on"}})
			}
			switch conf.Name {
			case "refer":
				refer.Children = append(refer.Children, &Directive{Name: "all", Args: conf.Args})
				warn("transform: vhost." + vhost.Arg0() + ".refer => refer.all")
			case "refer_play":
				refer.Children = append(refer.Children, &Directive{Name: "play", Args: conf.Args})
				warn("transform: vhost." + vhost.Arg0() + ".refer_play => refer.play")
			case "refer_publish":
				refer.Children = append(refer.Children, &Directive{Name: "publish", Args: conf.Args})
				warn("transform: vhost." + vhost.Arg0() + ".refer_publish => refer.publish")
			}
			// old directive dropped, replaced by the nested refer block

		default:
			kept = append(kept, conf)
		}
	}
	vhost.Children = kept
}
