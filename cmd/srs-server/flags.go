// If you are AI: This file parses the CLI surface and resolves the
// config file search order: an explicit -c (with the docker.conf
// sibling fallback), the compiled-in default, then the system path.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultConfig = "./conf/srs.conf"
	systemConfig  = "/etc/srs/srs.conf"
)

// options is the parsed CLI state.
type options struct {
	showHelp      bool
	showVersion   bool
	showSignature bool
	testConfig    bool
	configPath    string
	hooksPath     string
}

// parseArgs walks argv by hand: the surface is tiny and mixes
// single-dash long-forms (-c FILE) with paired short flags (-h/-?),
// which the flag package can't express.
func parseArgs(args []string) (options, error) {
	var o options
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-h", "-?":
			o.showHelp = true
		case "-v", "-V":
			o.showVersion = true
		case "-g", "-G":
			o.showSignature = true
		case "-t":
			o.testConfig = true
		case "-c":
			i++
			if i >= len(args) {
				return o, fmt.Errorf("option -c requires a config file path")
			}
			o.configPath = args[i]
		case "-w":
			i++
			if i >= len(args) {
				return o, fmt.Errorf("option -w requires a hooks descriptor path")
			}
			o.hooksPath = args[i]
		default:
			return o, fmt.Errorf("unknown option %q, use -h for help", args[i])
		}
	}
	return o, nil
}

// resolveConfig applies the search order and returns the first config
// file that exists.
func resolveConfig(explicit string) (string, error) {
	var candidates []string
	if explicit != "" {
		candidates = append(candidates, explicit)
		// A docker.conf handed to a non-docker run usually sits next to
		// the real srs.conf; try the sibling before giving up.
		if strings.HasSuffix(explicit, "docker.conf") {
			candidates = append(candidates, filepath.Join(filepath.Dir(explicit), "srs.conf"))
		}
	}
	candidates = append(candidates, defaultConfig, systemConfig)

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("no config file found, tried %v", candidates)
}

// usage renders the help text.
func usage(program string) string {
	return fmt.Sprintf(`Usage: %s [-h|-?] [-v|-V] [-g|-G] [-t] [-c <file>] [-w <file>]
    -h, -?          show this help and exit
    -v, -V          show version and exit
    -g, -G          show signature and exit
    -t              test config file and exit
    -c <file>       use config file
    -w <file>       load operator webhook descriptor (yaml)
`, program)
}
