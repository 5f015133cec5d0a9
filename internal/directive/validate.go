// If you are AI: Validate is the exhaustive recognized-name check run on
// a freshly parsed, compat-transformed tree: at every nesting level with
// a known vocabulary, an unrecognized directive name is rejected with the
// offending name and its source line. Deprecated-but-accepted names only
// warn.
package directive

import (
	"fmt"
	"strconv"

	"github.com/srsgo/srs/internal/srserr"
)

// set is a recognized-name table for one nesting level.
type set map[string]bool

// newSet builds a recognized-name table.
func newSet(names ...string) set {
	s := make(set, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}

var rootDirectives = newSet(
	"listen", "pid", "chunk_size", "ff_log_dir", "srs_log_tank",
	"srs_log_level", "srs_log_file", "max_connections", "daemon",
	"utc_time", "pithy_print_ms", "work_dir", "asprocess", "server_id",
	"grace_start_wait", "grace_final_wait", "force_grace_quit",
	"inotify_auto_reload", "auto_reload_for_docker", "in_docker",
	"heartbeat", "stats", "http_api", "http_server", "stream_caster",
	"rtc_server", "srt_server", "vhost",
)

var httpAPIDirectives = newSet(
	"enabled", "listen", "crossdomain", "raw_api", "auth", "https",
)

var rawAPIDirectives = newSet(
	"enabled", "allow_reload", "allow_query", "allow_update",
)

var httpServerDirectives = newSet(
	"enabled", "listen", "dir", "crossdomain", "https",
)

var rtcServerDirectives = newSet(
	"enabled", "listen", "candidate", "tcp", "protocol", "ip_family",
	"ecdsa", "encrypt", "reuseport", "merge_nalus", "black_hole",
	"api_as_candidates", "resolve_api_domain", "keep_api_domain",
	"use_auto_detect_network_ip",
)

var streamCasterDirectives = newSet(
	"enabled", "caster", "output", "listen", "sip",
)

var vhostDirectives = newSet(
	"enabled", "chunk_size", "tcp_nodelay", "min_latency", "in_ack_size",
	"out_ack_size", "play", "publish", "forward", "cluster", "security",
	"http_static", "http_remux", "http_hooks", "exec", "dash", "hls",
	"hds", "dvr", "transcode", "ingest", "refer", "nack", "rtc",
)

var vhostPlayDirectives = newSet(
	"gop_cache", "gop_cache_max_frames", "queue_length", "time_jitter",
	"atc", "atc_auto", "mix_correct", "mw_latency", "mw_msgs",
	"send_min_interval", "reduce_sequence_header",
)

var vhostPublishDirectives = newSet(
	"mr", "mr_latency", "firstpkt_timeout", "normal_timeout",
	"parse_sps", "try_annexb_first", "kickoff_for_idle",
)

var vhostClusterDirectives = newSet(
	"mode", "origin", "token_traverse", "vhost", "debug_srs_upnode",
	"origin_cluster", "coworkers", "protocol", "follow_client",
)

var vhostForwardDirectives = newSet(
	"enabled", "destination", "backend",
)

var vhostHLSDirectives = newSet(
	"enabled", "hls_fragment", "hls_window", "hls_path", "hls_m3u8_file",
	"hls_ts_file", "hls_entry_prefix", "hls_acodec", "hls_vcodec",
	"hls_cleanup", "hls_dispose", "hls_nb_notify", "hls_wait_keyframe",
	"hls_aof_ratio", "hls_td_ratio", "hls_on_error", "hls_dts_directly",
	"hls_keys", "hls_fragments_per_key", "hls_key_file",
	"hls_key_file_path", "hls_key_url", "hls_ctx", "hls_ts_ctx",
	// accepted for backward compatibility, warned below
	"hls_storage", "hls_mount",
)

var vhostDashDirectives = newSet(
	"enabled", "dash_fragment", "dash_update_period", "dash_timeshift",
	"dash_path", "dash_mpd_file", "dash_window_size", "dash_dispose",
)

var vhostDVRDirectives = newSet(
	"enabled", "dvr_apply", "dvr_path", "dvr_plan", "dvr_duration",
	"dvr_wait_keyframe", "time_jitter",
)

var vhostHTTPStaticDirectives = newSet("enabled", "mount", "dir")

var vhostHTTPRemuxDirectives = newSet(
	"enabled", "fast_cache", "drop_if_not_match", "has_audio",
	"has_video", "guess_has_av", "mount",
)

var vhostRTCDirectives = newSet(
	"enabled", "nack", "twcc", "stun_timeout", "stun_strict_check",
	"dtls_role", "dtls_version", "drop_for_pt", "rtc_to_rtmp",
	"pli_for_rtmp", "rtmp_to_rtc", "keep_bframe", "keep_avc_nalu_sei",
	"opus_bitrate", "aac_bitrate",
)

var vhostReferDirectives = newSet("enabled", "all", "play", "publish")

var vhostExecDirectives = newSet("enabled", "publish")

var transcodeDirectives = newSet("enabled", "ffmpeg", "engine")

var transcodeEngineDirectives = newSet(
	"enabled", "perfile", "iformat", "vfilter", "vcodec", "vbitrate",
	"vfps", "vwidth", "vheight", "vthreads", "vprofile", "vpreset",
	"vparams", "acodec", "abitrate", "asample_rate", "achannels",
	"aparams", "oformat", "output",
)

var ingestDirectives = newSet("enabled", "input", "ffmpeg", "engine")

var ingestInputDirectives = newSet("type", "url")

var logLevels = newSet("verbose", "info", "trace", "warn", "error")

// Validate checks every directive name the tree carries against the
// recognized vocabulary for its nesting level, plus basic value-range
// checks for a handful of scalars. warn receives deprecation notices for
// names that are accepted but obsolete.
func Validate(root *Directive, path string, warn func(string)) error {
	if warn == nil {
		warn = func(string) {}
	}

	for _, d := range root.Children {
		if !rootDirectives[d.Name] {
			return unknown(path, d)
		}
	}

	if d := root.Get("max_connections"); d != nil {
		n, err := strconv.Atoi(d.Arg0())
		if err != nil || n <= 0 {
			return invalidValue(path, d, "max_connections must be a positive integer")
		}
	}
	if d := root.Get("srs_log_level"); d != nil && !logLevels[d.Arg0()] {
		return invalidValue(path, d, "srs_log_level must be one of verbose/info/trace/warn/error")
	}
	if d := root.Get("srs_log_tank"); d != nil && d.Arg0() != "console" && d.Arg0() != "file" {
		return invalidValue(path, d, "srs_log_tank must be console or file")
	}
	if d := root.Get("chunk_size"); d != nil {
		n, err := strconv.Atoi(d.Arg0())
		if err != nil || n < 128 || n > 65535 {
			return invalidValue(path, d, "chunk_size must be in [128, 65535]")
		}
	}
	if d := root.Get("listen"); d != nil && len(d.Args) == 0 {
		return invalidValue(path, d, "listen requires at least one port")
	}

	if err := validateBlock(path, root.Get("http_api"), httpAPIDirectives); err != nil {
		return err
	}
	if api := root.Get("http_api"); api != nil {
		if err := validateBlock(path, api.Get("raw_api"), rawAPIDirectives); err != nil {
			return err
		}
	}
	if err := validateBlock(path, root.Get("http_server"), httpServerDirectives); err != nil {
		return err
	}
	if err := validateBlock(path, root.Get("rtc_server"), rtcServerDirectives); err != nil {
		return err
	}
	for _, sc := range root.GetAll("stream_caster") {
		if err := validateBlock(path, sc, streamCasterDirectives); err != nil {
			return err
		}
	}

	for _, vhost := range root.GetAll("vhost") {
		if err := validateVhost(path, vhost, warn); err != nil {
			return err
		}
	}
	return nil
}

// validateVhost checks one vhost block and its known sub-blocks.
func validateVhost(path string, vhost *Directive, warn func(string)) error {
	if vhost.Arg0() == "" {
		return invalidValue(path, vhost, "vhost requires a name")
	}
	for _, d := range vhost.Children {
		if !vhostDirectives[d.Name] {
			return unknown(path, d)
		}
	}

	sub := []struct {
		name  string
		names set
	}{
		{"play", vhostPlayDirectives},
		{"publish", vhostPublishDirectives},
		{"cluster", vhostClusterDirectives},
		{"forward", vhostForwardDirectives},
		{"hls", vhostHLSDirectives},
		{"dash", vhostDashDirectives},
		{"dvr", vhostDVRDirectives},
		{"http_static", vhostHTTPStaticDirectives},
		{"http_remux", vhostHTTPRemuxDirectives},
		{"rtc", vhostRTCDirectives},
		{"refer", vhostReferDirectives},
		{"exec", vhostExecDirectives},
	}
	for _, s := range sub {
		if err := validateBlock(path, vhost.Get(s.name), s.names); err != nil {
			return err
		}
	}

	if hls := vhost.Get("hls"); hls != nil {
		for _, deprecated := range []string{"hls_storage", "hls_mount"} {
			if hls.Get(deprecated) != nil {
				warn(fmt.Sprintf("vhost %s: hls.%s is deprecated and ignored", vhost.Arg0(), deprecated))
			}
		}
	}

	for _, tc := range vhost.GetAll("transcode") {
		if err := validateBlock(path, tc, transcodeDirectives); err != nil {
			return err
		}
		for _, engine := range tc.GetAll("engine") {
			if err := validateBlock(path, engine, transcodeEngineDirectives); err != nil {
				return err
			}
		}
	}
	for _, ig := range vhost.GetAll("ingest") {
		if err := validateBlock(path, ig, ingestDirectives); err != nil {
			return err
		}
		if err := validateBlock(path, ig.Get("input"), ingestInputDirectives); err != nil {
			return err
		}
		for _, engine := range ig.GetAll("engine") {
			if err := validateBlock(path, engine, transcodeEngineDirectives); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateBlock checks one block's children against its vocabulary.
func validateBlock(path string, block *Directive, names set) error {
	if block == nil {
		return nil
	}
	for _, d := range block.Children {
		if !names[d.Name] {
			return unknown(path, d)
		}
	}
	return nil
}

// unknown builds the rejection for an unrecognized directive.
func unknown(path string, d *Directive) error {
	return srserr.NewConfigInvalid("validate", path, d.Line,
		fmt.Errorf("unknown directive %q", d.Name))
}

// invalidValue builds the rejection for an out-of-range value.
func invalidValue(path string, d *Directive, msg string) error {
	return srserr.NewConfigInvalid("validate", path, d.Line, fmt.Errorf("%s", msg))
}
