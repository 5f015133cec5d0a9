// If you are AI: the typed notifications the reload engine emits, one
// Kind per reloadable directive or vhost child block.
package reload

// Kind identifies which part of the config changed.
type Kind string

const (
	KindListen         Kind = "listen"
	KindPID            Kind = "pid"
	KindLogTank        Kind = "log_tank"
	KindLogLevel       Kind = "log_level"
	KindLogFile        Kind = "log_file"
	KindMaxConnections Kind = "max_connections"
	KindUTCTime        Kind = "utc_time"
	KindPithyPrintMs   Kind = "pithy_print_ms"

	KindHTTPAPIEnabled      Kind = "http_api_enabled"
	KindHTTPAPIDisabled     Kind = "http_api_disabled"
	KindHTTPAPICrossdomain  Kind = "http_api_crossdomain"
	KindHTTPStreamEnabled   Kind = "http_stream_enabled"
	KindHTTPStreamDisabled  Kind = "http_stream_disabled"
	KindHTTPStreamUpdated   Kind = "http_stream_updated"

	KindRTCServer Kind = "rtc_server"

	KindVhostAdded     Kind = "vhost_added"
	KindVhostRemoved   Kind = "vhost_removed"
	KindVhostChunkSize Kind = "vhost_chunk_size"
	KindVhostTCPNoDelay Kind = "vhost_tcp_nodelay"
	KindVhostRealtime  Kind = "vhost_realtime" // min_latency
	KindVhostPlay      Kind = "vhost_play"
	KindVhostForward   Kind = "vhost_forward"
	KindVhostDash      Kind = "vhost_dash"
	KindVhostHLS       Kind = "vhost_hls"
	KindVhostHDS       Kind = "vhost_hds"
	KindVhostDVR       Kind = "vhost_dvr"
	KindVhostExec      Kind = "vhost_exec"
	KindVhostPublish   Kind = "vhost_publish"
	KindVhostHTTPStatic Kind = "vhost_http_static"
	KindVhostHTTPRemux  Kind = "vhost_http_remux"
	KindVhostTranscode  Kind = "vhost_transcode"
	KindVhostIngest     Kind = "vhost_ingest"
)

// Notification is one config-change event, dispatched to subscribers in
// the deterministic order Diff produces. Vhost/Arg are empty for
// root-level kinds.
type Notification struct {
	Kind  Kind
	Vhost string
	Arg   string // transcode/ingest keying argument, when applicable
}

// Subscriber receives reload notifications in registration order, one at
// a time, per kind. Returning an error aborts the remaining dispatch and
// rolls the engine back to the previously active tree. A subscriber must
// tolerate multiple notifications per reload (e.g. both http_api_enabled
// and http_api_crossdomain when both changed).
type Subscriber interface {
	OnReload(Notification) error
}
