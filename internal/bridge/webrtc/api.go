// If you are AI: the pion API/codec setup: one H264 video codec and
// one Opus audio codec, default interceptors registered for NACK/RTCP
// feedback. No SFU room/fan-out machinery here — fan-out belongs to
// internal/sourcehub, not this bridger.
package webrtc

import (
	"github.com/pion/interceptor"
	"github.com/pion/webrtc/v4"
)

// iceServers is the public-STUN-only default; a production deployment
// would read candidates from the rtc_server directive block instead.
var iceServers = []webrtc.ICEServer{
	{URLs: []string{"stun:stun.l.google.com:19302"}},
}

// newAPI registers the H264/Opus codec set and default interceptors.
func newAPI() (*webrtc.API, error) {
	m := &webrtc.MediaEngine{}
	if err := m.RegisterCodec(webrtc.RTPCodecParameters{
		RTPCodecCapability: webrtc.RTPCodecCapability{
			MimeType:  webrtc.MimeTypeOpus,
			ClockRate: 48000,
			Channels:  2,
		},
		PayloadType: 111,
	}, webrtc.RTPCodecTypeAudio); err != nil {
		return nil, err
	}
	if err := m.RegisterCodec(webrtc.RTPCodecParameters{
		RTPCodecCapability: webrtc.RTPCodecCapability{
			MimeType:     webrtc.MimeTypeH264,
			ClockRate:    90000,
			SDPFmtpLine:  "level-asymmetry-allowed=1;packetization-mode=1;profile-level-id=42e01f",
			RTCPFeedback: []webrtc.RTCPFeedback{{Type: "nack"}, {Type: "nack", Parameter: "pli"}, {Type: "goog-remb"}},
		},
		PayloadType: 96,
	}, webrtc.RTPCodecTypeVideo); err != nil {
		return nil, err
	}

	ir := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(m, ir); err != nil {
		return nil, err
	}
	return webrtc.NewAPI(webrtc.WithMediaEngine(m), webrtc.WithInterceptorRegistry(ir)), nil
}

// NewPeerConnection builds a PeerConnection using this bridger's codec
// set, for both the output (play) and input (publish) directions.
func NewPeerConnection() (*webrtc.PeerConnection, error) {
	api, err := newAPI()
	if err != nil {
		return nil, err
	}
	return api.NewPeerConnection(webrtc.Configuration{ICEServers: iceServers})
}
