//go:build linux

package media

import (
	"github.com/pion/mediadevices"
	"github.com/pion/mediadevices/pkg/codec/opus"
	"github.com/pion/mediadevices/pkg/codec/vpx"
	_ "github.com/pion/mediadevices/pkg/driver/camera"
	_ "github.com/pion/mediadevices/pkg/driver/microphone"
	_ "github.com/pion/mediadevices/pkg/driver/screen"
	"github.com/pion/mediadevices/pkg/frame"
	"github.com/pion/mediadevices/pkg/prop"
	"github.com/pion/webrtc/v4"

	"github.com/teamtide/callkit/internal/util"
)

// Engine bundles the codec selector and the webrtc API built around it.
// One Engine serves all sessions of a client process.
type Engine struct {
	api      *webrtc.API
	selector *mediadevices.CodecSelector
}

// NewEngine builds a VP8+Opus engine with V4L2/malgo capture drivers.
func NewEngine() (*Engine, error) {
	vpxParams, err := vpx.NewVP8Params()
	if err != nil {
		return nil, err
	}
	vpxParams.BitRate = 1_500_000 // 1.5 Mbps

	opusParams, err := opus.NewParams()
	if err != nil {
		return nil, err
	}

	selector := mediadevices.NewCodecSelector(
		mediadevices.WithVideoEncoders(&vpxParams),
		mediadevices.WithAudioEncoders(&opusParams),
	)

	mediaEngine := &webrtc.MediaEngine{}
	selector.Populate(mediaEngine)

	api, err := newAPI(mediaEngine)
	if err != nil {
		return nil, err
	}
	return &Engine{api: api, selector: selector}, nil
}

// API returns the webrtc API peer connections must be created from, so the
// negotiated codecs match the capture encoders.
func (e *Engine) API() *webrtc.API {
	return e.api
}

// Acquire captures local media. GetUserMedia fails as a unit if either
// requested track cannot be opened, so when both kinds are wanted the
// attempts degrade: video+audio, then video-only, then audio-only. A busy
// microphone must not prevent a video call and vice versa.
func (e *Engine) Acquire(audio, video bool) (*Stream, error) {
	type attempt struct {
		audio bool
		video bool
		label string
	}
	var attempts []attempt
	switch {
	case audio && video:
		attempts = []attempt{
			{true, true, "video+audio"},
			{false, true, "video-only"},
			{true, false, "audio-only"},
		}
	case video:
		attempts = []attempt{{false, true, "video-only"}}
	default:
		attempts = []attempt{{true, false, "audio-only"}}
	}

	for _, a := range attempts {
		constraints := mediadevices.MediaStreamConstraints{Codec: e.selector}
		if a.video {
			constraints.Video = cameraConstraints
		}
		if a.audio {
			constraints.Audio = func(_ *mediadevices.MediaTrackConstraints) {}
		}

		stream, err := mediadevices.GetUserMedia(constraints)
		if err != nil {
			util.LogWarning("GetUserMedia (%s) failed: %v", a.label, err)
			continue
		}

		tracks := stream.GetTracks()
		for _, track := range tracks {
			track.OnEnded(func(err error) {
				if err != nil {
					util.LogDebug("local track ended: %v", err)
				}
			})
		}
		util.LogInfo("local media captured (%s), %d tracks", a.label, len(tracks))
		return newStream(tracks), nil
	}

	return nil, ErrNoDevice
}

// AcquireScreen captures the display for screen sharing.
func (e *Engine) AcquireScreen() (*Stream, error) {
	stream, err := mediadevices.GetDisplayMedia(mediadevices.MediaStreamConstraints{
		Codec: e.selector,
		Video: func(_ *mediadevices.MediaTrackConstraints) {},
	})
	if err != nil {
		util.LogWarning("GetDisplayMedia failed: %v", err)
		return nil, ErrNoDevice
	}
	return newStream(stream.GetTracks()), nil
}

// cameraConstraints excludes MJPEG: some cameras expose an MJPEG V4L2 node
// that produces malformed JPEG frames, which poisons the VP8 encoder and
// makes SDP negotiation fail. Raw formats only, capped at 640×480 to keep
// encoding latency down.
func cameraConstraints(c *mediadevices.MediaTrackConstraints) {
	c.FrameFormat = prop.FrameFormatOneOf{
		frame.FormatYUYV,
		frame.FormatI420,
		frame.FormatI444,
		frame.FormatRGBA,
	}
	c.Width = prop.IntRanged{Max: 640}
	c.Height = prop.IntRanged{Max: 480}
}
