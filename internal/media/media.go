// Package media wraps local camera/microphone/screen capture into streams of
// pion tracks. No call state lives here; the call coordinator owns stream
// lifetimes.
package media

import (
	"errors"
	"sync"
	"time"

	"github.com/pion/interceptor"
	"github.com/pion/mediadevices"
	"github.com/pion/webrtc/v4"
)

// ErrUnsupportedPlatform is returned where no capture drivers exist. Calls
// still work receive-only on such platforms.
var ErrUnsupportedPlatform = errors.New("media: capture not supported on this platform")

// ErrNoDevice is returned when every capture attempt failed (device missing,
// busy, or permission denied). Fatal to the call attempt; no retry.
var ErrNoDevice = errors.New("media: all capture attempts failed")

// Stream owns a set of captured local tracks plus the audio/video enabled
// flags surfaced to the remote side via MEDIA_STATUS messages.
type Stream struct {
	mu      sync.Mutex
	tracks  []mediadevices.Track
	audioOn bool
	videoOn bool
	closed  bool
}

func newStream(tracks []mediadevices.Track) *Stream {
	return &Stream{tracks: tracks, audioOn: true, videoOn: true}
}

// Tracks returns the local tracks in a form addable to a peer connection.
func (s *Stream) Tracks() []webrtc.TrackLocal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]webrtc.TrackLocal, 0, len(s.tracks))
	for _, t := range s.tracks {
		out = append(out, t)
	}
	return out
}

// VideoTrack returns the first video track, if any.
func (s *Stream) VideoTrack() (webrtc.TrackLocal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tracks {
		if t.Kind() == webrtc.RTPCodecTypeVideo {
			return t, true
		}
	}
	return nil, false
}

// SetAudioEnabled flips the local audio flag. The flag is informational:
// it drives the MEDIA_STATUS message and remote UI indicators.
func (s *Stream) SetAudioEnabled(on bool) {
	s.mu.Lock()
	s.audioOn = on
	s.mu.Unlock()
}

// SetVideoEnabled flips the local video flag.
func (s *Stream) SetVideoEnabled(on bool) {
	s.mu.Lock()
	s.videoOn = on
	s.mu.Unlock()
}

func (s *Stream) AudioEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audioOn
}

func (s *Stream) VideoEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.videoOn
}

// Close stops every track and releases the capture devices. Idempotent.
func (s *Stream) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	tracks := s.tracks
	s.tracks = nil
	s.mu.Unlock()

	for _, t := range tracks {
		_ = t.Close()
	}
}

// newAPI builds the webrtc API around a populated media engine: default
// interceptors plus generous ICE timeouts. The default disconnectedTimeout
// of 5s is too short for relay paths with brief outages; 30s lets ICE
// recover from a blip without tearing the call down.
func newAPI(mediaEngine *webrtc.MediaEngine) (*webrtc.API, error) {
	interceptorRegistry := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(mediaEngine, interceptorRegistry); err != nil {
		return nil, err
	}

	se := webrtc.SettingEngine{}
	se.SetICETimeouts(30*time.Second, 120*time.Second, 2*time.Second)

	return webrtc.NewAPI(
		webrtc.WithMediaEngine(mediaEngine),
		webrtc.WithInterceptorRegistry(interceptorRegistry),
		webrtc.WithSettingEngine(se),
	), nil
}
