//go:build !linux

package media

import (
	"github.com/pion/webrtc/v4"
)

// Engine on non-Linux platforms carries only the webrtc API. Capture via
// pion/mediadevices needs platform drivers (V4L2/malgo), so calls here are
// receive-only.
type Engine struct {
	api *webrtc.API
}

// NewEngine builds an engine with the default codec set and no capture.
func NewEngine() (*Engine, error) {
	mediaEngine := &webrtc.MediaEngine{}
	if err := mediaEngine.RegisterDefaultCodecs(); err != nil {
		return nil, err
	}
	api, err := newAPI(mediaEngine)
	if err != nil {
		return nil, err
	}
	return &Engine{api: api}, nil
}

// API returns the webrtc API peer connections must be created from.
func (e *Engine) API() *webrtc.API {
	return e.api
}

// Acquire always fails; no capture drivers on this platform.
func (e *Engine) Acquire(audio, video bool) (*Stream, error) {
	return nil, ErrUnsupportedPlatform
}

// AcquireScreen always fails; no screen driver on this platform.
func (e *Engine) AcquireScreen() (*Stream, error) {
	return nil, ErrUnsupportedPlatform
}
