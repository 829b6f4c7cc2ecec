package main

import (
	"github.com/pion/webrtc/v4"

	"github.com/teamtide/callkit/internal/call"
	"github.com/teamtide/callkit/internal/media"
	"github.com/teamtide/callkit/internal/rtc"
)

// This file is the only place that binds the concrete rtc/media types to
// the coordinator's interfaces.

// peerFactory adapts rtc.NewPeer to call.PeerFactory.
type peerFactory struct {
	api *webrtc.API
	cfg rtc.Config
}

func (f *peerFactory) NewPeer(h call.PeerHandlers) (call.Peer, error) {
	return rtc.NewPeer(f.api, f.cfg, rtc.Handlers{
		OnCandidate: h.OnCandidate,
		OnTrack: func(participantID string, _ webrtc.RTPCodecType) {
			if h.OnTrack != nil {
				h.OnTrack(participantID)
			}
		},
		OnTrackEnded:  h.OnTrackEnded,
		OnStateChange: h.OnStateChange,
		OnTimeout:     h.OnTimeout,
	})
}

// mediaSource adapts media.Engine to call.Media.
type mediaSource struct {
	eng *media.Engine
}

func (m *mediaSource) Acquire(audio, video bool) (call.LocalMedia, error) {
	s, err := m.eng.Acquire(audio, video)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (m *mediaSource) AcquireScreen() (call.LocalMedia, error) {
	s, err := m.eng.AcquireScreen()
	if err != nil {
		return nil, err
	}
	return s, nil
}
