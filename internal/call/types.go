package call

import (
	"context"

	"github.com/pion/webrtc/v4"

	"github.com/teamtide/callkit/internal/signal"
)

// The coordinator reaches its collaborators only through these interfaces.
// The concrete implementations (signal.Client, rtc.Peer, media.Engine) are
// bound by small adapters in the binary that imports everything; tests use
// in-process fakes.

// Signaler publishes signaling messages. Satisfied by signal.Transport.
type Signaler interface {
	Publish(destination string, msg signal.Message) error
}

// LocalMedia is an owned local capture stream.
type LocalMedia interface {
	Tracks() []webrtc.TrackLocal
	VideoTrack() (webrtc.TrackLocal, bool)
	SetAudioEnabled(on bool)
	SetVideoEnabled(on bool)
	AudioEnabled() bool
	VideoEnabled() bool
	Close()
}

// Media acquires local capture streams. Acquisition failure is fatal to the
// call attempt; the coordinator never retries it.
type Media interface {
	Acquire(audio, video bool) (LocalMedia, error)
	AcquireScreen() (LocalMedia, error)
}

// PeerHandlers are the callbacks a Peer feeds back to the coordinator.
type PeerHandlers struct {
	OnCandidate   func(webrtc.ICECandidateInit)
	OnTrack       func(participantID string)
	OnTrackEnded  func(participantID string)
	OnStateChange func(webrtc.PeerConnectionState)
	OnTimeout     func()
}

// Peer is one peer connection. *rtc.Peer satisfies it.
type Peer interface {
	AttachLocal(tracks []webrtc.TrackLocal) error
	CreateOffer(ctx context.Context) (string, error)
	CreateAnswer(ctx context.Context, remoteOffer string) (string, error)
	ApplyAnswer(remoteAnswer string) error
	AddCandidate(c webrtc.ICECandidateInit) error
	ReplaceVideo(track webrtc.TrackLocal) error
	Close() error
}

// PeerFactory creates one Peer per session with the coordinator's handlers
// wired in.
type PeerFactory interface {
	NewPeer(h PeerHandlers) (Peer, error)
}
