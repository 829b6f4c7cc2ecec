package rtc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"

	"github.com/teamtide/callkit/internal/util"
)

// Config carries the ICE server list and the two protocol timeouts.
type Config struct {
	STUNServers    []string
	TURNServer     string
	TURNUsername   string
	TURNCredential string

	// ConnectTimeout is the watchdog deadline: a connection that has not
	// reached connecting/connected within it is treated as failed.
	ConnectTimeout time.Duration

	// GatherTimeout bounds the wait for ICE gathering after
	// setLocalDescription. Candidates trickled afterward are still sent
	// individually; the wait only improves the initial SDP.
	GatherTimeout time.Duration
}

// Handlers are the callbacks a Peer feeds back into the session layer. All
// are invoked from pion goroutines; nil handlers are skipped.
type Handlers struct {
	OnCandidate   func(webrtc.ICECandidateInit)
	OnTrack       func(participantID string, kind webrtc.RTPCodecType)
	OnTrackEnded  func(participantID string)
	OnStateChange func(webrtc.PeerConnectionState)
	OnTimeout     func()
}

// Peer owns exactly one underlying peer connection for one call session.
type Peer struct {
	pc       *webrtc.PeerConnection
	cfg      Config
	handlers Handlers

	mu       sync.Mutex
	closed   bool
	watchdog *time.Timer
	senders  map[string]*webrtc.RTPSender
}

// NewPeer creates the peer connection, wires the event handlers, and arms
// the connection watchdog.
func NewPeer(api *webrtc.API, cfg Config, h Handlers) (*Peer, error) {
	pc, err := api.NewPeerConnection(webrtc.Configuration{ICEServers: iceServers(cfg)})
	if err != nil {
		return nil, fmt.Errorf("failed to create peer connection: %w", err)
	}

	p := &Peer{
		pc:       pc,
		cfg:      cfg,
		handlers: h,
		senders:  make(map[string]*webrtc.RTPSender),
	}

	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		// nil signals end of gathering.
		if c == nil || p.isClosed() || h.OnCandidate == nil {
			return
		}
		h.OnCandidate(c.ToJSON())
	})

	pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		id := track.StreamID()
		util.LogDebug("remote %s track from %s", track.Kind(), id)
		if p.isClosed() {
			return
		}
		if h.OnTrack != nil {
			h.OnTrack(id, track.Kind())
		}
		go p.drainTrack(track, id)
	})

	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		util.LogDebug("peer connection state: %s", state)
		if p.isClosed() {
			return
		}
		switch state {
		case webrtc.PeerConnectionStateConnecting, webrtc.PeerConnectionStateConnected:
			p.disarmWatchdog()
		}
		if h.OnStateChange != nil {
			h.OnStateChange(state)
		}
	})

	if cfg.ConnectTimeout > 0 {
		p.watchdog = time.AfterFunc(cfg.ConnectTimeout, func() {
			if p.isClosed() || h.OnTimeout == nil {
				return
			}
			h.OnTimeout()
		})
	}

	return p, nil
}

// AttachLocal adds every track to the connection. Idempotent per track id:
// re-attaching an already-added track is a no-op.
func (p *Peer) AttachLocal(tracks []webrtc.TrackLocal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range tracks {
		if _, ok := p.senders[t.ID()]; ok {
			continue
		}
		sender, err := p.pc.AddTrack(t)
		if err != nil {
			return fmt.Errorf("failed to add %s track: %w", t.Kind(), err)
		}
		p.senders[t.ID()] = sender
	}
	return nil
}

// ReplaceVideo substitutes the outgoing video track on the existing sender
// (screen share start/stop). No renegotiation happens.
func (p *Peer) ReplaceVideo(track webrtc.TrackLocal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.senders {
		cur := s.Track()
		if cur != nil && cur.Kind() == webrtc.RTPCodecTypeVideo {
			return s.ReplaceTrack(track)
		}
	}
	return fmt.Errorf("no outgoing video track to replace")
}

// CreateOffer generates the local offer and waits for ICE gathering to
// finish or GatherTimeout, whichever comes first.
func (p *Peer) CreateOffer(ctx context.Context) (string, error) {
	offer, err := p.pc.CreateOffer(nil)
	if err != nil {
		return "", fmt.Errorf("CreateOffer: %w", err)
	}
	gathered := webrtc.GatheringCompletePromise(p.pc)
	if err := p.pc.SetLocalDescription(offer); err != nil {
		return "", fmt.Errorf("SetLocalDescription: %w", err)
	}
	p.waitGather(ctx, gathered)
	return p.pc.LocalDescription().SDP, nil
}

// CreateAnswer applies the remote offer and generates the local answer,
// with the same bounded gathering wait as CreateOffer.
func (p *Peer) CreateAnswer(ctx context.Context, remoteOffer string) (string, error) {
	if err := p.pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeOffer, SDP: remoteOffer,
	}); err != nil {
		return "", fmt.Errorf("SetRemoteDescription: %w", err)
	}
	answer, err := p.pc.CreateAnswer(nil)
	if err != nil {
		return "", fmt.Errorf("CreateAnswer: %w", err)
	}
	gathered := webrtc.GatheringCompletePromise(p.pc)
	if err := p.pc.SetLocalDescription(answer); err != nil {
		return "", fmt.Errorf("SetLocalDescription: %w", err)
	}
	p.waitGather(ctx, gathered)
	return p.pc.LocalDescription().SDP, nil
}

// ApplyAnswer applies the remote answer.
func (p *Peer) ApplyAnswer(remoteAnswer string) error {
	return p.pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer, SDP: remoteAnswer,
	})
}

// AddCandidate applies a remote ICE candidate. Buffering/dedup is the
// session's concern (InboundCandidates); this applies directly.
func (p *Peer) AddCandidate(c webrtc.ICECandidateInit) error {
	return p.pc.AddICECandidate(c)
}

// ConnectionState returns the current peer connection state.
func (p *Peer) ConnectionState() webrtc.PeerConnectionState {
	return p.pc.ConnectionState()
}

// Close disarms the watchdog, silences all handlers, and closes the
// connection, stopping remote tracks with it. Safe to call repeatedly.
func (p *Peer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.senders = nil
	p.mu.Unlock()

	p.disarmWatchdog()
	return p.pc.Close()
}

func (p *Peer) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Peer) disarmWatchdog() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.watchdog != nil {
		p.watchdog.Stop()
		p.watchdog = nil
	}
}

// waitGather blocks until gathering completes, the timeout elapses, or ctx
// is cancelled.
func (p *Peer) waitGather(ctx context.Context, gathered <-chan struct{}) {
	select {
	case <-gathered:
	case <-time.After(p.cfg.GatherTimeout):
		util.LogDebug("ICE gathering still running after %s, trickling the rest", p.cfg.GatherTimeout)
	case <-ctx.Done():
	}
}

// drainTrack reads the remote track until it ends. RTP payloads go nowhere
// here (rendering is the embedding UI's job); the read keeps pion's buffers
// moving and detects track removal.
func (p *Peer) drainTrack(track *webrtc.TrackRemote, id string) {
	buf := make([]byte, 1500)
	for {
		if _, _, err := track.Read(buf); err != nil {
			if !p.isClosed() && p.handlers.OnTrackEnded != nil {
				p.handlers.OnTrackEnded(id)
			}
			return
		}
	}
}

// iceServers builds the ICE server list: the configured STUN servers plus
// the TURN relay fallback when credentials are present.
func iceServers(cfg Config) []webrtc.ICEServer {
	servers := []webrtc.ICEServer{{URLs: cfg.STUNServers}}
	if cfg.TURNServer != "" {
		servers = append(servers, webrtc.ICEServer{
			URLs:       []string{cfg.TURNServer},
			Username:   cfg.TURNUsername,
			Credential: cfg.TURNCredential,
		})
	}
	return servers
}
