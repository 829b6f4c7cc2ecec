package call

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"

	"github.com/teamtide/callkit/internal/signal"
	"github.com/teamtide/callkit/internal/util"
)

// Options configures a Coordinator.
type Options struct {
	// Self is the local user identity, used for self-origination checks
	// and as the sender identity on outbound messages.
	Self Participant

	// BusyDismiss is how long the busy indicator stays up before
	// OnBusyCleared fires. Defaults to 4 seconds.
	BusyDismiss time.Duration
}

// Coordinator drives the call lifecycle: it creates and tears down the one
// live Session, interprets inbound signaling against the session's phase
// and role, and owns every async continuation's liveness check.
//
// All state is serialized under one mutex, the Go analog of the browser's
// single-threaded event loop this protocol was designed for. Signaling
// messages and peer callbacks may arrive on any goroutine and in any order;
// the lock imposes a total order, and stale callbacks are discarded by
// comparing the session generation they captured.
type Coordinator struct {
	sig    Signaler
	media  Media
	peers  PeerFactory
	events Events
	self   Participant

	busyDismiss time.Duration

	mu        sync.Mutex
	sess      *Session
	gen       uint64
	busyTimer *time.Timer
}

// NewCoordinator wires the collaborators together. No subscription happens
// here; the embedding app routes inbound messages into HandleMessage.
func NewCoordinator(sig Signaler, media Media, peers PeerFactory, events Events, opts Options) *Coordinator {
	busy := opts.BusyDismiss
	if busy <= 0 {
		busy = 4 * time.Second
	}
	return &Coordinator{
		sig:         sig,
		media:       media,
		peers:       peers,
		events:      events,
		self:        opts.Self,
		busyDismiss: busy,
	}
}

// Session returns the current session, or nil when idle.
func (c *Coordinator) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

// ---------------------------------------------------------------------------
// UI commands
// ---------------------------------------------------------------------------

// Start begins an outbound call. No media or peer connection is created
// yet: both wait for CALL_ACCEPTED, so a rejected or missed call never
// touches the camera.
func (c *Coordinator) Start(chatID string, callType CallType) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess != nil {
		return nil, fmt.Errorf("a call is already in progress (chat %s)", c.sess.ChatID)
	}

	s := c.createSessionLocked(chatID, callType, RoleInitiator, Participant{})
	if err := c.sig.Publish(signal.DestStart, signal.Message{
		Type:       signal.MsgCallNotification,
		ChatID:     chatID,
		CallType:   string(callType),
		SenderID:   c.self.ID,
		SenderName: c.self.Name,
	}); err != nil {
		c.sess = nil
		return nil, fmt.Errorf("failed to publish call start: %w", err)
	}
	s.phase = PhaseAwaitingAccept
	util.LogInfo("call started: chat=%s type=%s", chatID, callType)
	return s, nil
}

// Accept answers the incoming call. This is the first point where the
// receiver touches the camera/microphone; the peer connection itself waits
// for the initiator's OFFER.
func (c *Coordinator) Accept() error {
	c.mu.Lock()
	p := &pendingEvents{}
	err := c.acceptLocked(p)
	c.mu.Unlock()
	p.run()
	return err
}

func (c *Coordinator) acceptLocked(p *pendingEvents) error {
	s := c.sess
	if s == nil || s.Role != RoleReceiver || s.phase != PhaseAwaitingAccept {
		return fmt.Errorf("no incoming call to accept")
	}

	_ = c.sig.Publish(signal.DestAccept, signal.Message{
		Type:     signal.MsgCallAccepted,
		ChatID:   s.ChatID,
		CallID:   s.callID,
		SenderID: c.self.ID,
	})

	local, err := c.media.Acquire(true, s.CallType == CallVideo)
	if err != nil {
		c.failLocked(p, fmt.Errorf("media acquisition failed: %w", err))
		return err
	}
	s.local = local
	s.phase = PhaseNegotiating
	if fn := c.events.OnLocalStream; fn != nil {
		p.add(func() { fn(local) })
	}
	return nil
}

// Reject declines the incoming call and tears the session down.
func (c *Coordinator) Reject() error {
	c.mu.Lock()
	p := &pendingEvents{}
	s := c.sess
	if s == nil || s.Role != RoleReceiver || s.phase != PhaseAwaitingAccept {
		c.mu.Unlock()
		return fmt.Errorf("no incoming call to reject")
	}
	_ = c.sig.Publish(signal.DestReject, signal.Message{
		Type:       signal.MsgCallRejected,
		ChatID:     s.ChatID,
		CallID:     s.callID,
		SenderID:   c.self.ID,
		SenderName: c.self.Name,
	})
	c.teardownLocked(p)
	c.mu.Unlock()
	p.run()
	return nil
}

// End hangs up. The end notification is best-effort; local teardown never
// waits for an acknowledgement.
func (c *Coordinator) End() {
	c.mu.Lock()
	p := &pendingEvents{}
	if s := c.sess; s != nil {
		_ = c.sig.Publish(signal.DestEnd, signal.Message{
			Type:     signal.MsgCallEnded,
			ChatID:   s.ChatID,
			CallID:   s.callID,
			SenderID: c.self.ID,
		})
		c.teardownLocked(p)
	}
	c.mu.Unlock()
	p.run()
}

// ToggleAudio flips the local audio flag and notifies the remote side.
// Returns the new enabled state.
func (c *Coordinator) ToggleAudio() (bool, error) {
	return c.toggleMedia(signal.StatusToggleAudio)
}

// ToggleVideo flips the local video flag and notifies the remote side.
func (c *Coordinator) ToggleVideo() (bool, error) {
	return c.toggleMedia(signal.StatusToggleVideo)
}

func (c *Coordinator) toggleMedia(statusType string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.sess
	if s == nil || s.local == nil {
		return false, fmt.Errorf("no active call media")
	}

	var enabled bool
	if statusType == signal.StatusToggleAudio {
		enabled = !s.local.AudioEnabled()
		s.local.SetAudioEnabled(enabled)
	} else {
		enabled = !s.local.VideoEnabled()
		s.local.SetVideoEnabled(enabled)
	}

	_ = c.sig.Publish(signal.DestMediaStatus, signal.Message{
		Type:       signal.MsgMediaStatus,
		ChatID:     s.ChatID,
		CallID:     s.callID,
		SenderID:   c.self.ID,
		StatusType: statusType,
		Enabled:    enabled,
	})
	return enabled, nil
}

// StartScreenShare replaces the outgoing video track with a screen capture
// track. No renegotiation, pure track substitution.
func (c *Coordinator) StartScreenShare() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.sess
	if s == nil || s.peer == nil || s.phase != PhaseActive {
		return fmt.Errorf("no active call to share the screen on")
	}
	if s.sharing {
		return fmt.Errorf("screen share already running")
	}

	screen, err := c.media.AcquireScreen()
	if err != nil {
		return fmt.Errorf("screen capture failed: %w", err)
	}
	track, ok := screen.VideoTrack()
	if !ok {
		screen.Close()
		return fmt.Errorf("screen capture produced no video track")
	}
	if err := s.peer.ReplaceVideo(track); err != nil {
		screen.Close()
		return fmt.Errorf("failed to substitute screen track: %w", err)
	}

	s.screen = screen
	s.sharing = true
	_ = c.sig.Publish(signal.DestScreenShare, signal.Message{
		Type:     signal.MsgScreenShareStarted,
		ChatID:   s.ChatID,
		CallID:   s.callID,
		SenderID: c.self.ID,
	})
	return nil
}

// StopScreenShare restores the camera track and releases the screen capture.
func (c *Coordinator) StopScreenShare() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.sess
	if s == nil || !s.sharing {
		return fmt.Errorf("no screen share running")
	}

	var restore webrtc.TrackLocal
	if s.local != nil {
		if track, ok := s.local.VideoTrack(); ok {
			restore = track
		}
	}
	if err := s.peer.ReplaceVideo(restore); err != nil {
		util.LogWarning("failed to restore camera track: %v", err)
	}
	s.screen.Close()
	s.screen = nil
	s.sharing = false

	_ = c.sig.Publish(signal.DestScreenShare, signal.Message{
		Type:     signal.MsgScreenShareEnded,
		ChatID:   s.ChatID,
		CallID:   s.callID,
		SenderID: c.self.ID,
	})
	return nil
}

// ---------------------------------------------------------------------------
// Inbound signaling
// ---------------------------------------------------------------------------

// HandleMessage is the single entry point for inbound signaling. Messages
// are processed in delivery order; UI callbacks fire after the lock is
// released so handlers may call back into the coordinator.
func (c *Coordinator) HandleMessage(msg signal.Message) {
	c.mu.Lock()
	p := &pendingEvents{}
	c.dispatchLocked(p, msg)
	c.mu.Unlock()
	p.run()
}

func (c *Coordinator) dispatchLocked(p *pendingEvents, msg signal.Message) {
	switch msg.Type {
	case signal.MsgCallNotification:
		c.handleNotificationLocked(p, msg)
	case signal.MsgCallAccepted:
		c.handleAcceptedLocked(p, msg)
	case signal.MsgOffer:
		c.handleOfferLocked(p, msg)
	case signal.MsgAnswer:
		c.handleAnswerLocked(p, msg)
	case signal.MsgICECandidate:
		c.handleCandidateLocked(msg)
	case signal.MsgCallEnded, signal.MsgCallRejected:
		c.handleRemoteEndLocked(p, msg)
	case signal.MsgCallBusy:
		c.signalBusyLocked(p, msg.ChatID)
	case signal.MsgMediaStatus, signal.MsgScreenShareStarted, signal.MsgScreenShareEnded:
		c.handleMediaStatusLocked(p, msg)
	default:
		util.LogDebug("unhandled signaling message type %q", msg.Type)
	}
}

// handleNotificationLocked processes CALL_NOTIFICATION. Three cases: the
// echo of our own start, a new incoming call, or a call arriving while one
// is already live (busy).
func (c *Coordinator) handleNotificationLocked(p *pendingEvents, msg signal.Message) {
	if msg.SenderID == c.self.ID {
		// Echo of our own start notification, never a prompt. If the
		// local session is somehow missing (start raced a reconnect),
		// recreate it silently so the callId is not lost.
		if c.sess == nil {
			s := c.createSessionLocked(msg.ChatID, CallType(msg.CallType), RoleInitiator, Participant{})
			s.phase = PhaseAwaitingAccept
			util.LogDebug("recreated initiator session from own notification echo: chat=%s", msg.ChatID)
		}
		if c.sess.ChatID == msg.ChatID && msg.CallID != "" {
			c.adoptCallIDLocked(msg.CallID)
		}
		return
	}

	if c.sess != nil {
		if c.sess.ChatID == msg.ChatID && c.sess.Remote.ID == msg.SenderID {
			// Redundant delivery of the current call's notification
			// (private queue + chat topic overlap). Metadata only.
			if msg.CallID != "" {
				c.adoptCallIDLocked(msg.CallID)
			}
			return
		}
		// One call at a time. The existing session is untouched; the UI
		// gets a transient busy indication for the new one.
		util.LogInfo("notification for chat %s while busy with chat %s", msg.ChatID, c.sess.ChatID)
		c.signalBusyLocked(p, msg.ChatID)
		return
	}

	s := c.createSessionLocked(msg.ChatID, CallType(msg.CallType), RoleReceiver,
		Participant{ID: msg.SenderID, Name: msg.SenderName})
	if msg.CallID != "" {
		c.adoptCallIDLocked(msg.CallID)
	}
	s.phase = PhaseAwaitingAccept
	util.LogInfo("incoming %s call from %s (chat=%s)", msg.CallType, msg.SenderName, msg.ChatID)
	if fn := c.events.OnIncomingCall; fn != nil {
		p.add(func() { fn(s) })
	}
}

// handleAcceptedLocked processes CALL_ACCEPTED on the initiator: adopt the
// callId, acquire media, create the peer connection, and send the offer.
func (c *Coordinator) handleAcceptedLocked(p *pendingEvents, msg signal.Message) {
	s := c.sess
	if s == nil || s.Role != RoleInitiator || s.phase != PhaseAwaitingAccept {
		util.LogDebug("ignoring CALL_ACCEPTED outside initiator handshake")
		return
	}
	if msg.ChatID != "" && msg.ChatID != s.ChatID {
		return
	}
	if msg.CallID != "" {
		c.adoptCallIDLocked(msg.CallID)
	}

	local, err := c.media.Acquire(true, s.CallType == CallVideo)
	if err != nil {
		c.failLocked(p, fmt.Errorf("media acquisition failed: %w", err))
		return
	}
	s.local = local
	if fn := c.events.OnLocalStream; fn != nil {
		p.add(func() { fn(local) })
	}

	peer, err := c.createPeerLocked(s)
	if err != nil {
		c.failLocked(p, err)
		return
	}
	if err := peer.AttachLocal(local.Tracks()); err != nil {
		c.failLocked(p, err)
		return
	}

	offer, err := peer.CreateOffer(context.Background())
	if err != nil {
		c.failLocked(p, fmt.Errorf("offer creation failed: %w", err))
		return
	}
	_ = c.sig.Publish(signal.DestOffer, signal.Message{
		Type:     signal.MsgOffer,
		ChatID:   s.ChatID,
		CallID:   s.callID,
		CallType: string(s.CallType),
		SDP:      offer,
		SenderID: c.self.ID,
	})
	s.phase = PhaseNegotiating
}

// handleOfferLocked processes OFFER on the receiver: apply the remote
// description, answer, and release the inbound candidate queue.
func (c *Coordinator) handleOfferLocked(p *pendingEvents, msg signal.Message) {
	if msg.SenderID == c.self.ID {
		return
	}
	s := c.sess
	if s == nil || s.Role != RoleReceiver || s.phase != PhaseNegotiating {
		util.LogDebug("ignoring OFFER outside receiver negotiation")
		return
	}
	if msg.ChatID != "" && msg.ChatID != s.ChatID {
		return
	}
	if msg.CallID != "" {
		c.adoptCallIDLocked(msg.CallID)
	}

	sdp, err := signal.ExtractSDP(msg)
	if err != nil {
		c.failLocked(p, fmt.Errorf("unresolvable offer: %w", err))
		return
	}

	peer, err := c.createPeerLocked(s)
	if err != nil {
		c.failLocked(p, err)
		return
	}
	if s.local != nil {
		if err := peer.AttachLocal(s.local.Tracks()); err != nil {
			c.failLocked(p, err)
			return
		}
	}

	answer, err := peer.CreateAnswer(context.Background(), sdp)
	if err != nil {
		c.failLocked(p, fmt.Errorf("answer creation failed: %w", err))
		return
	}

	// Remote description is in place, buffered candidates can flow.
	if n := s.inbound.Release(peer.AddCandidate); n > 0 {
		util.LogDebug("applied %d buffered inbound candidates", n)
	}

	_ = c.sig.Publish(signal.DestAnswer, signal.Message{
		Type:     signal.MsgAnswer,
		ChatID:   s.ChatID,
		CallID:   s.callID,
		SDP:      answer,
		SenderID: c.self.ID,
	})
}

// handleAnswerLocked processes ANSWER on the initiator. The first answer
// wins; duplicates delivered by redundant subscriptions are dropped.
func (c *Coordinator) handleAnswerLocked(p *pendingEvents, msg signal.Message) {
	if msg.SenderID == c.self.ID {
		return
	}
	s := c.sess
	if s == nil || s.Role != RoleInitiator || s.peer == nil {
		util.LogDebug("ignoring ANSWER with no pending offer")
		return
	}
	if msg.CallID != "" && s.callID != "" && msg.CallID != s.callID {
		return
	}
	if s.answerApplied {
		util.LogDebug("duplicate ANSWER for call %s ignored", s.callID)
		return
	}

	sdp, err := signal.ExtractSDP(msg)
	if err != nil {
		c.failLocked(p, fmt.Errorf("unresolvable answer: %w", err))
		return
	}
	if err := s.peer.ApplyAnswer(sdp); err != nil {
		c.failLocked(p, fmt.Errorf("failed to apply answer: %w", err))
		return
	}
	s.answerApplied = true

	if n := s.inbound.Release(s.peer.AddCandidate); n > 0 {
		util.LogDebug("applied %d buffered inbound candidates", n)
	}
}

// handleCandidateLocked routes an inbound ICE candidate into the session's
// inbound queue, which buffers, dedups, or applies as appropriate.
func (c *Coordinator) handleCandidateLocked(msg signal.Message) {
	if msg.SenderID == c.self.ID || msg.Candidate == nil {
		return
	}
	s := c.sess
	if s == nil {
		util.LogDebug("ICE candidate with no session, dropping")
		return
	}
	if msg.CallID != "" && s.callID != "" && msg.CallID != s.callID {
		return
	}
	s.inbound.Add(*msg.Candidate)
}

// handleRemoteEndLocked processes CALL_ENDED / CALL_REJECTED referencing the
// current session.
func (c *Coordinator) handleRemoteEndLocked(p *pendingEvents, msg signal.Message) {
	if msg.SenderID == c.self.ID {
		// Echo of our own end/reject; local teardown already ran.
		return
	}
	s := c.sess
	if s == nil {
		return
	}
	if msg.CallID != "" && s.callID != "" {
		if msg.CallID != s.callID {
			return
		}
	} else if msg.ChatID != "" && msg.ChatID != s.ChatID {
		return
	}
	util.LogInfo("call ended remotely (%s)", msg.Type)
	c.teardownLocked(p)
}

func (c *Coordinator) handleMediaStatusLocked(p *pendingEvents, msg signal.Message) {
	if msg.SenderID == c.self.ID || c.sess == nil {
		return
	}
	statusType := msg.StatusType
	if statusType == "" {
		statusType = string(msg.Type)
	}
	ms := MediaStatus{
		ChatID:     msg.ChatID,
		CallID:     msg.CallID,
		SenderID:   msg.SenderID,
		StatusType: statusType,
		Enabled:    msg.Enabled,
	}
	if fn := c.events.OnRemoteMediaStatus; fn != nil {
		p.add(func() { fn(ms) })
	}
}

// ---------------------------------------------------------------------------
// Peer callbacks
// ---------------------------------------------------------------------------

// createPeerLocked builds the session's peer connection with callbacks that
// carry the session generation, so events from a torn-down peer are inert.
func (c *Coordinator) createPeerLocked(s *Session) (Peer, error) {
	gen := s.gen
	peer, err := c.peers.NewPeer(PeerHandlers{
		OnCandidate: func(cand webrtc.ICECandidateInit) {
			if s.Ended() {
				return
			}
			s.outbound.Add(cand)
		},
		OnTrack: func(participantID string) {
			c.handleRemoteTrack(gen, participantID)
		},
		OnTrackEnded: func(participantID string) {
			c.handleTrackEnded(gen, participantID)
		},
		OnStateChange: func(state webrtc.PeerConnectionState) {
			c.handlePeerState(gen, state)
		},
		OnTimeout: func() {
			c.handleConnectTimeout(gen)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("peer connection creation failed: %w", err)
	}
	s.peer = peer
	return peer, nil
}

func (c *Coordinator) handleRemoteTrack(gen uint64, participantID string) {
	c.mu.Lock()
	p := &pendingEvents{}
	if s := c.liveSessionLocked(gen); s != nil {
		if s.phase != PhaseActive {
			s.phase = PhaseActive
			util.LogInfo("call active: chat=%s call=%s", s.ChatID, s.callID)
			if fn := c.events.OnCallEstablished; fn != nil {
				p.add(fn)
			}
		}
		if fn := c.events.OnRemoteStreamAdded; fn != nil {
			p.add(func() { fn(participantID) })
		}
	}
	c.mu.Unlock()
	p.run()
}

func (c *Coordinator) handleTrackEnded(gen uint64, participantID string) {
	c.mu.Lock()
	p := &pendingEvents{}
	if c.liveSessionLocked(gen) != nil {
		if fn := c.events.OnRemoteStreamRemoved; fn != nil {
			p.add(func() { fn(participantID) })
		}
	}
	c.mu.Unlock()
	p.run()
}

// handlePeerState maps connection-state transitions onto the session.
// "disconnected" is a transient blip and never fatal; only "failed" (or the
// watchdog) ends the call.
func (c *Coordinator) handlePeerState(gen uint64, state webrtc.PeerConnectionState) {
	c.mu.Lock()
	p := &pendingEvents{}
	if s := c.liveSessionLocked(gen); s != nil {
		switch state {
		case webrtc.PeerConnectionStateFailed:
			c.failLocked(p, fmt.Errorf("peer connection failed"))
		case webrtc.PeerConnectionStateDisconnected:
			util.LogWarning("peer connection disconnected, waiting for ICE to recover (chat=%s)", s.ChatID)
		}
	}
	c.mu.Unlock()
	p.run()
}

func (c *Coordinator) handleConnectTimeout(gen uint64) {
	c.mu.Lock()
	p := &pendingEvents{}
	if c.liveSessionLocked(gen) != nil {
		c.failLocked(p, fmt.Errorf("connection not established in time"))
	}
	c.mu.Unlock()
	p.run()
}

// liveSessionLocked returns the current session only if it still belongs to
// the generation a callback captured.
func (c *Coordinator) liveSessionLocked(gen uint64) *Session {
	if c.sess == nil || c.sess.gen != gen {
		return nil
	}
	return c.sess
}

// ---------------------------------------------------------------------------
// Session lifecycle
// ---------------------------------------------------------------------------

func (c *Coordinator) createSessionLocked(chatID string, callType CallType, role Role, remote Participant) *Session {
	c.gen++
	s := newSession(chatID, callType, role, remote, c.gen)
	c.sess = s
	return s
}

// adoptCallIDLocked assigns the server callId once and releases the
// outbound candidate queue. callId never changes within a session, and the
// queue flush happens exactly once.
func (c *Coordinator) adoptCallIDLocked(callID string) {
	s := c.sess
	if s == nil || s.callID != "" {
		return
	}
	s.callID = callID
	chatID := s.ChatID
	n := s.outbound.Release(func(cand webrtc.ICECandidateInit) {
		cc := cand
		_ = c.sig.Publish(signal.DestCandidate, signal.Message{
			Type:      signal.MsgICECandidate,
			ChatID:    chatID,
			CallID:    callID,
			Candidate: &cc,
			SenderID:  c.self.ID,
		})
	})
	if n > 0 {
		util.LogDebug("flushed %d buffered outbound candidates for call %s", n, callID)
	}
}

// failLocked is the single fatal-error path: best-effort end notification,
// teardown, and an error surfaced to the UI.
func (c *Coordinator) failLocked(p *pendingEvents, err error) {
	util.LogError("call failed: %v", err)
	if s := c.sess; s != nil && s.callID != "" {
		_ = c.sig.Publish(signal.DestEnd, signal.Message{
			Type:     signal.MsgCallEnded,
			ChatID:   s.ChatID,
			CallID:   s.callID,
			SenderID: c.self.ID,
		})
	}
	c.teardownLocked(p)
	if fn := c.events.OnError; fn != nil {
		p.add(func() { fn(err) })
	}
}

// teardownLocked releases everything the session owns. One-shot per
// session: the session leaves the coordinator, so a second call is a no-op.
func (c *Coordinator) teardownLocked(p *pendingEvents) {
	s := c.sess
	if s == nil {
		return
	}
	c.sess = nil
	s.ended.Store(true)
	s.phase = PhaseEnded

	if s.peer != nil {
		if err := s.peer.Close(); err != nil {
			util.LogDebug("peer close: %v", err)
		}
	}
	if s.screen != nil {
		s.screen.Close()
	}
	if s.local != nil {
		s.local.Close()
	}
	util.LogInfo("call torn down: chat=%s call=%s", s.ChatID, s.callID)
	if fn := c.events.OnCallEnded; fn != nil {
		p.add(fn)
	}
}

// signalBusyLocked surfaces a transient busy indication and schedules its
// auto-dismiss. No session state changes.
func (c *Coordinator) signalBusyLocked(p *pendingEvents, chatID string) {
	if fn := c.events.OnBusy; fn != nil {
		p.add(func() { fn(chatID) })
	}
	if c.busyTimer != nil {
		c.busyTimer.Stop()
	}
	cleared := c.events.OnBusyCleared
	c.busyTimer = time.AfterFunc(c.busyDismiss, func() {
		if cleared != nil {
			cleared()
		}
	})
}

// pendingEvents collects UI callbacks while the lock is held and runs them
// after it is released.
type pendingEvents struct {
	fns []func()
}

func (p *pendingEvents) add(fn func()) {
	p.fns = append(p.fns, fn)
}

func (p *pendingEvents) run() {
	for _, fn := range p.fns {
		fn()
	}
}
