// Package call implements the call session state machine. A Coordinator
// owns at most one live Session per client and interprets inbound signaling
// messages against the session's current phase and role.
package call

import (
	"sync/atomic"

	"github.com/teamtide/callkit/internal/rtc"
)

// CallType selects audio-only or audio+video capture.
type CallType string

const (
	CallAudio CallType = "AUDIO"
	CallVideo CallType = "VIDEO"
)

// Role distinguishes the side that started the call from the side that was
// notified. Immutable once the session is created.
type Role string

const (
	RoleInitiator Role = "INITIATOR"
	RoleReceiver  Role = "RECEIVER"
)

// Phase is the call lifecycle stage. Monotonic except for the jump to
// PhaseEnded, which is legal from any phase.
type Phase int

const (
	PhaseSignaling Phase = iota
	PhaseAwaitingAccept
	PhaseNegotiating
	PhaseActive
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseSignaling:
		return "SIGNALING"
	case PhaseAwaitingAccept:
		return "AWAITING_ACCEPT"
	case PhaseNegotiating:
		return "NEGOTIATING"
	case PhaseActive:
		return "ACTIVE"
	case PhaseEnded:
		return "ENDED"
	default:
		return "UNKNOWN"
	}
}

// Participant is the identity of a call party.
type Participant struct {
	ID   string
	Name string
}

// Session is the aggregate root for one call attempt. It is a plain,
// inspectable value: all mutation happens under the Coordinator's lock, so
// the fields carry no locking of their own. The ended flag is atomic because
// pion candidate callbacks read it without the lock.
type Session struct {
	ChatID   string
	CallType CallType
	Role     Role
	Remote   Participant

	phase         Phase
	callID        string
	answerApplied bool
	ended         atomic.Bool
	gen           uint64

	// outbound holds locally generated candidates until callID is known;
	// inbound holds remote candidates until a remote description is set.
	outbound rtc.CandidateQueue
	inbound  rtc.InboundCandidates

	peer    Peer
	local   LocalMedia
	screen  LocalMedia
	sharing bool
}

func newSession(chatID string, callType CallType, role Role, remote Participant, gen uint64) *Session {
	return &Session{
		ChatID:   chatID,
		CallType: callType,
		Role:     role,
		Remote:   remote,
		phase:    PhaseSignaling,
		gen:      gen,
	}
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	return s.phase
}

// CallID returns the server-assigned call identifier, or "" while the
// session is still provisional.
func (s *Session) CallID() string {
	return s.callID
}

// Ended reports whether the session has been torn down.
func (s *Session) Ended() bool {
	return s.ended.Load()
}
