// Package rtc owns the WebRTC peer-connection lifecycle for one call and
// the ICE candidate buffering that absorbs signaling-order races.
package rtc

import (
	"fmt"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/teamtide/callkit/internal/util"
)

// CandidateQueue buffers locally generated ICE candidates until the callId
// is known. Before Release, Add appends; after Release, Add sends directly.
// Release drains the buffer in original order exactly once; a second
// Release is a no-op.
type CandidateQueue struct {
	mu       sync.Mutex
	pending  []webrtc.ICECandidateInit
	send     func(webrtc.ICECandidateInit)
	released bool
}

// Add enqueues or, once released, sends the candidate immediately.
func (q *CandidateQueue) Add(c webrtc.ICECandidateInit) {
	q.mu.Lock()
	if !q.released {
		q.pending = append(q.pending, c)
		q.mu.Unlock()
		return
	}
	send := q.send
	q.mu.Unlock()
	send(c)
}

// Release flushes the buffered candidates through send in original order and
// routes all future Adds to it. Returns the number flushed; 0 on repeat
// calls.
func (q *CandidateQueue) Release(send func(webrtc.ICECandidateInit)) int {
	q.mu.Lock()
	if q.released {
		q.mu.Unlock()
		return 0
	}
	q.released = true
	q.send = send
	pending := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, c := range pending {
		send(c)
	}
	return len(pending)
}

// Len reports the number of buffered candidates.
func (q *CandidateQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// InboundCandidates buffers remote ICE candidates until the peer connection
// exists and a remote description has been applied. Exact duplicates (same
// mid, m-line index, and candidate string) are dropped; overlapping topic
// subscriptions can deliver a candidate twice.
type InboundCandidates struct {
	mu       sync.Mutex
	pending  []webrtc.ICECandidateInit
	apply    func(webrtc.ICECandidateInit) error
	released bool
	seen     map[string]struct{}
}

// Add buffers or, once released, applies the candidate. Duplicates are
// silently skipped in both modes.
func (q *InboundCandidates) Add(c webrtc.ICECandidateInit) {
	q.mu.Lock()
	if q.seen == nil {
		q.seen = make(map[string]struct{})
	}
	k := candidateKey(c)
	if _, dup := q.seen[k]; dup {
		q.mu.Unlock()
		util.LogDebug("duplicate ICE candidate skipped: %s", c.Candidate)
		return
	}
	q.seen[k] = struct{}{}
	if !q.released {
		q.pending = append(q.pending, c)
		q.mu.Unlock()
		return
	}
	apply := q.apply
	q.mu.Unlock()
	if err := apply(c); err != nil {
		util.LogWarning("AddICECandidate failed: %v", err)
	}
}

// Release applies the buffered candidates in original order and routes all
// future Adds through apply. Exactly-once: repeat calls return 0.
func (q *InboundCandidates) Release(apply func(webrtc.ICECandidateInit) error) int {
	q.mu.Lock()
	if q.released {
		q.mu.Unlock()
		return 0
	}
	q.released = true
	q.apply = apply
	pending := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, c := range pending {
		if err := apply(c); err != nil {
			util.LogWarning("AddICECandidate failed: %v", err)
		}
	}
	return len(pending)
}

// Len reports the number of buffered candidates.
func (q *InboundCandidates) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// candidateKey builds the dedup key from the m-line id, m-line index, and
// candidate string.
func candidateKey(c webrtc.ICECandidateInit) string {
	mid := ""
	if c.SDPMid != nil {
		mid = *c.SDPMid
	}
	var line uint16
	if c.SDPMLineIndex != nil {
		line = *c.SDPMLineIndex
	}
	return fmt.Sprintf("%s|%d|%s", mid, line, c.Candidate)
}
