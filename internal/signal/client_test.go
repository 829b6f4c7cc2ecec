package signal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// testContext mirrors t.Context() from Go 1.24+: a context canceled when the
// test ends. Needed because this toolchain predates testing.T.Context.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

// testServer is a minimal signaling server double: it records every frame a
// client sends and exposes the live connection so tests can push frames back.
type testServer struct {
	t      *testing.T
	srv    *httptest.Server
	frames chan frame
	conns  chan *websocket.Conn

	upgrader websocket.Upgrader
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := &testServer{
		t:      t,
		frames: make(chan frame, 64),
		conns:  make(chan *websocket.Conn, 4),
	}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		s.conns <- conn
		for {
			var f frame
			if err := conn.ReadJSON(&f); err != nil {
				return
			}
			s.frames <- f
		}
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *testServer) url() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http")
}

func (s *testServer) nextFrame(t *testing.T) frame {
	t.Helper()
	select {
	case f := <-s.frames:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a client frame")
		return frame{}
	}
}

func (s *testServer) nextConn(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case c := <-s.conns:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a client connection")
		return nil
	}
}

func TestClientSubscribePublishDeliver(t *testing.T) {
	s := newTestServer(t)
	client, err := Dial(testContext(t), s.url())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()
	serverConn := s.nextConn(t)

	received := make(chan Message, 1)
	client.Subscribe("/topic/chat/7", func(m Message) { received <- m })

	f := s.nextFrame(t)
	if f.Action != actionSubscribe || f.Topic != "/topic/chat/7" {
		t.Fatalf("subscribe frame = %+v", f)
	}

	if err := client.Publish(DestStart, Message{Type: MsgCallNotification, ChatID: "7", SenderID: "me"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	f = s.nextFrame(t)
	if f.Action != actionSend || f.Destination != DestStart {
		t.Fatalf("send frame = %+v", f)
	}
	if f.Message == nil || f.Message.Type != MsgCallNotification || f.Message.ChatID != "7" {
		t.Fatalf("send frame message = %+v", f.Message)
	}

	// Server pushes a message on the subscribed topic.
	push := frame{Topic: "/topic/chat/7", Message: &Message{Type: MsgOffer, ChatID: "7", SDP: "v=0"}}
	if err := serverConn.WriteJSON(push); err != nil {
		t.Fatalf("server write: %v", err)
	}
	select {
	case m := <-received:
		if m.Type != MsgOffer || m.SDP != "v=0" {
			t.Fatalf("delivered message = %+v", m)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscribed handler never ran")
	}
}

func TestClientSubscribeReplacesHandler(t *testing.T) {
	s := newTestServer(t)
	client, err := Dial(testContext(t), s.url())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()
	serverConn := s.nextConn(t)

	first := make(chan Message, 1)
	second := make(chan Message, 1)
	client.Subscribe("/topic/chat/7", func(m Message) { first <- m })
	s.nextFrame(t)

	// Re-subscribing swaps the handler without another server frame.
	client.Subscribe("/topic/chat/7", func(m Message) { second <- m })

	if err := serverConn.WriteJSON(frame{Topic: "/topic/chat/7", Message: &Message{Type: MsgAnswer}}); err != nil {
		t.Fatal(err)
	}
	select {
	case <-second:
	case <-first:
		t.Fatal("replaced handler still receiving")
	case <-time.After(2 * time.Second):
		t.Fatal("no delivery after handler replacement")
	}

	select {
	case f := <-s.frames:
		t.Fatalf("duplicate subscription frame sent: %+v", f)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestClientUnsubscribe(t *testing.T) {
	s := newTestServer(t)
	client, err := Dial(testContext(t), s.url())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()
	s.nextConn(t)

	client.Subscribe("/user/me/queue/call", func(Message) {})
	s.nextFrame(t)
	client.Unsubscribe("/user/me/queue/call")

	f := s.nextFrame(t)
	if f.Action != actionUnsubscribe || f.Topic != "/user/me/queue/call" {
		t.Fatalf("unsubscribe frame = %+v", f)
	}

	// Unsubscribing an unknown topic sends nothing.
	client.Unsubscribe("/topic/chat/unknown")
	select {
	case f := <-s.frames:
		t.Fatalf("unexpected frame: %+v", f)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestClientReconnectReplaysState(t *testing.T) {
	if testing.Short() {
		t.Skip("reconnect backoff makes this test slow")
	}

	s := newTestServer(t)
	client, err := Dial(testContext(t), s.url())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()
	serverConn := s.nextConn(t)

	client.Subscribe("/topic/chat/7", func(Message) {})
	s.nextFrame(t)

	reconnected := make(chan struct{}, 1)
	client.OnReconnect(func() { reconnected <- struct{}{} })

	// Kill the connection server-side; the client queues publishes while
	// down and replays everything once the reconnect succeeds.
	serverConn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for client.Connected() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if client.Connected() {
		t.Fatal("client never noticed the dropped connection")
	}
	if err := client.Publish(DestEnd, Message{Type: MsgCallEnded, ChatID: "7"}); err != nil {
		t.Fatalf("Publish while down: %v", err)
	}

	s.nextConn(t)
	select {
	case <-reconnected:
	case <-time.After(10 * time.Second):
		t.Fatal("reconnect callback never fired")
	}

	// Subscription replay and the queued publish, in that order.
	f := s.nextFrame(t)
	if f.Action != actionSubscribe || f.Topic != "/topic/chat/7" {
		t.Fatalf("replay frame = %+v", f)
	}
	f = s.nextFrame(t)
	if f.Action != actionSend || f.Destination != DestEnd || f.Message.Type != MsgCallEnded {
		t.Fatalf("queued publish frame = %+v", f)
	}
}

func TestClientCloseIsFinal(t *testing.T) {
	s := newTestServer(t)
	client, err := Dial(testContext(t), s.url())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	s.nextConn(t)

	if err := client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if client.Connected() {
		t.Fatal("Connected() true after Close")
	}
	if err := client.Publish(DestStart, Message{Type: MsgCallNotification}); err == nil {
		t.Fatal("Publish succeeded after Close")
	}
	// Second close is a no-op.
	if err := client.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
