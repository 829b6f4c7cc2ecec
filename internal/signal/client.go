package signal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/teamtide/callkit/internal/util"
)

// Client actions understood by the signaling server.
const (
	actionSubscribe   = "subscribe"
	actionUnsubscribe = "unsubscribe"
	actionSend        = "send"
)

const (
	reconnectBase = time.Second
	reconnectMax  = 30 * time.Second
)

// frame is the JSON envelope on the wire. Client→server frames carry an
// action; server→client frames carry the source topic and the message.
type frame struct {
	Action      string   `json:"action,omitempty"`
	Topic       string   `json:"topic,omitempty"`
	Destination string   `json:"destination,omitempty"`
	Message     *Message `json:"message,omitempty"`
}

// Client is the WebSocket implementation of Transport. It maintains a
// process-wide subscription table, replays subscriptions after a reconnect,
// and queues publishes attempted while the connection is down.
type Client struct {
	url      string
	clientID string

	mu           sync.Mutex
	conn         *websocket.Conn
	subs         map[string]Handler
	pending      []frame
	reconnectFns []func()
	closed       bool

	done chan struct{}
}

// Compile-time interface check.
var _ Transport = (*Client)(nil)

// Dial connects to the signaling server and starts the read loop. The
// initial connection attempt must succeed; later disconnects are handled by
// the automatic reconnect loop.
func Dial(ctx context.Context, serverURL string) (*Client, error) {
	c := &Client{
		url:      serverURL,
		clientID: uuid.NewString(),
		subs:     make(map[string]Handler),
		done:     make(chan struct{}),
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to signaling server: %w", err)
	}
	c.conn = conn

	go c.readLoop(conn)
	return c, nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url+"?client="+c.clientID, nil)
	return conn, err
}

// Publish sends a message to an application destination. While disconnected
// the frame enters the pending queue and is flushed FIFO on reconnect.
func (c *Client) Publish(destination string, msg Message) error {
	f := frame{Action: actionSend, Destination: destination, Message: &msg}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("signaling client closed")
	}
	if c.conn == nil {
		c.pending = append(c.pending, f)
		util.LogDebug("transport down, queued %s to %s (%d pending)", msg.Type, destination, len(c.pending))
		return nil
	}
	if err := c.conn.WriteJSON(f); err != nil {
		// The read loop will notice the dead connection and reconnect;
		// keep the frame so it is retried then.
		c.pending = append(c.pending, f)
		util.LogWarning("publish failed, queued for retry: %v", err)
	}
	return nil
}

// Subscribe registers fn for a topic. A second Subscribe on the same topic
// replaces the handler without creating another server-side subscription.
func (c *Client) Subscribe(topic string, fn Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, existed := c.subs[topic]
	c.subs[topic] = fn
	if existed || c.conn == nil {
		return
	}
	if err := c.conn.WriteJSON(frame{Action: actionSubscribe, Topic: topic}); err != nil {
		util.LogWarning("subscribe %s failed: %v", topic, err)
	}
}

// Unsubscribe removes the topic subscription.
func (c *Client) Unsubscribe(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.subs[topic]; !ok {
		return
	}
	delete(c.subs, topic)
	if c.conn != nil {
		_ = c.conn.WriteJSON(frame{Action: actionUnsubscribe, Topic: topic})
	}
}

// OnReconnect registers a callback fired after each successful reconnect.
func (c *Client) OnReconnect(fn func()) {
	c.mu.Lock()
	c.reconnectFns = append(c.reconnectFns, fn)
	c.mu.Unlock()
}

// Connected reports whether the connection is currently up.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Close shuts the client down permanently. No reconnect is attempted.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	close(c.done)
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// readLoop reads frames until the connection dies, then hands off to the
// reconnect loop. One readLoop is alive per connection.
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			c.mu.Lock()
			closed := c.closed
			if c.conn == conn {
				c.conn = nil
			}
			c.mu.Unlock()
			conn.Close()

			if closed {
				return
			}
			util.LogWarning("signaling connection lost: %v", err)
			c.reconnectLoop()
			return
		}
		if f.Message == nil {
			continue
		}

		c.mu.Lock()
		handler := c.subs[f.Topic]
		c.mu.Unlock()
		if handler == nil {
			util.LogDebug("no subscription for topic %s, dropping %s", f.Topic, f.Message.Type)
			continue
		}
		handler(*f.Message)
	}
}

// reconnectLoop dials with exponential backoff until it succeeds or the
// client is closed. On success it replays every subscription, flushes the
// pending publish queue in order, and fires the reconnect callbacks.
func (c *Client) reconnectLoop() {
	backoff := reconnectBase
	for {
		select {
		case <-c.done:
			return
		case <-time.After(backoff):
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		conn, err := c.dial(ctx)
		cancel()
		if err != nil {
			util.LogDebug("reconnect failed, retrying in %s: %v", backoff, err)
			if backoff *= 2; backoff > reconnectMax {
				backoff = reconnectMax
			}
			continue
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			conn.Close()
			return
		}
		c.conn = conn
		topics := make([]string, 0, len(c.subs))
		for topic := range c.subs {
			topics = append(topics, topic)
		}
		pending := c.pending
		c.pending = nil
		fns := make([]func(), len(c.reconnectFns))
		copy(fns, c.reconnectFns)

		for _, topic := range topics {
			_ = conn.WriteJSON(frame{Action: actionSubscribe, Topic: topic})
		}
		for _, f := range pending {
			_ = conn.WriteJSON(f)
		}
		c.mu.Unlock()

		util.LogInfo("signaling reconnected (%d subscriptions, %d queued publishes)", len(topics), len(pending))
		go c.readLoop(conn)
		for _, fn := range fns {
			fn()
		}
		return
	}
}
