// ABOUTME: WebSocket client for the stepseq control protocol
// ABOUTME: Handles connection, handshake, request/reply matching and state updates
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/Resonate-Protocol/stepseq-go/internal/protocol"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ErrNotConnected is returned when sending on a closed client
var ErrNotConnected = errors.New("not connected")

// Config holds client configuration
type Config struct {
	ServerAddr string
	Path       string // defaults to protocol.Path
	ClientID   string
	Name       string
	DeviceInfo protocol.DeviceInfo
}

// RemoteError is a server/error reply
type RemoteError struct {
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Client represents a WebSocket client
type Client struct {
	config  Config
	conn    *websocket.Conn
	mu      sync.RWMutex
	writeMu sync.Mutex

	// Broadcast session state; stale updates are dropped when the reader falls behind
	States chan protocol.SessionState

	pending   map[string]chan protocol.Message
	pendingMu sync.Mutex

	// State
	connected bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewClient creates a new WebSocket client
func NewClient(config Config) *Client {
	if config.Path == "" {
		config.Path = protocol.Path
	}
	if config.ClientID == "" {
		config.ClientID = uuid.New().String()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		config:  config,
		States:  make(chan protocol.SessionState, 16),
		pending: make(map[string]chan protocol.Message),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Connect establishes WebSocket connection and performs handshake
func (c *Client) Connect() error {
	u := url.URL{Scheme: "ws", Host: c.config.ServerAddr, Path: c.config.Path}
	log.Printf("Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	if err := c.handshake(); err != nil {
		c.Close()
		return fmt.Errorf("handshake failed: %w", err)
	}

	go c.readMessages()

	return nil
}

// handshake performs the protocol handshake
func (c *Client) handshake() error {
	hello := protocol.ClientHello{
		ClientID:   c.config.ClientID,
		Name:       c.config.Name,
		Version:    protocol.Version,
		DeviceInfo: &c.config.DeviceInfo,
	}

	if err := c.sendJSON(protocol.Message{Type: protocol.TypeClientHello, Payload: hello}); err != nil {
		return fmt.Errorf("failed to send client/hello: %w", err)
	}

	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read server/hello: %w", err)
	}
	c.conn.SetReadDeadline(time.Time{})

	var serverMsg protocol.Message
	if err := json.Unmarshal(data, &serverMsg); err != nil {
		return fmt.Errorf("failed to parse server/hello: %w", err)
	}

	switch serverMsg.Type {
	case protocol.TypeServerHello:
	case protocol.TypeServerError:
		return remoteError(serverMsg)
	default:
		return fmt.Errorf("expected server/hello, got %s", serverMsg.Type)
	}

	var serverHello protocol.ServerHello
	if err := protocol.DecodePayload(serverMsg.Payload, &serverHello); err != nil {
		return err
	}

	log.Printf("Handshake complete with %s", serverHello.Name)
	return nil
}

// sendJSON sends a JSON message
func (c *Client) sendJSON(msg protocol.Message) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(msg)
}

// readMessages reads and routes incoming messages
func (c *Client) readMessages() {
	defer c.Close()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.ctx.Done():
			default:
				log.Printf("Read error: %v", err)
			}
			return
		}

		c.handleJSONMessage(data)
	}
}

// handleJSONMessage routes replies to their waiting request and state to States
func (c *Client) handleJSONMessage(data []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Failed to parse JSON message: %v", err)
		return
	}

	if msg.ID != "" {
		c.pendingMu.Lock()
		reply, ok := c.pending[msg.ID]
		delete(c.pending, msg.ID)
		c.pendingMu.Unlock()

		if ok {
			reply <- msg
			return
		}
	}

	switch msg.Type {
	case protocol.TypeSessionState:
		var state protocol.SessionState
		if err := protocol.DecodePayload(msg.Payload, &state); err != nil {
			log.Printf("Bad session state: %v", err)
			return
		}
		select {
		case c.States <- state:
		default:
			// Drop the oldest update to keep the latest
			select {
			case <-c.States:
			default:
			}
			select {
			case c.States <- state:
			default:
			}
		}

	case protocol.TypeServerError:
		log.Printf("Server error: %v", remoteError(msg))

	default:
		log.Printf("Unknown message type: %s", msg.Type)
	}
}

// Request sends a command and waits for its reply.
// A server/error reply is returned as *RemoteError.
func (c *Client) Request(ctx context.Context, msgType string, payload interface{}) (protocol.Message, error) {
	id := uuid.New().String()
	reply := make(chan protocol.Message, 1)

	c.pendingMu.Lock()
	c.pending[id] = reply
	c.pendingMu.Unlock()

	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
	}()

	if err := c.sendJSON(protocol.Message{Type: msgType, ID: id, Payload: payload}); err != nil {
		return protocol.Message{}, fmt.Errorf("failed to send %s: %w", msgType, err)
	}

	select {
	case msg := <-reply:
		if msg.Type == protocol.TypeServerError {
			return msg, remoteError(msg)
		}
		return msg, nil
	case <-ctx.Done():
		return protocol.Message{}, fmt.Errorf("waiting for %s reply: %w", msgType, ctx.Err())
	case <-c.ctx.Done():
		return protocol.Message{}, fmt.Errorf("waiting for %s reply: %w", msgType, ErrNotConnected)
	}
}

// RequestState sends a command and decodes the session/state reply
func (c *Client) RequestState(ctx context.Context, msgType string, payload interface{}) (protocol.SessionState, error) {
	msg, err := c.Request(ctx, msgType, payload)
	if err != nil {
		return protocol.SessionState{}, err
	}
	if msg.Type != protocol.TypeSessionState {
		return protocol.SessionState{}, fmt.Errorf("expected session/state reply to %s, got %s", msgType, msg.Type)
	}

	var state protocol.SessionState
	if err := protocol.DecodePayload(msg.Payload, &state); err != nil {
		return protocol.SessionState{}, err
	}
	return state, nil
}

// AddChannel creates a channel and returns its id
func (c *Client) AddChannel(ctx context.Context) (string, error) {
	msg, err := c.Request(ctx, protocol.TypeChannelAdd, nil)
	if err != nil {
		return "", err
	}

	var ref protocol.ChannelRef
	if err := protocol.DecodePayload(msg.Payload, &ref); err != nil {
		return "", err
	}
	return ref.ChannelID, nil
}

// Close closes the connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		c.connected = false
		c.cancel()
		c.conn.Close()
		log.Printf("Connection closed")
	}
}

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func remoteError(msg protocol.Message) error {
	var serverErr protocol.ServerError
	if err := protocol.DecodePayload(msg.Payload, &serverErr); err != nil {
		return fmt.Errorf("malformed server error: %w", err)
	}
	return &RemoteError{Code: serverErr.Error, Message: serverErr.Message}
}
