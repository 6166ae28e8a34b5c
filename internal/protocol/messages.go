// ABOUTME: Remote control protocol message type definitions
// ABOUTME: Defines structs for all message types exchanged over the control websocket
package protocol

import (
	"encoding/json"
	"fmt"
)

// Version is the control protocol version
const Version = 1

// Path is the websocket endpoint served by the control server
const Path = "/stepseq"

// Message types
const (
	TypeClientHello = "client/hello"
	TypeServerHello = "server/hello"
	TypeServerError = "server/error"

	TypeChannelAdd    = "channel/add"
	TypeChannelAdded  = "channel/added"
	TypeChannelDelete = "channel/delete"
	TypeChannelLoad   = "channel/load"
	TypeChannelVolume = "channel/volume"
	TypeChannelPitch  = "channel/pitch"
	TypeStepToggle    = "step/toggle"

	TypeTransportBPM   = "transport/bpm"
	TypeTransportStart = "transport/start"
	TypeTransportStop  = "transport/stop"

	TypeSessionExport   = "session/export"
	TypeSessionExported = "session/exported"
	TypeSessionState    = "session/state"
)

// Message is the top-level wrapper for all protocol messages.
// A request carrying an ID gets exactly one reply with the same ID.
type Message struct {
	Type    string      `json:"type"`
	ID      string      `json:"id,omitempty"`
	Payload interface{} `json:"payload"`
}

// DecodePayload converts a generically decoded payload into v
func DecodePayload(payload interface{}, v interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return nil
}

// ClientHello is sent by clients to initiate the handshake
type ClientHello struct {
	ClientID   string      `json:"client_id"`
	Name       string      `json:"name"`
	Version    int         `json:"version"`
	DeviceInfo *DeviceInfo `json:"device_info,omitempty"`
}

// DeviceInfo contains device identification
type DeviceInfo struct {
	ProductName     string `json:"product_name"`
	Manufacturer    string `json:"manufacturer"`
	SoftwareVersion string `json:"software_version"`
}

// ServerHello is the server's response to client/hello
type ServerHello struct {
	ServerID string `json:"server_id"`
	Name     string `json:"name"`
	Version  int    `json:"version"`
}

// ServerError reports a failed command
type ServerError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ChannelRef addresses one channel (channel/delete, channel/added)
type ChannelRef struct {
	ChannelID string `json:"channel_id"`
}

// ChannelLoad asks the server to load a sample file into a channel
type ChannelLoad struct {
	ChannelID string `json:"channel_id"`
	Path      string `json:"path"`
}

// ChannelVolume sets a channel's volume in [0, 1]
type ChannelVolume struct {
	ChannelID string  `json:"channel_id"`
	Volume    float64 `json:"volume"`
}

// ChannelPitch sets a channel's transposition in semitones
type ChannelPitch struct {
	ChannelID string `json:"channel_id"`
	Pitch     int    `json:"pitch"`
}

// StepToggle flips one step of a channel
type StepToggle struct {
	ChannelID string `json:"channel_id"`
	Step      int    `json:"step"`
}

// TransportBPM sets the tempo
type TransportBPM struct {
	BPM int `json:"bpm"`
}

// SessionExport asks the server to render the pattern to a WAV file
type SessionExport struct {
	Path string `json:"path"`
}

// SessionState is broadcast after every change and every step
type SessionState struct {
	Playing  bool          `json:"playing"`
	Cursor   int           `json:"cursor"`
	Playhead int           `json:"playhead"`
	BPM      int           `json:"bpm"`
	Steps    int           `json:"steps"`
	Channels []ChannelInfo `json:"channels"`
}

// ChannelInfo describes one channel in a session/state message
type ChannelInfo struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Steps  []bool  `json:"steps"`
	Volume float64 `json:"volume"`
	Pitch  int     `json:"pitch"`
	Sample string  `json:"sample,omitempty"`
}
