// Package protocol defines the JSON messages exchanged with flight bridges
// and live viewers.
// The same envelope is used on websockets and HTTP bodies.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/teslashibe/go-swarmshow/pkg/geom"
)

// MessageType identifies the type of message
type MessageType string

const (
	// Show → bridge messages
	TypePose  MessageType = "pose"  // Single drone setpoint
	TypeFrame MessageType = "frame" // Every drone at one show instant

	// Show → viewer messages
	TypeState MessageType = "state" // Playback state change

	// Bridge → show messages
	TypeAck   MessageType = "ack"   // Frame accepted
	TypeError MessageType = "error" // Frame rejected

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("failed to parse message: missing type")
	}
	return &msg, nil
}

// =============================================================================
// Show → Bridge Message Types
// =============================================================================

// DronePose is one drone's setpoint. The pose fields are inlined.
type DronePose struct {
	Drone string `json:"drone"`
	geom.Pose
}

// FrameData carries the setpoints of every drone that moved since the
// previous frame of the run.
type FrameData struct {
	RunID    string      `json:"run_id"`
	Seq      uint64      `json:"seq"`
	ShowTime float64     `json:"show_time"` // seconds since show start
	Act      string      `json:"act,omitempty"`
	Poses    []DronePose `json:"poses"`
}

// Drones returns the drone names in the frame, in order.
func (f FrameData) Drones() []string {
	out := make([]string, len(f.Poses))
	for i, p := range f.Poses {
		out[i] = p.Drone
	}
	return out
}

// =============================================================================
// Show → Viewer Message Types
// =============================================================================

// StateData describes the playback state
type StateData struct {
	RunID    string  `json:"run_id"`
	Show     string  `json:"show"`
	State    string  `json:"state"` // "idle", "playing", "paused", "finished"
	ShowTime float64 `json:"show_time"`
	Duration float64 `json:"duration"`
	Act      string  `json:"act,omitempty"`
	Loop     bool    `json:"loop,omitempty"`
}

// =============================================================================
// Bridge → Show Message Types
// =============================================================================

// AckData acknowledges a frame
type AckData struct {
	RunID string `json:"run_id"`
	Seq   uint64 `json:"seq"`
}

// ErrorData reports a rejected frame
type ErrorData struct {
	RunID   string `json:"run_id,omitempty"`
	Seq     uint64 `json:"seq,omitempty"`
	Message string `json:"message"`
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
