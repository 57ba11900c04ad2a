package protocol

import (
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-swarmshow/pkg/geom"
)

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewPoseMessage creates a single-drone setpoint message
func NewPoseMessage(drone string, pose geom.Pose) (*Message, error) {
	return NewMessage(TypePose, DronePose{Drone: drone, Pose: pose})
}

// NewFrameMessage creates a frame message
func NewFrameMessage(frame FrameData) (*Message, error) {
	if frame.Poses == nil {
		frame.Poses = []DronePose{}
	}
	return NewMessage(TypeFrame, frame)
}

// NewStateMessage creates a playback state message
func NewStateMessage(state StateData) (*Message, error) {
	return NewMessage(TypeState, state)
}

// NewAckMessage creates a frame acknowledgement
func NewAckMessage(runID string, seq uint64) (*Message, error) {
	return NewMessage(TypeAck, AckData{RunID: runID, Seq: seq})
}

// NewErrorMessage creates a frame rejection
func NewErrorMessage(runID string, seq uint64, msg string) (*Message, error) {
	return NewMessage(TypeError, ErrorData{RunID: runID, Seq: seq, Message: msg})
}

// NewPingMessage creates a ping message. An empty id is replaced by a
// random one.
func NewPingMessage(id string) (*Message, error) {
	if id == "" {
		id = uuid.NewString()
	}
	return NewMessage(TypePing, PingData{
		ID:        id,
		Timestamp: time.Now().UnixMilli(),
	})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetPoseData extracts a single-drone setpoint from a message
func (m *Message) GetPoseData() (*DronePose, error) {
	var data DronePose
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetFrameData extracts frame data from a message
func (m *Message) GetFrameData() (*FrameData, error) {
	var data FrameData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetStateData extracts state data from a message
func (m *Message) GetStateData() (*StateData, error) {
	var data StateData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetAckData extracts an acknowledgement from a message
func (m *Message) GetAckData() (*AckData, error) {
	var data AckData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetErrorData extracts a rejection from a message
func (m *Message) GetErrorData() (*ErrorData, error) {
	var data ErrorData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
