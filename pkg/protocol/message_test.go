package protocol

import (
	"strings"
	"testing"
	"time"

	"github.com/teslashibe/go-swarmshow/pkg/geom"
)

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name    string
		msgType MessageType
		data    interface{}
		wantErr bool
	}{
		{
			name:    "frame message",
			msgType: TypeFrame,
			data:    FrameData{RunID: "run", Seq: 1},
			wantErr: false,
		},
		{
			name:    "state message",
			msgType: TypeState,
			data:    StateData{State: "playing", Duration: 10},
			wantErr: false,
		},
		{
			name:    "nil data",
			msgType: TypePing,
			data:    nil,
			wantErr: false,
		},
		{
			name:    "unmarshalable data",
			msgType: TypeFrame,
			data:    make(chan int),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage(tt.msgType, tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewMessage() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if msg.Type != tt.msgType {
				t.Errorf("NewMessage() type = %v, want %v", msg.Type, tt.msgType)
			}
			if msg.Timestamp == 0 {
				t.Error("NewMessage() timestamp should be set")
			}
		})
	}
}

func TestFrameRoundTrip(t *testing.T) {
	original := FrameData{
		RunID:    "7d1c",
		Seq:      42,
		ShowTime: 12.5,
		Act:      "IntroAct",
		Poses: []DronePose{
			{Drone: "Nerve", Pose: geom.Pose{X: 1, Y: 2, Z: 3, Yaw: -1.5}},
			{Drone: "Romeo", Pose: geom.Pose{X: 4, Y: 5, Z: 1}},
		},
	}

	msg, err := NewFrameMessage(original)
	if err != nil {
		t.Fatalf("NewFrameMessage() error = %v", err)
	}

	bytes, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	if !strings.Contains(string(bytes), `"drone":"Nerve","x":1`) {
		t.Errorf("pose fields should be inlined, got %s", bytes)
	}

	parsed, err := ParseMessage(bytes)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}
	if parsed.Type != TypeFrame {
		t.Errorf("Type = %v, want %v", parsed.Type, TypeFrame)
	}

	frame, err := parsed.GetFrameData()
	if err != nil {
		t.Fatalf("GetFrameData() error = %v", err)
	}
	if frame.Seq != 42 || frame.RunID != "7d1c" || frame.Act != "IntroAct" {
		t.Errorf("frame header = %+v", frame)
	}
	if len(frame.Poses) != 2 || frame.Poses[0] != original.Poses[0] {
		t.Errorf("Poses = %+v, want %+v", frame.Poses, original.Poses)
	}
	if got := frame.Drones(); got[0] != "Nerve" || got[1] != "Romeo" {
		t.Errorf("Drones() = %v", got)
	}
}

func TestFrameMessage_EmptyPoses(t *testing.T) {
	msg, err := NewFrameMessage(FrameData{RunID: "r"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(msg.Data), `"poses":[]`) {
		t.Errorf("expected an empty poses array, got %s", msg.Data)
	}
}

func TestPoseMessage(t *testing.T) {
	msg, err := NewPoseMessage("Dumbo", geom.Pose{X: 4, Y: 3.5, Z: 2.5})
	if err != nil {
		t.Fatalf("NewPoseMessage() error = %v", err)
	}

	pose, err := msg.GetPoseData()
	if err != nil {
		t.Fatalf("GetPoseData() error = %v", err)
	}
	if pose.Drone != "Dumbo" || pose.Z != 2.5 {
		t.Errorf("pose = %+v", pose)
	}
}

func TestStateMessage(t *testing.T) {
	msg, err := NewStateMessage(StateData{RunID: "r", Show: "rats-intro", State: "paused", ShowTime: 3, Duration: 60, Loop: true})
	if err != nil {
		t.Fatalf("NewStateMessage() error = %v", err)
	}

	state, err := msg.GetStateData()
	if err != nil {
		t.Fatalf("GetStateData() error = %v", err)
	}
	if state.State != "paused" || state.Duration != 60 || !state.Loop {
		t.Errorf("state = %+v", state)
	}
}

func TestAckAndErrorMessages(t *testing.T) {
	ack, err := NewAckMessage("r", 7)
	if err != nil {
		t.Fatal(err)
	}
	a, err := ack.GetAckData()
	if err != nil || a.Seq != 7 {
		t.Errorf("ack = %+v, err = %v", a, err)
	}

	rej, err := NewErrorMessage("r", 8, "geofence")
	if err != nil {
		t.Fatal(err)
	}
	e, err := rej.GetErrorData()
	if err != nil || e.Message != "geofence" || e.Seq != 8 {
		t.Errorf("error = %+v, err = %v", e, err)
	}
}

func TestPingPongMessage(t *testing.T) {
	pingMsg, err := NewPingMessage("test-123")
	if err != nil {
		t.Fatalf("NewPingMessage() error = %v", err)
	}

	pingData, err := pingMsg.GetPingData()
	if err != nil {
		t.Fatalf("GetPingData() error = %v", err)
	}
	if pingData.ID != "test-123" {
		t.Errorf("ID = %v, want test-123", pingData.ID)
	}

	now := time.Now().UnixMilli()
	pongMsg, err := NewPongMessage("test-123", pingData.Timestamp, now)
	if err != nil {
		t.Fatalf("NewPongMessage() error = %v", err)
	}
	pongData, err := pongMsg.GetPongData()
	if err != nil {
		t.Fatalf("GetPongData() error = %v", err)
	}
	if pongData.LatencyMs < 0 {
		t.Errorf("LatencyMs = %v, should be >= 0", pongData.LatencyMs)
	}

	anon, _ := NewPingMessage("")
	anonData, _ := anon.GetPingData()
	if len(anonData.ID) != 36 {
		t.Errorf("expected a generated UUID, got %q", anonData.ID)
	}
}

func TestParseMessage_Invalid(t *testing.T) {
	for _, raw := range []string{"not json", `{"data":{}}`} {
		if _, err := ParseMessage([]byte(raw)); err == nil {
			t.Errorf("ParseMessage(%q) should fail", raw)
		}
	}
}
