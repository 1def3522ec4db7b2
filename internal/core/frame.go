package core

// MessageType mirrors the WebSocket data opcodes a session can carry.
type MessageType int

const (
	TextMessage   MessageType = 1
	BinaryMessage MessageType = 2
)

func (t MessageType) String() string {
	switch t {
	case TextMessage:
		return "text"
	case BinaryMessage:
		return "binary"
	default:
		return "unknown"
	}
}

// Frame is one inbound or outbound WebSocket message.
type Frame struct {
	Type    MessageType
	Payload []byte
}

// Text returns the payload as a string, regardless of Type.
func (f Frame) Text() string { return string(f.Payload) }
