// Package hub fans dashboard updates out to websocket clients. One Hub
// serves one stream (status snapshots, scheduler changes); a slow
// client is dropped rather than allowed to hold the others back.
//
// A client that joins late is first sent the latest message, so a
// dashboard opened mid-exhibition renders the current poster at once.
package hub

// MessageType selects the websocket frame type a message is written as
type MessageType int

const (
	// JSONMessage is written as a text frame; status and change streams
	// are JSON.
	JSONMessage MessageType = iota
	// BinaryMessage is written as a binary frame, e.g. a relayed OSC packet.
	BinaryMessage
)

// Message is one payload queued for every client of a hub
type Message struct {
	Type MessageType
	Data []byte
}

// NewJSONMessage wraps already encoded JSON
func NewJSONMessage(data []byte) Message {
	return Message{Type: JSONMessage, Data: data}
}

// NewBinaryMessage wraps raw bytes
func NewBinaryMessage(data []byte) Message {
	return Message{Type: BinaryMessage, Data: data}
}

