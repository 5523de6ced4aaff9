package websocket

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	// Client to Server
	MessageTypeSubscribe MessageType = "SUBSCRIBE"

	// Server to Client
	MessageTypeSubscribed MessageType = "SUBSCRIBED"
	MessageTypeChange     MessageType = "CHANGE"
	MessageTypeError      MessageType = "ERROR"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// SubscribePayload narrows the feed to the listed entity kinds. An empty list
// subscribes to every kind.
type SubscribePayload struct {
	Kinds []string `json:"kinds"`
}

type SubscribedPayload struct {
	Kinds []string `json:"kinds"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
