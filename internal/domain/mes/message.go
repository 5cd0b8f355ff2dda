package mes

// Package mes contains the MES message envelope wire types. The field
// names are a fixed wire contract with the MES backend and must not be
// renamed.

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Protocol constants for the current MES message format.
const (
	MessageVersion = "10.0.0"
	EncodingJSON   = "Json"

	MessageTypeCmd      = "Cmd"
	MessageTypeFeedback = "Fb"

	TransportAPI = "API"
	TransportIoT = "IoT"
)

// Header is the MES message header. JSON tags reproduce the backend's
// PascalCase field names byte-for-byte.
type Header struct {
	SenderID       string `json:"SenderId"`
	ClientID       string `json:"ClientId"`
	Location       string `json:"Location"`
	MessageType    string `json:"MessageType"`
	MessageID      string `json:"MessageId"`
	TimeStamp      string `json:"TimeStamp"`
	MessageVersion string `json:"MessageVersion"`
	DataEncoding   string `json:"DataEncoding"`
	Feedback       bool   `json:"Feedback"`
	ResponseTopic  string `json:"ResponseTopic"`
	Control        string `json:"Control"`
}

// Message pairs a header with a typed payload.
type Message[T any] struct {
	Header Header `json:"Header"`
	Data   T      `json:"Data"`
}

// Control encodes the transport and command type the way the backend
// expects, e.g. Control("IoT", "Scan") == "IoT,Scan".
func Control(transport, commandType string) string {
	return fmt.Sprintf("%s,%s", transport, commandType)
}

// NewHeader builds a command header with a fresh message id and
// timestamp. Sender/client/location fields are filled in by the caller
// when the backend requires them.
func NewHeader(control string) Header {
	return Header{
		MessageType:    MessageTypeCmd,
		MessageID:      uuid.NewString(),
		TimeStamp:      time.Now().UTC().Format(time.RFC3339),
		MessageVersion: MessageVersion,
		DataEncoding:   EncodingJSON,
		Feedback:       true,
		Control:        control,
	}
}

// NewMessage wraps data in an envelope with a command header.
func NewMessage[T any](control string, data T) Message[T] {
	return Message[T]{Header: NewHeader(control), Data: data}
}
