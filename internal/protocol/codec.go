package protocol

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

var (
	// ErrUnknownType is returned for messages without a recognized type.
	ErrUnknownType = errors.New("protocol: unknown message type")
	// ErrMalformed is returned when a recognized message fails to decode.
	ErrMalformed = errors.New("protocol: malformed message")
)

// wire uses encoding/json compatible settings.
var wire = sonic.ConfigStd

type envelope struct {
	Type Type `json:"type"`
}

// Decode parses a raw message into one of the typed message structs.
// Messages whose type is missing or unrecognized yield ErrUnknownType.
func Decode(data []byte) (any, error) {
	var env envelope
	if err := wire.Unmarshal(data, &env); err != nil {
		return nil, ErrUnknownType
	}

	var (
		msg any
		err error
	)
	switch env.Type {
	case TypeDataUpdate:
		var m DataUpdate
		err = wire.Unmarshal(data, &m)
		msg = m
	case TypeResourceRequest:
		var m ResourceRequest
		err = wire.Unmarshal(data, &m)
		msg = m
	case TypeResourceResponse:
		var m ResourceResponse
		err = wire.Unmarshal(data, &m)
		msg = m
	case TypeToolCall:
		var m ToolCall
		err = wire.Unmarshal(data, &m)
		msg = m
	case TypeToolResult:
		var m ToolResult
		err = wire.Unmarshal(data, &m)
		msg = m
	default:
		return nil, ErrUnknownType
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, env.Type, err)
	}
	return msg, nil
}

// Encode serializes a message for the wire.
func Encode(msg any) ([]byte, error) {
	data, err := wire.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode: %w", err)
	}
	return data, nil
}
