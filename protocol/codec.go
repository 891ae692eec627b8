package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrInvalidMessage = errors.New("protocol: invalid message")
	ErrUnknownType    = errors.New("protocol: unknown message type")
)

var decoders = map[string]func() Message{
	TypePredictionRequest:  func() Message { return &PredictionRequest{} },
	TypePredictionResponse: func() Message { return &PredictionResponse{} },
	TypeSpellCheckRequest:  func() Message { return &SpellCheckRequest{} },
	TypeSpellCheckResponse: func() Message { return &SpellCheckResponse{} },
	TypeEdit:               func() Message { return &Edit{} },
	TypeEditResponse:       func() Message { return &EditResponse{} },
	TypeAddWord:            func() Message { return &AddWord{} },
	TypeRemoveWord:         func() Message { return &RemoveWord{} },
	TypeDictionaryUpdated:  func() Message { return &DictionaryUpdated{} },
	TypeHealthRequest:      func() Message { return &HealthRequest{} },
	TypeHealthResponse:     func() Message { return &HealthResponse{} },
	TypeConnectionStatus:   func() Message { return &ConnectionStatus{} },
	TypeFilesChanged:       func() Message { return &FilesChanged{} },
	TypeError:              func() Message { return &Error{} },
}

// Encode marshals m into its envelope.
func Encode(m Message) ([]byte, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.MessageType(), err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.MessageType(), err)
	}
	typ, _ := json.Marshal(m.MessageType())
	fields["type"] = typ
	return json.Marshal(fields)
}

// PeekType returns the "type" field of an envelope.
func PeekType(data []byte) (string, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if env.Type == "" {
		return "", fmt.Errorf("%w: missing type", ErrInvalidMessage)
	}
	return env.Type, nil
}

// Decode parses an envelope into its message body. The returned message
// is a value, not a pointer. Unknown types fail with ErrUnknownType.
func Decode(data []byte) (Message, error) {
	typ, err := PeekType(data)
	if err != nil {
		return nil, err
	}
	mk, ok := decoders[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	m := mk()
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidMessage, typ, err)
	}
	return deref(m), nil
}

func deref(m Message) Message {
	switch v := m.(type) {
	case *PredictionRequest:
		return *v
	case *PredictionResponse:
		return *v
	case *SpellCheckRequest:
		return *v
	case *SpellCheckResponse:
		return *v
	case *Edit:
		return *v
	case *EditResponse:
		return *v
	case *AddWord:
		return *v
	case *RemoveWord:
		return *v
	case *DictionaryUpdated:
		return *v
	case *HealthRequest:
		return *v
	case *HealthResponse:
		return *v
	case *ConnectionStatus:
		return *v
	case *FilesChanged:
		return *v
	case *Error:
		return *v
	default:
		return m
	}
}
