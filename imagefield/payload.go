// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package imagefield

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Payload is the input to Decode. It is one of BinaryStream, TextPayload or
// Invalid, decided once where the request is parsed.
type Payload interface {
	isPayload()
}

// BinaryStream is an uploaded file (multipart form field).
type BinaryStream struct {
	Reader   io.Reader
	Filename string
}

// TextPayload is a base64 string, optionally prefixed with a data-URI header
// such as "data:image/png;base64,".
type TextPayload string

// Invalid is any value that is neither a file nor a string.
type Invalid struct {
	Got string
}

func (BinaryStream) isPayload() {}
func (TextPayload) isPayload()  {}
func (Invalid) isPayload()      {}

// FromJSON classifies a raw JSON field value.
func FromJSON(raw json.RawMessage) Payload {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Invalid{Got: "nothing"}
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return Invalid{Got: "malformed string"}
		}
		return TextPayload(s)
	case 'n':
		return Invalid{Got: "null"}
	case '{':
		return Invalid{Got: "object"}
	case '[':
		return Invalid{Got: "array"}
	case 't', 'f':
		return Invalid{Got: "boolean"}
	default:
		return Invalid{Got: "number"}
	}
}

// FromValue classifies an arbitrary Go value. Raw byte slices are rejected:
// callers must hand over either a reader or the textual payload.
func FromValue(v any) Payload {
	switch x := v.(type) {
	case nil:
		return Invalid{Got: "null"}
	case string:
		return TextPayload(x)
	case []byte:
		return Invalid{Got: "raw bytes"}
	case io.Reader:
		return BinaryStream{Reader: x}
	default:
		return Invalid{Got: fmt.Sprintf("%T", v)}
	}
}
