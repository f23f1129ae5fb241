package events

import (
	"encoding/json"

	"github.com/croysdar/clutter-map-sub000/pkg/types"
)

// JSONSerializer encodes payloads and details as compact JSON. It carries no
// state, so a single instance is shared between the recorder and the
// repository; swapping codecs means swapping it in both places at wiring
// time, never per call.
type JSONSerializer struct{}

// Marshal implements types.Serializer.
func (JSONSerializer) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal implements types.Serializer.
func (JSONSerializer) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

var _ types.Serializer = JSONSerializer{}

// DefaultSerializer is used whenever a config omits an explicit serializer.
var DefaultSerializer types.Serializer = JSONSerializer{}
