// Package wire provides the transport codec for every fleetml gRPC
// service. There is no protoc step in this build, so instead of generated
// protobuf marshaling we register a JSON encoding.Codec under the
// "json" subtype and force every client and server to use it. The wire
// format is a behavior (request/response framing, deadlines, streaming)
// riding on top of real gRPC, not a specific byte encoding — JSON fills
// that role exactly as well as protobuf would for this fabric's purposes.
package wire

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

const Name = "json"

func init() {
	encoding.RegisterCodec(codec{})
}

type codec struct{}

func (codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (codec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (codec) Name() string {
	return Name
}
