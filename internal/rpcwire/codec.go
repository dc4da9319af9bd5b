// Package rpcwire is C7's transport: it puts the extension hub's control
// plane on real google.golang.org/grpc, the way the teacher's daemon.go
// does, but swaps protoc-generated protobuf bindings for a hand-registered
// JSON codec and a manually authored ServiceDesc/method-handler table in the
// same shape protoc-gen-go-grpc would emit. See SPEC_FULL.md §4 for why.
package rpcwire

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// CodecName is registered with grpc's encoding package and must match the
// "Content-Subtype" every client/server on this control plane dials with
// (grpc.CallContentSubtype / grpc's default negotiation uses "proto" unless
// told otherwise — cmd/server wires both ends to "json" explicitly).
const CodecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec implements grpc/encoding.Codec by delegating to encoding/json.
// grpc's Codec interface doesn't know about protobuf specifically — it only
// needs Marshal/Unmarshal against interface{} — so a JSON codec drops in
// without touching anything else in the ServiceDesc/method-handler plumbing.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("rpcwire: marshal: %w", err)
	}
	return b, nil
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("rpcwire: unmarshal: %w", err)
	}
	return nil
}

func (jsonCodec) Name() string { return CodecName }
