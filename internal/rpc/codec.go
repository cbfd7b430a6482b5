// Package rpc exposes the ledger over Connect RPC with a plain JSON
// codec, mirroring the HTTP surface the web client consumes.
package rpc

import "encoding/json"

// jsonCodec marshals request and response payloads with encoding/json.
// Registering it under the name "json" replaces Connect's default
// protobuf-backed JSON codec, so handlers work on plain Go structs and
// clients talk application/json.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(message any) ([]byte, error) {
	return json.Marshal(message)
}

func (jsonCodec) Unmarshal(data []byte, message any) error {
	return json.Unmarshal(data, message)
}
