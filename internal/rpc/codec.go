package rpc

import "encoding/json"

// jsonCodec marshals request and response structs with encoding/json.
// Registering it under the name "json" replaces Connect's default JSON
// codec, letting handlers work on plain structs without a generated
// protobuf schema; clients speak Connect's JSON protocol unchanged.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(message any) ([]byte, error) {
	return json.Marshal(message)
}

func (jsonCodec) Unmarshal(data []byte, message any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, message)
}
