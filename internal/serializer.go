// Package internal holds serialization helpers shared by the cache and
// invalidation transports.
package internal

import "encoding/json"

// Marshal encodes a payload for the wire or the cache. Byte slices and
// strings pass through untouched; everything else is JSON encoded.
func Marshal(payload any) ([]byte, error) {
	switch v := payload.(type) {
	case []byte:
		return v, nil
	case json.RawMessage:
		return v.MarshalJSON()
	case string:
		return []byte(v), nil
	default:
		return json.Marshal(payload)
	}
}

// Unmarshal decodes data into holder, mirroring Marshal's fast paths.
func Unmarshal(data []byte, holder any) error {
	switch v := holder.(type) {
	case *[]byte:
		*v = data
		return nil
	case *json.RawMessage:
		*v = json.RawMessage(data)
		return nil
	case *string:
		*v = string(data)
		return nil
	default:
		return json.Unmarshal(data, holder)
	}
}
