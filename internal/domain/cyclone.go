package domain

import "encoding/json"

// CycloneData is the upstream tropical cyclone document. It is validated as
// JSON but otherwise re-emitted byte for byte.
type CycloneData json.RawMessage
