// Package util holds small helpers shared by the command line tools
package util

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// configSpace namespaces configuration fingerprints
var configSpace = uuid.MustParse("6f1c2d0e-6a52-4f0c-9f55-3b2f1e1d8a40")

// Fingerprint is a name-based (MD5, version 3) UUID of the JSON form of v.
// Equal configurations give equal fingerprints, which lets batch logs be
// grouped by the settings that produced them.
func Fingerprint(v any) (uuid.UUID, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return uuid.Nil, fmt.Errorf("fingerprint: %w", err)
	}
	return uuid.NewMD5(configSpace, raw), nil
}

// RunID identifies one invocation
func RunID() string {
	return uuid.NewString()
}
