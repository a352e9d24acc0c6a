package agent

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// DeriveIdempotencyKey computes a deterministic key for a capability request
// so repeated identical requests collapse to one logical action.
//
// The key is prefixed with the user id and capability name for debuggability,
// followed by a fixed-length digest of the canonicalized argument object.
// Canonicalization goes through encoding/json, which sorts map keys at every
// nesting level, so argument key order never changes the key.
func DeriveIdempotencyKey(userID uuid.UUID, capability string, args map[string]any) string {
	canonical, err := json.Marshal(args)
	if err != nil {
		// Maps of JSON-decoded values always marshal; anything else is
		// hashed by its formatted representation so the key stays stable.
		canonical = fmt.Appendf(nil, "%v", args)
	}
	sum := sha256.Sum256(canonical)
	return fmt.Sprintf("%s:%s:%s", userID, capability, hex.EncodeToString(sum[:]))
}
