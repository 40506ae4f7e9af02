package codegen

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/logisq/xyronq/internal/types"
)

// DomainHash computes the drift-detection hash for a domain graph:
// SHA-256 over its canonical JSON serialization. encoding/json emits
// struct fields in declaration order and map keys sorted, so equal
// graphs always hash equal. The same function feeds the hash endpoint
// and the generated metadata artifact, so consumers can compare the two
// directly.
func DomainHash(domain types.DecisionDomain) string {
	encoded, err := json.Marshal(domain)
	if err != nil {
		// A domain graph is always representable as JSON; the only
		// marshal failures are programming errors.
		panic(fmt.Sprintf("domain graph not serializable: %v", err))
	}
	return fmt.Sprintf("%x", sha256.Sum256(encoded))
}
