// internal/anchor/hash.go
// Derives the short deterministic fingerprint that stands in for a DOM
// element across authoring and replay. The hash is a function of the tag name
// and the most stable selector the descriptor yields, so attribute churn that
// the stability classifier filters out does not change it.
package anchor

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"

	"github.com/xkilldash9x/anchor-cli/api/schemas"
	"github.com/xkilldash9x/anchor-cli/internal/selector"
)

// HashLength is the number of lowercase hex characters in an element hash.
const HashLength = 10

var hashPattern = regexp.MustCompile(`^[0-9a-f]{10}$`)

// ValidHash reports whether s is a well-formed element hash.
func ValidHash(s string) bool {
	return hashPattern.MatchString(s)
}

func digest(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])[:HashLength]
}

// Hash computes the element hash for a descriptor from its tag and top
// selector candidate. Equal descriptors always produce equal hashes.
func Hash(desc schemas.ElementDescriptor) string {
	return digest(fmt.Sprintf("%s_%s", desc.Tag(), selector.StableSelector(desc)))
}

// FallbackHash is the weaker positional variant used when stable-selector
// generation is unusable for a descriptor. It folds in a positional index so
// two indistinguishable siblings still hash apart, at the cost of the hash
// breaking when the element moves.
func FallbackHash(desc schemas.ElementDescriptor, positionalIndex int) string {
	return digest(fmt.Sprintf("%s_%s_%d", desc.Tag(), desc.OriginalSelector, positionalIndex))
}

// HashOrFallback never fails: descriptors with no usable tag or selector
// material degrade to the positional fallback instead of erroring.
func HashOrFallback(desc schemas.ElementDescriptor, positionalIndex int) string {
	if desc.Tag() == "" {
		return FallbackHash(desc, positionalIndex)
	}
	return Hash(desc)
}
