// internal/anchor/hash_test.go
package anchor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/anchor-cli/api/schemas"
)

func buttonDescriptor(id string) schemas.ElementDescriptor {
	return schemas.ElementDescriptor{
		TagName: "button",
		Attributes: schemas.AttrList{
			{Key: "id", Value: id},
			{Key: "class", Value: "btn btn-primary"},
		},
		OriginalSelector: "form > button",
	}
}

func TestHashFormat(t *testing.T) {
	h := Hash(buttonDescriptor("submitBtn"))
	assert.Len(t, h, HashLength)
	assert.True(t, ValidHash(h), "hash %q must be 10 lowercase hex chars", h)
}

func TestHashDeterminism(t *testing.T) {
	desc := buttonDescriptor("submitBtn")
	assert.Equal(t, Hash(desc), Hash(desc))
}

func TestHashIgnoresUnstableIDChurn(t *testing.T) {
	// Regenerated framework ids are filtered out of the top candidate, so
	// the hash must not move when only the unstable id changes.
	before := Hash(buttonDescriptor("react-17"))
	after := Hash(buttonDescriptor("react-92"))
	assert.Equal(t, before, after)

	// A stable id, by contrast, becomes the top candidate and changes the hash.
	stable := Hash(buttonDescriptor("submitBtn"))
	assert.NotEqual(t, before, stable)
}

func TestHashSameTopCandidateSameHash(t *testing.T) {
	a := schemas.ElementDescriptor{
		TagName:    "input",
		Attributes: schemas.AttrList{{Key: "name", Value: "email"}},
	}
	b := schemas.ElementDescriptor{
		TagName:    "input",
		Attributes: schemas.AttrList{{Key: "name", Value: "email"}, {Key: "data-junk", Value: "zzz"}},
	}
	assert.Equal(t, Hash(a), Hash(b), "identical tag and top candidate must hash identically")
}

func TestFallbackHash(t *testing.T) {
	desc := schemas.ElementDescriptor{OriginalSelector: "div > span"}

	h0 := FallbackHash(desc, 0)
	h1 := FallbackHash(desc, 1)
	require.True(t, ValidHash(h0))
	require.True(t, ValidHash(h1))
	assert.NotEqual(t, h0, h1, "positional index must distinguish siblings")
}

func TestHashOrFallback(t *testing.T) {
	t.Run("uses the stable hash when a tag exists", func(t *testing.T) {
		desc := buttonDescriptor("submitBtn")
		assert.Equal(t, Hash(desc), HashOrFallback(desc, 3))
	})

	t.Run("degrades to positional when no tag exists", func(t *testing.T) {
		desc := schemas.ElementDescriptor{OriginalSelector: "div > span"}
		assert.Equal(t, FallbackHash(desc, 3), HashOrFallback(desc, 3))
	})
}
