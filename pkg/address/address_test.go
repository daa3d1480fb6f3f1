package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveIsDeterministic(t *testing.T) {
	a := Derive("user_documents", []byte("owner-key"))
	b := Derive("user_documents", []byte("owner-key"))

	assert.Equal(t, a, b, "identical inputs must derive identical addresses")
}

func TestDeriveDistinguishesInputs(t *testing.T) {
	base := Derive("document", []byte("owner"), []byte("report.pdf"))

	assert.NotEqual(t, base, Derive("document", []byte("owner"), []byte("report2.pdf")))
	assert.NotEqual(t, base, Derive("document", []byte("other"), []byte("report.pdf")))
	assert.NotEqual(t, base, Derive("user_documents", []byte("owner"), []byte("report.pdf")))
}

// Length prefixing must prevent part boundaries from shifting: the
// concatenated bytes are identical in both cases below, so a naive
// concatenation scheme would collide.
func TestDeriveResistsBoundaryAmbiguity(t *testing.T) {
	a := Derive("ns", []byte("ab"), []byte("c"))
	b := Derive("ns", []byte("a"), []byte("bc"))
	assert.NotEqual(t, a, b)

	// Namespace/part boundary as well.
	c := Derive("nsa", []byte("b"))
	d := Derive("ns", []byte("ab"))
	assert.NotEqual(t, c, d)
}

func TestDeriveEmptyParts(t *testing.T) {
	a := Derive("ns")
	b := Derive("ns", []byte{})

	// An explicit empty part is distinct from no part at all.
	assert.NotEqual(t, a, b)
}

func TestStringParseRoundTrip(t *testing.T) {
	a := Derive("document", []byte("owner"), []byte("file"))

	parsed, err := Parse(a.String())
	require.NoError(t, err)
	assert.Equal(t, a, parsed)
}

func TestParseRejectsInvalid(t *testing.T) {
	_, err := Parse("not-hex")
	assert.Error(t, err)

	_, err = Parse("abcd")
	assert.Error(t, err, "short input must be rejected")
}
