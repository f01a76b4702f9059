package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorConfigPresets(t *testing.T) {
	strict := Strict()
	assert.Equal(t, 1, strict.MaxErrors)
	assert.False(t, strict.ContinueOnParseError)
	assert.False(t, strict.ContinueOnMissingObject)

	def := Default()
	assert.True(t, def.ContinueOnMissingObject)
	assert.True(t, def.ContinueOnEncodingError)
	assert.False(t, def.ContinueOnParseError, "structural errors stay fatal under Default")

	permissive := Permissive()
	assert.True(t, permissive.ContinueOnParseError)
	assert.True(t, permissive.ContinueOnMissingObject)
}

func TestErrorConfigTolerates(t *testing.T) {
	def := Default()
	assert.True(t, def.tolerates(MissingObject))
	assert.True(t, def.tolerates(EncodingError))
	assert.False(t, def.tolerates(InvalidXRef), "InvalidXRef is structural and requires ContinueOnParseError")

	permissive := Permissive()
	assert.True(t, permissive.tolerates(InvalidXRef))
	assert.True(t, permissive.tolerates(CircularReference))
}

func TestErrorLogStopsAtMaxErrors(t *testing.T) {
	log := newErrorLog(ErrorConfig{MaxErrors: 2, ContinueOnMissingObject: true, LogErrors: true})

	ok := log.add(newExtractError(MissingObject, 10, 1, "missing object 5", nil))
	require.True(t, ok)

	ok = log.add(newExtractError(MissingObject, 20, 1, "missing object 6", nil))
	assert.False(t, ok, "adding the second error should hit MaxErrors and signal stop")

	require.Len(t, log.Errors(), 2)
	assert.Equal(t, MissingObject, log.Errors()[0].Kind)
}

func TestErrorLogFatalStructuralError(t *testing.T) {
	log := newErrorLog(Default())
	ok := log.add(newExtractError(InvalidXRef, 0, 0, "xref table corrupt", nil))
	assert.False(t, ok, "InvalidXRef is fatal under Default")
}

func TestExtractErrorMessageIncludesKindAndOffset(t *testing.T) {
	err := newExtractError(CircularReference, 42, 3, "page tree cycle detected", nil)
	msg := err.Error()
	assert.Contains(t, msg, "CircularReference")
	assert.Contains(t, msg, "42")
	assert.Contains(t, msg, "3")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "OutputTooLarge", OutputTooLarge.String())
	assert.Equal(t, "UnsupportedFilter", UnsupportedFilter.String())
}
