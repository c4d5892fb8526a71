package spssconverter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateVariableName(t *testing.T) {
	assert.NoError(t, validateVariableName("age", false))
	assert.NoError(t, validateVariableName("_v1", false))
	assert.NoError(t, validateVariableName("", true))

	assert.ErrorIs(t, validateVariableName("", false), ErrInvalidValue)
	assert.ErrorIs(t, validateVariableName("9lives", false), ErrInvalidValue)
	assert.ErrorIs(t, validateVariableName("has space", false), ErrInvalidValue)
	assert.ErrorIs(t, validateVariableName("has-dash", false), ErrInvalidValue)
}

func TestAsInt(t *testing.T) {
	n, err := asInt(7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = asInt(float64(7))
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = asInt("7")
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = asInt(7.5)
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = asInt("seven")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestAsFloat(t *testing.T) {
	f, err := asFloat(3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, f)

	f, err = asFloat("3.5")
	require.NoError(t, err)
	assert.Equal(t, 3.5, f)

	_, err = asFloat(true)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestAsStringList(t *testing.T) {
	out, err := asStringList("one")
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, out)

	out, err = asStringList([]interface{}{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out)

	out, err = asStringList(nil)
	require.NoError(t, err)
	assert.Nil(t, out)

	_, err = asStringList(42)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestNormalizeValueKey(t *testing.T) {
	k, err := normalizeValueKey(5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), k)

	k, err = normalizeValueKey(float32(1.5))
	require.NoError(t, err)
	assert.Equal(t, float64(1.5), k)

	k, err = normalizeValueKey("M")
	require.NoError(t, err)
	assert.Equal(t, "M", k)

	_, err = normalizeValueKey(true)
	assert.ErrorIs(t, err, ErrInvalidValue)
}
