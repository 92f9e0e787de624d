package parameters

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestNewFromConfigString(t *testing.T) {
	params := NewFromConfigString(" source_x=498 ,restart_at_source,, expr=a=b,")
	assert.Equal(t, Params{"source_x": "498", "restart_at_source": "", "expr": "a=b"}, params)
	assert.Empty(t, NewFromConfigString(""))
}

func TestGetAndPop(t *testing.T) {
	params := NewFromConfigString("n=1_000,flag,off=false,name=sand")

	n, err := GetParamOr(params, "n", 7)
	require.NoError(t, err)
	assert.Equal(t, 1000, n)
	assert.Contains(t, params, "n")

	n, err = PopParamOr(params, "n", 7)
	require.NoError(t, err)
	assert.Equal(t, 1000, n)
	assert.NotContains(t, params, "n")

	// Missing key returns default.
	n, err = PopParamOr(params, "n", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	flag, err := PopParamOr(params, "flag", false)
	require.NoError(t, err)
	assert.True(t, flag)

	off, err := PopParamOr(params, "off", true)
	require.NoError(t, err)
	assert.False(t, off)

	name, err := PopParamOr(params, "name", "")
	require.NoError(t, err)
	assert.Equal(t, "sand", name)
	assert.Empty(t, params)
}

func TestParseErrors(t *testing.T) {
	params := NewFromConfigString("n=abc,b=maybe,empty")
	_, err := PopParamOr(params, "n", 0)
	require.Error(t, err)
	assert.Contains(t, params, "n") // Not popped on error.

	_, err = GetParamOr(params, "b", false)
	require.Error(t, err)

	_, err = GetParamOr(params, "empty", 3)
	require.Error(t, err)
}
