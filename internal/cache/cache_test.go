package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dphaener/golisp/internal/environment"
	"github.com/dphaener/golisp/internal/value"
)

func TestParseCacheReturnsEquivalentNodeOnHit(t *testing.T) {
	c, err := New(4)
	require.NoError(t, err)

	n1, err := c.Parse("(+ 1 2)")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	n2, err := c.Parse("(+ 1 2)")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len(), "identical source must hit the cache, not grow it")

	v1, err := n1.Eval(environment.New())
	require.NoError(t, err)
	v2, err := n2.Eval(environment.New())
	require.NoError(t, err)
	assert.True(t, value.Equal(v1, v2))
}

func TestParseCacheDistinctSourcesGetDistinctEntries(t *testing.T) {
	c, err := New(4)
	require.NoError(t, err)

	_, err = c.Parse("(+ 1 2)")
	require.NoError(t, err)
	_, err = c.Parse("(+ 3 4)")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
}

func TestParseCacheReplaysBuildErrors(t *testing.T) {
	c, err := New(4)
	require.NoError(t, err)

	_, err1 := c.Parse("(set)")
	_, err2 := c.Parse("(set)")
	assert.Equal(t, 1, c.Len())
	require.Error(t, err1)
	require.Error(t, err2)
	assert.Equal(t, err1.Error(), err2.Error())
}

func TestParseCachePurge(t *testing.T) {
	c, err := New(4)
	require.NoError(t, err)
	_, err = c.Parse("(+ 1 2)")
	require.NoError(t, err)
	c.Purge()
	assert.Equal(t, 0, c.Len())
}
