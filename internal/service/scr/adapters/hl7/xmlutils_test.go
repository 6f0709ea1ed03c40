package hl7

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/exceptions"
)

const fragment = `<root>
	<entry seq="1"><code code="alpha"/></entry>
	<entry seq="2"><code code="beta"/></entry>
	<entry seq="3"><code code="gamma"/></entry>
</root>`

func TestValueAt(t *testing.T) {
	document, err := Parse(fragment)
	require.NoError(t, err)

	t.Run("returns the value at the path", func(t *testing.T) {
		value, err := ValueAt(document, "//entry[@seq='2']/code/@code")
		require.NoError(t, err)
		assert.Equal(t, "beta", value)
	})

	t.Run("missing path is an error naming the path", func(t *testing.T) {
		_, err := ValueAt(document, "//entry[@seq='9']/code/@code")
		var pathErr exceptions.PathNotFoundError
		require.ErrorAs(t, err, &pathErr)
		assert.Contains(t, pathErr.Error(), "//entry[@seq='9']/code/@code")
	})
}

func TestOptionalValueAt(t *testing.T) {
	document, err := Parse(fragment)
	require.NoError(t, err)

	value, ok := OptionalValueAt(document, "//entry[@seq='1']/code/@code")
	assert.True(t, ok)
	assert.Equal(t, "alpha", value)

	_, ok = OptionalValueAt(document, "//absent")
	assert.False(t, ok)
}

func TestNodesAt(t *testing.T) {
	document, err := Parse(fragment)
	require.NoError(t, err)

	t.Run("preserves document order", func(t *testing.T) {
		nodes := NodesAt(document, "//entry")
		require.Len(t, nodes, 3)
		var codes []string
		for _, node := range nodes {
			code, err := ValueAt(node, "./code/@code")
			require.NoError(t, err)
			codes = append(codes, code)
		}
		assert.Equal(t, []string{"alpha", "beta", "gamma"}, codes)
	})

	t.Run("no match is an empty slice, not an error", func(t *testing.T) {
		assert.Empty(t, NodesAt(document, "//absent"))
	})
}

func TestParseRejectsMalformedMarkup(t *testing.T) {
	_, err := Parse("<root><unclosed></root>")
	assert.Error(t, err)
}
