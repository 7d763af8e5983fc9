package offload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guileen/nativeplan/plan"
	"github.com/guileen/nativeplan/types"
)

func tagTestNode() plan.Node {
	return plan.NewDataSource("t", []plan.Attribute{{Name: "a", Type: types.ColumnTypeInteger}})
}

func TestTagSetMarkExcluded(t *testing.T) {
	tags := NewTagSet()
	n := tagTestNode()

	assert.False(t, tags.IsExcluded(n))

	tags.MarkExcluded(n, "unsupported function")
	assert.True(t, tags.IsExcluded(n))

	tag, ok := tags.Lookup(n)
	require.True(t, ok)
	assert.Equal(t, "unsupported function", tag.Reason)
}

func TestTagSetCopy(t *testing.T) {
	tags := NewTagSet()
	from := tagTestNode()
	to := tagTestNode()

	tags.MarkExcluded(from, "rejected")
	tags.Copy(from, to)

	assert.True(t, tags.IsExcluded(to))
	assert.True(t, tags.IsExcluded(from), "copy must not clear the source")
}

func TestTagSetCopyFromUntaggedClearsStaleEntry(t *testing.T) {
	tags := NewTagSet()
	from := tagTestNode()
	to := tagTestNode()

	tags.MarkExcluded(to, "stale")
	tags.Copy(from, to)

	_, ok := tags.Lookup(to)
	assert.False(t, ok)
}

func TestTagSetClear(t *testing.T) {
	tags := NewTagSet()
	n := tagTestNode()

	tags.MarkExcluded(n, "rejected")
	tags.Clear(n)

	assert.False(t, tags.IsExcluded(n))
	_, ok := tags.Lookup(n)
	assert.False(t, ok)
}
