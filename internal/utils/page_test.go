package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageRequestLimit(t *testing.T) {
	assert.Equal(t, DefaultPageSize, PageRequest{}.Limit())
	assert.Equal(t, 5, PageRequest{First: 5}.Limit())
	assert.Equal(t, MaxPageSize, PageRequest{First: MaxPageSize + 1}.Limit())
}

func TestNewPage(t *testing.T) {
	id := func(s string) string { return s }

	page := NewPage([]string{"a", "b", "c"}, 2, 7, id)
	assert.Equal(t, []string{"a", "b"}, page.Items)
	assert.True(t, page.HasNextPage)
	assert.Equal(t, int64(7), page.TotalCount)

	key, err := PageRequest{After: page.EndCursor}.AfterKey()
	require.NoError(t, err)
	assert.Equal(t, "b", key)

	empty := NewPage[string](nil, 2, 0, id)
	assert.Equal(t, []string{}, empty.Items)
	assert.False(t, empty.HasNextPage)
	assert.Empty(t, empty.EndCursor)

	_, err = PageRequest{After: "%%%"}.AfterKey()
	assert.Error(t, err)
}
