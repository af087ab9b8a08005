package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiRes_SetGetHasRemove(t *testing.T) {
	m := New[int]()
	m.Set("high", 20200101, 1)
	m.Set("high", 20200201, 2)
	m.Set("low", 20200101, 3)

	assert.True(t, m.Has("high", 20200101))
	assert.False(t, m.Has("high", 20200301))

	v, err := m.Get("high", 20200201)
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	tags := m.GetResolutionTags()
	assert.ElementsMatch(t, []string{"high", "low"}, tags)

	dates := m.GetDates("high")
	assert.Equal(t, []int{20200101, 20200201}, dates)

	assert.Equal(t, 2, m.Count("high"))
	assert.Equal(t, 3, m.CountAll())

	require.NoError(t, m.Remove("low", 20200101))
	assert.False(t, m.Has("low", 20200101))
}

func TestMultiRes_MissingKeyIsLogicError(t *testing.T) {
	m := New[string]()
	_, err := m.Get("x", 1)
	require.Error(t, err)

	err = m.Remove("x", 1)
	require.Error(t, err)
}

func TestMultiRes_GetAnyEmptyFails(t *testing.T) {
	m := New[int]()
	_, err := m.GetAny()
	require.Error(t, err)

	m.Set("a", 1, 42)
	v, err := m.GetAny()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}
