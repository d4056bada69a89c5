package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentitySet_Toggle(t *testing.T) {
	s := IdentitySet{}

	assert.True(t, s.Toggle("alice"))
	assert.True(t, s.Has("alice"))
	assert.Len(t, s, 1)

	// Second toggle by the same identity restores the original state.
	assert.False(t, s.Toggle("alice"))
	assert.False(t, s.Has("alice"))
	assert.Len(t, s, 0)
}

func TestIdentitySet_ScanNullMarksLegacyRow(t *testing.T) {
	var s IdentitySet
	require.NoError(t, s.Scan(nil))
	assert.Nil(t, s, "NULL column must scan to nil, not an empty set")

	require.NoError(t, s.Scan([]byte(`{"alice":true}`)))
	assert.True(t, s.Has("alice"))
}

func TestIdentitySet_ValueRoundTrip(t *testing.T) {
	s := IdentitySet{"alice": true, "bob": true}
	v, err := s.Value()
	require.NoError(t, err)

	var decoded IdentitySet
	require.NoError(t, decoded.Scan(v))
	assert.Equal(t, s, decoded)

	var nilSet IdentitySet
	v, err = nilSet.Value()
	require.NoError(t, err)
	assert.Nil(t, v, "nil set must store as NULL to preserve the legacy marker")
}

func TestStringSet_SortedAndJSON(t *testing.T) {
	s := NewStringSet("zebra", "alpha", "mango")
	assert.Equal(t, []string{"alpha", "mango", "zebra"}, s.Sorted())

	b, err := s.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `["alpha","mango","zebra"]`, string(b))

	var decoded StringSet
	require.NoError(t, decoded.UnmarshalJSON([]byte(`["b","a","b"]`)))
	assert.Len(t, decoded, 2)
	assert.True(t, decoded.Has("a"))
	assert.True(t, decoded.Has("b"))
}

func TestStringSet_ScanValue(t *testing.T) {
	s := NewStringSet("training", "adoption")
	v, err := s.Value()
	require.NoError(t, err)
	assert.Equal(t, `["adoption","training"]`, v)

	var decoded StringSet
	require.NoError(t, decoded.Scan(v))
	assert.Equal(t, s, decoded)

	var fromNull StringSet
	require.NoError(t, fromNull.Scan(nil))
	assert.Nil(t, fromNull)
}
