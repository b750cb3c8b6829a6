package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytewiseSeparator(t *testing.T) {
	cmp := BytewiseComparator()
	cases := []struct {
		start, limit string
	}{
		{"the quick brown fox", "the who"},
		{"abc", "abd"},
		{"abc", "abcd"},
		{"a", "b"},
		{"apple", "banana"},
		{"k\xff\xff", "l"},
	}
	for _, tc := range cases {
		sep := cmp.FindShortestSeparator([]byte(tc.start), []byte(tc.limit))
		assert.GreaterOrEqual(t, cmp.Compare(sep, []byte(tc.start)), 0,
			"separator must be >= start for %q/%q", tc.start, tc.limit)
		assert.Negative(t, cmp.Compare(sep, []byte(tc.limit)),
			"separator must be < limit for %q/%q", tc.start, tc.limit)
		assert.LessOrEqual(t, len(sep), len(tc.start))
	}
}

func TestBytewiseSeparatorShortens(t *testing.T) {
	cmp := BytewiseComparator()
	sep := cmp.FindShortestSeparator([]byte("the quick brown fox"), []byte("the who"))
	assert.Equal(t, []byte("the r"), sep)
}

func TestBytewiseSuccessor(t *testing.T) {
	cmp := BytewiseComparator()
	assert.Equal(t, []byte("b"), cmp.FindShortSuccessor([]byte("abc")))
	assert.Equal(t, []byte("\xff\xff"), cmp.FindShortSuccessor([]byte("\xff\xff")))
	succ := cmp.FindShortSuccessor([]byte("\xffk"))
	assert.GreaterOrEqual(t, cmp.Compare(succ, []byte("\xffk")), 0)
}

func TestInternalKeyComparatorOrder(t *testing.T) {
	icmp := NewInternalKeyComparator(BytewiseComparator())

	a1 := MakeInternalKey([]byte("a"), 100, TypeValue)
	a2 := MakeInternalKey([]byte("a"), 99, TypeValue)
	b1 := MakeInternalKey([]byte("b"), 1, TypeValue)

	// User key ascending dominates.
	assert.Negative(t, icmp.Compare(a1, b1))
	// Same user key: higher sequence first.
	assert.Negative(t, icmp.Compare(a1, a2))
	// Same user key and sequence: higher type first.
	del := MakeInternalKey([]byte("a"), 100, TypeSingleDeletion)
	assert.Negative(t, icmp.Compare(del, a1))

	assert.Zero(t, icmp.Compare(a1, MakeInternalKey([]byte("a"), 100, TypeValue)))
}

func TestInternalKeySeparatorOrdersBetween(t *testing.T) {
	icmp := NewInternalKeyComparator(BytewiseComparator())
	start := MakeInternalKey([]byte("the quick brown fox"), 7, TypeValue)
	limit := MakeInternalKey([]byte("the who"), 5, TypeValue)

	sep := icmp.FindShortestSeparator(start, limit)
	require.GreaterOrEqual(t, len(sep), InternalKeyTrailerLen)
	assert.GreaterOrEqual(t, icmp.Compare(sep, start), 0)
	assert.Negative(t, icmp.Compare(sep, limit))
	assert.LessOrEqual(t, len(sep), len(start))
}

func TestColumnKeyComparatorNeverShortens(t *testing.T) {
	cmp := NewColumnKeyComparator()
	a := EncodeRowPosition(41)
	b := EncodeRowPosition(42)
	assert.Negative(t, cmp.Compare(a, b))
	assert.Equal(t, a, cmp.FindShortestSeparator(a, b))
	assert.Equal(t, a, cmp.FindShortSuccessor(a))
}
