package columntable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaAllocate(t *testing.T) {
	a := NewArena(64)
	b1 := a.Allocate(10)
	b2 := a.Allocate(20)
	require.Len(t, b1, 10)
	require.Len(t, b2, 20)

	// Writes must not bleed between allocations.
	for i := range b1 {
		b1[i] = 0xaa
	}
	for _, v := range b2 {
		assert.Equal(t, byte(0), v)
	}
	assert.Equal(t, 30, a.AllocatedBytes())
}

func TestArenaGrowsBeyondBlockSize(t *testing.T) {
	a := NewArena(32)
	big := a.Allocate(1000)
	require.Len(t, big, 1000)
	assert.GreaterOrEqual(t, a.MemoryUsage(), 1000)

	// Subsequent small allocations still work.
	small := a.Allocate(8)
	require.Len(t, small, 8)
}

func TestArenaDefaultBlockSize(t *testing.T) {
	a := NewArena(0)
	a.Allocate(1)
	assert.Equal(t, defaultArenaBlockSize, a.MemoryUsage())
}
