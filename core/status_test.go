package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusSentinelMatching(t *testing.T) {
	err := Corruptionf("block checksum mismatch at offset %d", 4096)
	assert.True(t, errors.Is(err, ErrCorruption))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.True(t, IsCorruption(err))
	assert.Equal(t, "Corruption: block checksum mismatch at offset 4096", err.Error())
}

func TestStatusWrapped(t *testing.T) {
	inner := IOErrorf("disk gone")
	wrapped := fmt.Errorf("opening table: %w", inner)
	assert.True(t, IsIOError(wrapped))
	assert.False(t, IsCorruption(wrapped))
}

func TestStatusSubCode(t *testing.T) {
	err := NewStatus(CodeBusy, "waiting on table lock").WithSubCode(SubCodeLockTimeout)
	require.Equal(t, CodeBusy, err.Code())
	assert.Equal(t, SubCodeLockTimeout, err.SubCode())
	assert.True(t, errors.Is(err, ErrBusy))
}

func TestStatusCodes(t *testing.T) {
	assert.Equal(t, "NotFound", ErrNotFound.Error())
	assert.Equal(t, "Invalid argument", ErrInvalidArgument.Error())
	assert.Equal(t, "Not implemented", ErrNotSupported.Error())
	assert.Equal(t, CodeNotFound, NotFoundf("x").Code())
	assert.Equal(t, CodeInvalidArgument, InvalidArgumentf("x").Code())
	assert.Equal(t, CodeIncomplete, Incompletef("x").Code())
}
