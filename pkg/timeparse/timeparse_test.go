package timeparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDDMMYY(t *testing.T) {
	out, err := ToDDMMYY("010124")
	require.NoError(t, err)
	assert.Equal(t, "010124", out)

	out, err = ToDDMMYY("2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, "010124", out)

	out, err = ToDDMMYY(" 010124 ")
	require.NoError(t, err)
	assert.Equal(t, "010124", out)

	_, err = ToDDMMYY("32/01/24")
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = ToDDMMYY("320124")
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = ToDDMMYY("")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestToHHMM(t *testing.T) {
	out, err := ToHHMM("0800")
	require.NoError(t, err)
	assert.Equal(t, "0800", out)

	out, err = ToHHMM("08:00")
	require.NoError(t, err)
	assert.Equal(t, "0800", out)

	out, err = ToHHMM("2359")
	require.NoError(t, err)
	assert.Equal(t, "2359", out)

	_, err = ToHHMM("2400")
	assert.ErrorIs(t, err, ErrInvalidTime)
	_, err = ToHHMM("800")
	assert.ErrorIs(t, err, ErrInvalidTime)
	_, err = ToHHMM("08h00")
	assert.ErrorIs(t, err, ErrInvalidTime)
}

func TestIsValid24hTime(t *testing.T) {
	assert.True(t, IsValid24hTime("0000"))
	assert.True(t, IsValid24hTime("15:04"))
	assert.False(t, IsValid24hTime("1260"))
	assert.False(t, IsValid24hTime("noon"))
}
