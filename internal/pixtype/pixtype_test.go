package pixtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseType_RangeInvariants(t *testing.T) {
	for _, b := range All() {
		t.Run(b.String(), func(t *testing.T) {
			assert.True(t, b.Valid())
			assert.LessOrEqual(t, b.RangeMin(), b.RangeMax())
			assert.Greater(t, b.ByteSize(), 0)
		})
	}
}

func TestBaseType_IntegerSignedness(t *testing.T) {
	assert.True(t, Uint8.IsIntegerType())
	assert.False(t, Uint8.IsSignedType())
	assert.True(t, Int16.IsIntegerType())
	assert.True(t, Int16.IsSignedType())
	assert.False(t, Float32.IsIntegerType())
	assert.True(t, Float32.IsSignedType())
}

func TestFullType_Valid(t *testing.T) {
	ft := GetFullType(Uint8, 3)
	require.True(t, ft.Valid())
	assert.Equal(t, Uint8, ft.ToBaseType())
	assert.Equal(t, 3, ft.GetChannels())
	assert.Equal(t, "uint8x3", ft.String())

	bad := GetFullType(Uint8, 0)
	assert.False(t, bad.Valid())
}

func TestDispatch_DisallowedType(t *testing.T) {
	err := Dispatch(Float64, Funcs{
		Uint8: func() error { return nil },
	}, Uint8, Int8)
	require.Error(t, err)
}

func TestDispatch_MissingImplementation(t *testing.T) {
	err := Dispatch(Uint8, Funcs{})
	require.Error(t, err)
}

func TestDispatch_Runs(t *testing.T) {
	var ran BaseType
	err := Dispatch(Int16, Funcs{
		Int16: func() error { ran = Int16; return nil },
	})
	require.NoError(t, err)
	assert.Equal(t, Int16, ran)
}
