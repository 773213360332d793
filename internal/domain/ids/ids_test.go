package ids

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

const testULID = "01HYX3KQW7ERTV9XNBM2P8QJZF"

func TestNewULIDReturnsValid(t *testing.T) {
	value, err := NewULID()

	require.NoError(t, err)
	require.NoError(t, ValidateULID(value))
}

func TestNewULIDMonotonic(t *testing.T) {
	values := make([]string, 0, 50)
	for range 50 {
		value, err := NewULID()
		require.NoError(t, err)
		values = append(values, value)
	}

	require.True(t, sort.StringsAreSorted(values))
}

func TestIsULIDAndValidateULID(t *testing.T) {
	require.True(t, IsULID(testULID))
	require.True(t, IsULID(" "+testULID+" "))
	require.NoError(t, ValidateULID(testULID))

	require.False(t, IsULID("not-a-ulid"))
	require.False(t, IsULID("1"))
	require.ErrorIs(t, ValidateULID("not-a-ulid"), ErrInvalidULID)
}

func TestNormalizeULID(t *testing.T) {
	normalized, err := NormalizeULID(" 01hyx3kqw7ertv9xnbm2p8qjzf ")

	require.NoError(t, err)
	require.Equal(t, testULID, normalized)

	_, err = NormalizeULID("bad")

	require.ErrorIs(t, err, ErrInvalidULID)
}

func TestUUIDHelpers(t *testing.T) {
	value := NewUUID()

	require.NoError(t, ValidateUUID(value))
	require.ErrorIs(t, ValidateUUID("nope"), ErrInvalidUUID)
}
