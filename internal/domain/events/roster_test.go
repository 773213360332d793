package events

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddName(t *testing.T) {
	roster := []string{"Ann"}

	added := AddName(roster, "Bob")
	require.Equal(t, []string{"Ann", "Bob"}, added)
	require.Equal(t, []string{"Ann"}, roster)

	require.Equal(t, []string{"Ann"}, AddName(roster, "Ann"))
	require.Equal(t, []string{"Ann"}, AddName(nil, "Ann"))
}

func TestRemoveName(t *testing.T) {
	require.Equal(t, []string{"Bob", "Cid"}, RemoveName([]string{"Ann", "Bob", "Ann", "Cid"}, "Ann"))
	require.Equal(t, []string{"Bob"}, RemoveName([]string{"Bob"}, "bob"))
	require.Empty(t, RemoveName(nil, "Ann"))
}
