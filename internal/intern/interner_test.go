package intern

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kongson-cheung/qvdgo/value"
)

func TestInterner_AssignsFirstSeenOrder(t *testing.T) {
	in := New()

	require.Equal(t, 0, in.Intern(value.Int32(7)))
	require.Equal(t, 0, in.Intern(value.Int32(7)))
	require.Equal(t, 1, in.Intern(value.Int32(9)))
	require.Equal(t, 0, in.Intern(value.Int32(7)))

	require.Equal(t, 2, in.Len())
	symbols := in.Symbols()
	n0, _ := symbols[0].AsInt32()
	n1, _ := symbols[1].AsInt32()
	require.Equal(t, int32(7), n0)
	require.Equal(t, int32(9), n1)
}

func TestInterner_DistinguishesKinds(t *testing.T) {
	in := New()

	i0 := in.Intern(value.Text("1"))
	i1 := in.Intern(value.Int32(1))

	require.NotEqual(t, i0, i1)
	require.Equal(t, 2, in.Len())
}

func TestInterner_DualValuesKeyOnText(t *testing.T) {
	in := New()

	i0 := in.Intern(value.DualInt("2024-01-01", 45292))
	i1 := in.Intern(value.DualInt("2024-01-01", 999)) // same text, different numeric payload

	require.Equal(t, i0, i1, "dual symbols dedupe on their text representation")
}

func TestInterner_Reset(t *testing.T) {
	in := New()
	in.Intern(value.Int32(1))
	in.Intern(value.Int32(2))
	require.Equal(t, 2, in.Len())

	in.Reset()
	require.Equal(t, 0, in.Len())
	require.Equal(t, 0, in.Intern(value.Int32(2)))
}
