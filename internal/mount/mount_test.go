package mount

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComparePathDescending(t *testing.T) {
	a := Mount{MountPath: "/media/a", DeviceNumber: 1}
	b := Mount{MountPath: "/media/b", DeviceNumber: 1}
	require.Greater(t, a.Compare(b), 0)
	require.Less(t, b.Compare(a), 0)
}

func TestCompareDeviceNumberAscendingOnTie(t *testing.T) {
	a := Mount{MountPath: "/media/a", DeviceNumber: 1}
	b := Mount{MountPath: "/media/a", DeviceNumber: 2}
	require.Less(t, a.Compare(b), 0)
	require.Equal(t, 0, a.Compare(a))
}
