// Package mount models one kernel device-mount record. It is the "thin
// object wrapping a kernel device-mount record" the supervisor spec treats
// as an external collaborator, implemented fully here so a caller can
// maintain a sorted table of active mounts alongside the job supervisor.
package mount

import "strings"

// Mount pairs a device number with the path it is mounted at.
type Mount struct {
	DeviceNumber uint64
	MountPath    string
}

// Compare orders Mounts first by mount path descending (lexicographically),
// then by device number ascending, mirroring udisks_mount_compare exactly.
func (m Mount) Compare(other Mount) int {
	if c := strings.Compare(other.MountPath, m.MountPath); c != 0 {
		return c
	}
	switch {
	case m.DeviceNumber < other.DeviceNumber:
		return -1
	case m.DeviceNumber > other.DeviceNumber:
		return 1
	default:
		return 0
	}
}
