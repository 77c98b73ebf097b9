package jobmgr

// ResourceLimits describes the cgroup v1 and namespace isolation a Manager
// applies to every job it submits, when configured. Populated from CLI
// flags.
type ResourceLimits struct {
	// CPUMaxPeriod/CPUMaxQuota mirror cpu.cfs_period_us/cpu.cfs_quota_us.
	CPUMaxPeriod uint64
	CPUMaxQuota  int64
	// MemoryMax mirrors memory.limit_in_bytes.
	MemoryMax uint64
	// DeviceIOMaxBPS mirrors blkio.throttle.write_bps_device, applied to
	// the root block device.
	DeviceIOMaxBPS uint64

	// Isolation toggles which Linux namespaces the child is re-executed
	// into. PID and Mount isolation are always safe defaults; Network is
	// optional since some helper commands (e.g. network-backed mounts)
	// need it.
	IsolatePID     bool
	IsolateNetwork bool
	IsolateMount   bool
	// RootFS is the new root the child pivots into when IsolateMount is
	// set. Empty means no pivot_root is performed even if requested.
	RootFS string
}
