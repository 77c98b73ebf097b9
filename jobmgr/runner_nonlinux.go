//go:build !linux
// +build !linux

package jobmgr

import "fmt"

func newRunner(limits *ResourceLimits) (runner, error) {
	if limits == nil {
		return plainRunner{}, nil
	}
	return nil, fmt.Errorf("resource-isolated jobs are only supported on linux")
}

// ChildExecArgs mirrors the Linux build's payload shape so cmd/ can
// reference the type regardless of platform; the child-exec subcommand
// itself is only ever reachable on Linux.
type ChildExecArgs struct {
	CPUMaxPeriod   uint64 `json:"cpu_max_period"`
	CPUMaxQuota    int64  `json:"cpu_max_quota"`
	MemoryMax      uint64 `json:"memory_max"`
	DeviceIOMaxBPS uint64 `json:"device_io_max_bps"`
	RootFS         string `json:"root_fs"`
}

func WriteCGroupSettings(pid int, args ChildExecArgs) error {
	return fmt.Errorf("cgroups are only supported on linux")
}

// RunChildExec never actually runs outside Linux: newRunner refuses to
// build an isolatedRunner on this platform, so nothing ever re-execs into
// the "spawnerd-child-exec" subcommand here. This stub only exists so
// cmd/childexec.go, which has no build tag of its own, still links.
func RunChildExec(args ChildExecArgs, commandAndArgs []string) error {
	return fmt.Errorf("spawnerd-child-exec is only supported on linux")
}
