//go:build linux
// +build linux

package jobmgr

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/blockwatch/spawnerd/job"
)

// isolatedRunner re-execs the running binary through its own hidden
// "spawnerd-child-exec" subcommand inside a fresh set of Linux namespaces,
// the way worker/runner_linux.go's limitedRunner re-execs teleworker. The
// child-exec subcommand (see cmd/childexec.go) applies cgroup limits and an
// optional pivot_root before running the real command.
type isolatedRunner struct {
	limits *ResourceLimits
}

func newRunner(limits *ResourceLimits) (runner, error) {
	if limits == nil {
		return plainRunner{}, nil
	}
	return isolatedRunner{limits: limits}, nil
}

// ChildExecArgs is the JSON payload passed (base64-encoded, as a single
// argv element) to the re-exec'd child-exec subcommand: everything it needs
// to apply limits and pivot_root before running the real command.
type ChildExecArgs struct {
	CPUMaxPeriod   uint64 `json:"cpu_max_period"`
	CPUMaxQuota    int64  `json:"cpu_max_quota"`
	MemoryMax      uint64 `json:"memory_max"`
	DeviceIOMaxBPS uint64 `json:"device_io_max_bps"`
	RootFS         string `json:"root_fs"`
}

func (r isolatedRunner) prepare(commandLine string) (string, []job.SpawnOption, error) {
	rootFS := ""
	if r.limits.IsolateMount {
		rootFS = r.limits.RootFS
	}
	args := ChildExecArgs{
		CPUMaxPeriod:   r.limits.CPUMaxPeriod,
		CPUMaxQuota:    r.limits.CPUMaxQuota,
		MemoryMax:      r.limits.MemoryMax,
		DeviceIOMaxBPS: r.limits.DeviceIOMaxBPS,
		RootFS:         rootFS,
	}
	encoded, err := json.Marshal(args)
	if err != nil {
		return "", nil, fmt.Errorf("encoding child-exec args: %w", err)
	}
	b64 := base64.StdEncoding.EncodeToString(encoded)

	self, err := os.Executable()
	if err != nil {
		return "", nil, fmt.Errorf("resolving own executable for re-exec: %w", err)
	}

	rewritten := fmt.Sprintf("%s spawnerd-child-exec %s -- %s", self, b64, commandLine)

	opt := job.SpawnOption(func(cmd *exec.Cmd) {
		cmd.SysProcAttr = &syscall.SysProcAttr{
			Cloneflags: r.cloneflags(),
		}
		if r.limits.CPUMaxQuota != 0 || r.limits.IsolateNetwork || r.limits.IsolatePID {
			// A user namespace needs explicit uid/gid mappings or the
			// re-exec'd child cannot see itself as root inside it.
			cmd.SysProcAttr.UidMappings = []syscall.SysProcIDMap{
				{ContainerID: 0, HostID: os.Getuid(), Size: 1},
			}
			cmd.SysProcAttr.GidMappings = []syscall.SysProcIDMap{
				{ContainerID: 0, HostID: os.Getgid(), Size: 1},
			}
		}
	})
	return rewritten, []job.SpawnOption{opt}, nil
}

func (r isolatedRunner) cloneflags() uintptr {
	flags := uintptr(unix.CLONE_NEWUTS | unix.CLONE_NEWIPC)
	if r.limits.IsolatePID {
		flags |= uintptr(unix.CLONE_NEWPID)
	}
	if r.limits.IsolateNetwork {
		flags |= uintptr(unix.CLONE_NEWNET)
	}
	if r.limits.IsolateMount {
		flags |= uintptr(unix.CLONE_NEWNS)
	}
	return flags
}

// WriteCGroupSettings applies the resource limits to pid's cgroup v1
// controllers. Called from the re-exec'd child (cmd/childexec.go), which
// runs as the new namespace's init and therefore knows its own final pid.
func WriteCGroupSettings(pid int, args ChildExecArgs) error {
	writes := map[string]map[string]string{}
	if args.CPUMaxPeriod != 0 || args.CPUMaxQuota != 0 {
		writes["cpu"] = map[string]string{
			"cpu.cfs_period_us": strconv.FormatUint(args.CPUMaxPeriod, 10),
			"cpu.cfs_quota_us":  strconv.FormatInt(args.CPUMaxQuota, 10),
		}
	}
	if args.MemoryMax != 0 {
		writes["memory"] = map[string]string{
			"memory.limit_in_bytes": strconv.FormatUint(args.MemoryMax, 10),
		}
	}
	if args.DeviceIOMaxBPS != 0 {
		writes["blkio"] = map[string]string{
			"blkio.throttle.write_bps_device": strconv.FormatUint(args.DeviceIOMaxBPS, 10),
		}
	}
	for controller, settings := range writes {
		dir := filepath.Join("/sys/fs/cgroup", controller, "spawnerd", strconv.Itoa(pid))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating cgroup dir %s: %w", dir, err)
		}
		for file, value := range settings {
			if err := os.WriteFile(filepath.Join(dir, file), []byte(value), 0644); err != nil {
				return fmt.Errorf("writing %s: %w", file, err)
			}
		}
		if err := os.WriteFile(filepath.Join(dir, "cgroup.procs"), []byte(strconv.Itoa(pid)), 0644); err != nil {
			return fmt.Errorf("adding pid to cgroup %s: %w", dir, err)
		}
	}
	return nil
}

// pivotRoot replaces the mount-namespace root with newRoot, following the
// standard two-mount pivot_root dance (bind-mount newRoot onto itself so
// it's a mount point, pivot into it, unmount and remove the old root).
func pivotRoot(newRoot string) error {
	if newRoot == "" {
		return nil
	}
	if err := unix.Mount(newRoot, newRoot, "", unix.MS_BIND|unix.MS_REC, ""); err != nil {
		return fmt.Errorf("bind-mounting new root: %w", err)
	}
	oldRoot := filepath.Join(newRoot, ".old_root")
	if err := os.MkdirAll(oldRoot, 0700); err != nil {
		return fmt.Errorf("creating old-root mountpoint: %w", err)
	}
	if err := unix.PivotRoot(newRoot, oldRoot); err != nil {
		return fmt.Errorf("pivot_root: %w", err)
	}
	if err := os.Chdir("/"); err != nil {
		return fmt.Errorf("chdir after pivot_root: %w", err)
	}
	if err := unix.Unmount("/.old_root", unix.MNT_DETACH); err != nil {
		return fmt.Errorf("detaching old root: %w", err)
	}
	return os.RemoveAll("/.old_root")
}

// RunChildExec is the body of the hidden "spawnerd-child-exec" subcommand:
// it runs inside the freshly cloned namespaces, applies cgroup limits and
// an optional pivot_root, then runs the real command with inherited stdio.
// It mirrors worker/runner_linux.go's ExecLimitedChild.
func RunChildExec(args ChildExecArgs, commandAndArgs []string) error {
	if err := WriteCGroupSettings(os.Getpid(), args); err != nil {
		return fmt.Errorf("applying cgroup limits: %w", err)
	}
	if err := pivotRoot(args.RootFS); err != nil {
		return fmt.Errorf("isolating mount namespace: %w", err)
	}
	cmd := exec.Command(commandAndArgs[0], commandAndArgs[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
