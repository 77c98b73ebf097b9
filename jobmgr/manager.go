// Package jobmgr is the namespace-and-ID-keyed table of job.Jobs a daemon
// hosts: the "surrounding daemon" role the supervisor itself deliberately
// stays out of (§6 of the supervisor spec). It owns job IDs, enforces
// per-namespace isolation between callers, and optionally runs each command
// under a resource-limited, namespace-isolated sandbox.
package jobmgr

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/blockwatch/spawnerd/internal/joblog"
	"github.com/blockwatch/spawnerd/job"
)

// entry pairs a Job with the Cancellation token it was constructed with, so
// Stop and Shutdown can trip it without the job package needing to expose
// its own token back out.
type entry struct {
	job    *job.Job
	cancel *job.Cancellation
}

// Manager is a namespace-scoped table of running and completed jobs.
type Manager struct {
	runner runner

	mu           sync.RWMutex
	jobs         map[string]map[string]*entry
	shuttingDown bool
}

// Config controls how jobs submitted through this Manager are launched.
type Config struct {
	// Limits, if non-nil, causes every submitted job to run under the
	// resource-isolated runner (Linux only; see runner_linux.go).
	Limits *ResourceLimits
}

// New builds a Manager. An error is returned only if cfg requests isolation
// on a platform that does not support it.
func New(cfg Config) (*Manager, error) {
	r, err := newRunner(cfg.Limits)
	if err != nil {
		return nil, err
	}
	return &Manager{
		runner: r,
		jobs:   make(map[string]map[string]*entry),
	}, nil
}

// Submit starts a new job in namespace, with the given ID (a fresh UUID is
// generated and returned if id is empty), and returns the resolved ID and
// its job.Job. It is an error to submit under an ID already in use within
// the namespace, or after Shutdown has begun.
func (m *Manager) Submit(namespace, id, commandLine string, input []byte) (string, *job.Job, error) {
	m.mu.Lock()
	if m.shuttingDown {
		m.mu.Unlock()
		return "", nil, fmt.Errorf("manager is shutting down")
	}
	if id == "" {
		id = uuid.NewString()
	}
	ns, ok := m.jobs[namespace]
	if !ok {
		ns = make(map[string]*entry)
		m.jobs[namespace] = ns
	}
	if _, exists := ns[id]; exists {
		m.mu.Unlock()
		return "", nil, fmt.Errorf("job %q already exists in namespace %q", id, namespace)
	}
	// Reserve the slot before releasing the lock so a concurrent Submit
	// with the same ID fails instead of racing job.New.
	ns[id] = nil
	m.mu.Unlock()

	cancel := job.NewCancellation()
	rewritten, opts, err := m.runner.prepare(commandLine)
	if err != nil {
		m.mu.Lock()
		delete(ns, id)
		m.mu.Unlock()
		return "", nil, err
	}
	j := job.New(rewritten, input, cancel, nil, opts...)

	m.mu.Lock()
	ns[id] = &entry{job: j, cancel: cancel}
	m.mu.Unlock()

	go func() {
		<-j.Done()
		joblog.Infof("job %s/%s completed: success=%v", namespace, id, j.Outcome().Success)
	}()

	return id, j, nil
}

// GetJob returns the job with the given namespace and ID.
func (m *Manager) GetJob(namespace, id string) (*job.Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ns, ok := m.jobs[namespace]
	if !ok {
		return nil, false
	}
	e, ok := ns[id]
	if !ok || e == nil {
		return nil, false
	}
	return e.job, true
}

// Stop cancels the job with the given namespace and ID. If force is true it
// also sends SIGKILL immediately rather than waiting on the supervisor's
// own SIGTERM-then-reap release path.
func (m *Manager) Stop(namespace, id string, force bool) error {
	j, e, ok := m.lookupEntry(namespace, id)
	if !ok {
		return fmt.Errorf("no such job %q in namespace %q", id, namespace)
	}
	e.cancel.Cancel()
	if force {
		j.Kill()
	}
	return nil
}

func (m *Manager) lookupEntry(namespace, id string) (*job.Job, *entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ns, ok := m.jobs[namespace]
	if !ok {
		return nil, nil, false
	}
	e, ok := ns[id]
	if !ok || e == nil {
		return nil, nil, false
	}
	return e.job, e, true
}

// Shutdown stops accepting new jobs and cancels every job still running,
// waiting up to ctx's deadline for them all to complete. If force is true
// it SIGKILLs every outstanding job immediately instead of relying on their
// own graceful SIGTERM release.
func (m *Manager) Shutdown(ctx context.Context, force bool) error {
	m.mu.Lock()
	m.shuttingDown = true
	var all []*entry
	for _, ns := range m.jobs {
		for _, e := range ns {
			if e != nil {
				all = append(all, e)
			}
		}
	}
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, e := range all {
		e := e
		select {
		case <-e.job.Done():
			continue
		default:
		}
		e.cancel.Cancel()
		if force {
			e.job.Kill()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-e.job.Done()
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timed out waiting for jobs: %w", ctx.Err())
	}
}

// Namespaces reports the namespaces with at least one job ever submitted,
// chiefly so a caller can log or enumerate them; not used on any hot path.
func (m *Manager) Namespaces() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.jobs))
	for ns := range m.jobs {
		out = append(out, ns)
	}
	return out
}
