package jobmgr

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := New(Config{})
	require.NoError(t, err)
	return m
}

func TestSubmitGeneratesIDAndIsRetrievable(t *testing.T) {
	m := newTestManager(t)
	id, j, err := m.Submit("ns1", "", "/bin/true", nil)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.NotNil(t, j)
	require.Contains(t, m.Namespaces(), "ns1")

	got, ok := m.GetJob("ns1", id)
	require.True(t, ok)
	require.Same(t, j, got)
}

func TestSubmitDuplicateIDRejected(t *testing.T) {
	m := newTestManager(t)
	_, _, err := m.Submit("ns1", "job-a", "/bin/sleep 1", nil)
	require.NoError(t, err)
	_, _, err = m.Submit("ns1", "job-a", "/bin/sleep 1", nil)
	require.Error(t, err)
}

func TestNamespaceIsolation(t *testing.T) {
	m := newTestManager(t)
	_, _, err := m.Submit("tenant-a", "job-1", "/bin/true", nil)
	require.NoError(t, err)
	_, ok := m.GetJob("tenant-b", "job-1")
	require.False(t, ok)
	_, ok = m.GetJob("tenant-a", "job-1")
	require.True(t, ok)
}

func TestStopCancelsJob(t *testing.T) {
	m := newTestManager(t)
	_, _, err := m.Submit("ns1", "job-1", "/bin/sleep 30", nil)
	require.NoError(t, err)

	err = m.Stop("ns1", "job-1", false)
	require.NoError(t, err)

	j, ok := m.GetJob("ns1", "job-1")
	require.True(t, ok)
	select {
	case <-j.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("stopped job did not complete")
	}
}

func TestShutdownWaitsForJobs(t *testing.T) {
	m := newTestManager(t)
	_, _, err := m.Submit("ns1", "job-1", "/bin/sleep 30", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Shutdown(ctx, false))

	_, _, err = m.Submit("ns1", "job-2", "/bin/true", nil)
	require.Error(t, err)
}
