package job

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func waitDone(t *testing.T, j *Job) {
	t.Helper()
	select {
	case <-j.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("job did not complete in time")
	}
}

func TestTrueSucceeds(t *testing.T) {
	j := New("/bin/true", nil, nil, nil)
	waitDone(t, j)
	require.Nil(t, j.Completion().Err)
	require.True(t, j.Outcome().Success)
	require.Equal(t, "", j.Outcome().Message)
}

func TestFalseFails(t *testing.T) {
	j := New("/bin/false", nil, nil, nil)
	waitDone(t, j)
	require.Nil(t, j.Completion().Err)
	require.False(t, j.Outcome().Success)
	require.Contains(t, j.Outcome().Message, "exited with non-zero exit status 1")
}

func TestCatEchoesInput(t *testing.T) {
	j := New("/bin/cat", []byte("hello\n"), nil, nil)
	waitDone(t, j)
	require.Nil(t, j.Completion().Err)
	require.Equal(t, "hello\n", string(j.Completion().Stdout))
	require.True(t, j.Outcome().Success)
}

func TestNoSuchBinary(t *testing.T) {
	j := New("/no/such/binary", nil, nil, nil)
	waitDone(t, j)
	require.NotNil(t, j.Completion().Err)
	require.Equal(t, KindSpawnFailed, j.Completion().Err.Kind)
	require.False(t, j.Outcome().Success)
}

func TestUnterminatedQuoteIsParseFailure(t *testing.T) {
	j := New("'unterminated", nil, nil, nil)
	waitDone(t, j)
	require.NotNil(t, j.Completion().Err)
	require.Equal(t, KindParseFailed, j.Completion().Err.Kind)
}

func TestCancellationSurfacesEagerly(t *testing.T) {
	token := NewCancellation()
	j := New("/bin/sleep 60", nil, token, nil)
	time.Sleep(10 * time.Millisecond)
	token.Cancel()
	waitDone(t, j)
	require.NotNil(t, j.Completion().Err)
	require.Equal(t, KindCancelled, j.Completion().Err.Kind)
	require.False(t, j.Outcome().Success)
}

func TestCompletionHandlerCanVeto(t *testing.T) {
	handled := false
	j := New("/bin/true", nil, nil, func(Completion) bool {
		handled = true
		return true
	})
	waitDone(t, j)
	require.True(t, handled)
	// Outcome is the zero value since classification was vetoed.
	require.Equal(t, Outcome{}, j.Outcome())
}

func TestCompletesExactlyOnce(t *testing.T) {
	token := NewCancellation()
	j := New("/bin/true", nil, token, nil)
	waitDone(t, j)
	// Tripping after natural completion must not re-fire or panic.
	token.Cancel()
	select {
	case <-j.Done():
	default:
		t.Fatal("done channel should already be closed")
	}
}

func TestInputBytesZeroedAfterCompletion(t *testing.T) {
	input := []byte("super-secret-stdin-payload")
	j := New("/bin/cat", input, nil, nil)
	waitDone(t, j)
	for i, b := range input {
		require.Zerof(t, b, "input byte %d was not zeroed after completion", i)
	}
}
