package shellwords

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitBasic(t *testing.T) {
	argv, err := Split("/bin/echo hello world")
	require.NoError(t, err)
	require.Equal(t, []string{"/bin/echo", "hello", "world"}, argv)
}

func TestSplitSingleQuoteVerbatim(t *testing.T) {
	argv, err := Split(`echo 'a b  $c "d'`)
	require.NoError(t, err)
	require.Equal(t, []string{"echo", `a b  $c "d`}, argv)
}

func TestSplitUnterminatedDoubleQuote(t *testing.T) {
	argv, err := Split(`echo "a \"b\" \$c \\d \`)
	require.Error(t, err) // unterminated
	require.Nil(t, argv)
}

func TestSplitDoubleQuoteEscapesClosed(t *testing.T) {
	argv, err := Split(`echo "a \"b\" \$c \\d"`)
	require.NoError(t, err)
	require.Equal(t, []string{"echo", `a "b" $c \d`}, argv)
}

func TestSplitUnterminatedSingleQuote(t *testing.T) {
	_, err := Split("'unterminated")
	require.Error(t, err)
}

func TestSplitEmpty(t *testing.T) {
	_, err := Split("   ")
	require.Error(t, err)
}
