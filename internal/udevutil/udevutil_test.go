package udevutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeUDevStringUnescapes(t *testing.T) {
	require.Equal(t, "ATA disk", DecodeUDevString(`ATA\x20disk`))
}

func TestDecodeUDevStringPassesPlainText(t *testing.T) {
	require.Equal(t, "sda1", DecodeUDevString("sda1"))
}

func TestDecodeUDevStringStopsAtMalformedEscape(t *testing.T) {
	require.Equal(t, "ATA", DecodeUDevString(`ATA\xZZdisk`))
}

func TestDecodeUDevStringStopsAtTrailingBackslash(t *testing.T) {
	require.Equal(t, "ATA", DecodeUDevString(`ATA\`))
}

func TestSafeAppendToObjectPathEscapesNonAlnum(t *testing.T) {
	require.Equal(t, "sda_2d1", SafeAppendToObjectPath("sda-1"))
}

func TestSafeAppendToObjectPathPassesAlnum(t *testing.T) {
	require.Equal(t, "sda1", SafeAppendToObjectPath("sda1"))
}
