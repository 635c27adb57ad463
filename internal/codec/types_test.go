package codec

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	n, err := ParseHex(FormatHex(big.NewInt(0xbeef)))
	require.NoError(t, err)
	assert.Equal(t, int64(0xbeef), n.Int64())

	n, err = ParseHex(" 0XFF ")
	require.NoError(t, err)
	assert.Equal(t, int64(255), n.Int64())

	for _, bad := range []string{"", "0x", "ff", "0xzz"} {
		_, err := ParseHex(bad)
		assert.Error(t, err, "input %q", bad)
	}
}
