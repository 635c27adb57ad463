package console

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"battleship/internal/game"
)

func TestParseGuess(t *testing.T) {
	cases := []struct {
		line string
		want game.Coord
	}{
		{"3 4", game.Coord{Row: 3, Col: 4}},
		{"  0\t9 ", game.Coord{Row: 0, Col: 9}},
		{"7,2", game.Coord{Row: 7, Col: 2}},
		{"1, 1\n", game.Coord{Row: 1, Col: 1}},
		{"3 4\r", game.Coord{Row: 3, Col: 4}},
		{"3 4\r\n", game.Coord{Row: 3, Col: 4}},
		{"-1 12", game.Coord{Row: -1, Col: 12}},
	}
	for _, tc := range cases {
		got, err := ParseGuess(tc.line)
		require.NoError(t, err, tc.line)
		assert.Equal(t, tc.want, got, tc.line)
	}

	for _, line := range []string{"", "3", "1 2 3", "a 2", "2 b"} {
		_, err := ParseGuess(line)
		assert.ErrorIs(t, err, game.ErrInvalidCoordinate, line)
	}
}

func TestPrompterSkipsMalformedLines(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("oops\n4 5\n"), &out, 10)

	c, err := p.NextGuess()
	require.NoError(t, err)
	assert.Equal(t, game.Coord{Row: 4, Col: 5}, c)
	assert.Equal(t, 2, strings.Count(out.String(), "Make a row, column guess (0-9): "))
	assert.Contains(t, out.String(), "rejected: ")

	_, err = p.NextGuess()
	assert.ErrorIs(t, err, io.EOF)
}

func TestPrompterReadsCRLF(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("2 6\r\n0,1\r\n"), &out, 10)

	c, err := p.NextGuess()
	require.NoError(t, err)
	assert.Equal(t, game.Coord{Row: 2, Col: 6}, c)
	c, err = p.NextGuess()
	require.NoError(t, err)
	assert.Equal(t, game.Coord{Row: 0, Col: 1}, c)
	assert.NotContains(t, out.String(), "rejected")
}

func TestPrompterReject(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader(""), &out, 10)
	p.Reject(game.ErrAlreadyGuessed)
	assert.Equal(t, "rejected: coordinate already guessed\n", out.String())
}
