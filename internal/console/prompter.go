package console

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"battleship/internal/game"
)

// Prompter reads the player's guesses as "row col" lines, 0-indexed.
type Prompter struct {
	in   *bufio.Scanner
	out  io.Writer
	size int
}

func NewPrompter(in io.Reader, out io.Writer, size int) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out, size: size}
}

// NextGuess prompts until a well-formed line arrives. Out of range values are
// left for the session to reject. io.EOF is returned once input runs out.
func (p *Prompter) NextGuess() (game.Coord, error) {
	for {
		fmt.Fprintf(p.out, "Make a row, column guess (0-%d): ", p.size-1)
		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return game.Coord{}, err
			}
			return game.Coord{}, io.EOF
		}
		c, err := ParseGuess(p.in.Text())
		if err != nil {
			p.Reject(err)
			continue
		}
		return c, nil
	}
}

func (p *Prompter) Reject(err error) {
	fmt.Fprintf(p.out, "rejected: %v\n", err)
}

// ParseGuess accepts two integers separated by whitespace or a comma.
func ParseGuess(line string) (game.Coord, error) {
	parts := strings.FieldsFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
	if len(parts) != 2 {
		return game.Coord{}, fmt.Errorf("%w: need row and column, got %q", game.ErrInvalidCoordinate, strings.TrimSpace(line))
	}
	row, err := strconv.Atoi(parts[0])
	if err != nil {
		return game.Coord{}, fmt.Errorf("%w: row %q", game.ErrInvalidCoordinate, parts[0])
	}
	col, err := strconv.Atoi(parts[1])
	if err != nil {
		return game.Coord{}, fmt.Errorf("%w: column %q", game.ErrInvalidCoordinate, parts[1])
	}
	return game.Coord{Row: row, Col: col}, nil
}
