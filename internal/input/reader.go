// Package input reads interactive answers from the user.
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Reader is the source of answers. *bufio.Reader satisfies it.
type Reader interface {
	ReadString(delim byte) (string, error)
}

// NewStdinReader returns a buffered reader over os.Stdin
func NewStdinReader() Reader {
	return bufio.NewReader(os.Stdin)
}

// Answers replays scripted answers, one per ReadString call, then io.EOF.
// Each answer should carry its own trailing newline.
type Answers struct {
	lines []string
}

// NewAnswers returns a Reader that replays lines in order
func NewAnswers(lines ...string) *Answers {
	return &Answers{lines: lines}
}

func (a *Answers) ReadString(delim byte) (string, error) {
	if len(a.lines) == 0 {
		return "", io.EOF
	}
	line := a.lines[0]
	a.lines = a.lines[1:]
	return line, nil
}

// Prompt writes question to w and returns the next answer from r with
// surrounding whitespace removed. A final line without newline is accepted.
func Prompt(r Reader, w io.Writer, question string) (string, error) {
	if _, err := fmt.Fprint(w, question); err != nil {
		return "", err
	}
	answer, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// Confirm asks a yes/no question defaulting to no. Only "y" and "yes" in
// any case count as yes, and EOF counts as no.
func Confirm(r Reader, w io.Writer, question string) (bool, error) {
	answer, err := Prompt(r, w, question+" [y/N]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
