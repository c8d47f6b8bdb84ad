// Package confirm provides the confirmation providers the installer asks
// before overwriting anything at a destination.
package confirm

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/dotlink/pkg/errors"
)

// Reason tells the user why a confirmation is needed.
type Reason string

const (
	// ReasonExistingFile means a file or a symlink to somewhere else sits at
	// the destination.
	ReasonExistingFile Reason = "existing_file"

	// ReasonBrokenSymlink means the destination is a dangling symlink.
	ReasonBrokenSymlink Reason = "broken_symlink"
)

// Request describes one overwrite that needs approval.
type Request struct {
	// Name is the manifest source name being installed
	Name string

	// Destination is the expanded path that would be removed
	Destination string

	Reason Reason
}

// Confirmer answers overwrite requests.
type Confirmer interface {
	Confirm(req Request) (bool, error)
}

// Func adapts a function to the Confirmer interface.
type Func func(req Request) (bool, error)

// Confirm calls f(req).
func (f Func) Confirm(req Request) (bool, error) {
	return f(req)
}

// Always answers every request with the same value.
type Always bool

// Confirm returns the fixed answer.
func (a Always) Confirm(Request) (bool, error) {
	return bool(a), nil
}

// Scripted answers requests from a fixed list, in order, and records what
// was asked.
type Scripted struct {
	answers  []bool
	Requests []Request
}

// NewScripted creates a Scripted confirmer with the given answers.
func NewScripted(answers ...bool) *Scripted {
	return &Scripted{answers: answers}
}

// Confirm pops the next answer. Running out of answers is an error.
func (s *Scripted) Confirm(req Request) (bool, error) {
	s.Requests = append(s.Requests, req)
	if len(s.answers) == 0 {
		return false, errors.Newf(errors.ErrPrompt, "no answer left for %s", req.Destination)
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

// Console prompts on a line oriented terminal. It blocks until the user
// answers y/yes or n/no; end of input counts as no.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsole creates a console confirmer reading answers from in and
// writing prompts to out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Confirm prompts until it gets a valid answer.
func (c *Console) Confirm(req Request) (bool, error) {
	if req.Reason == ReasonBrokenSymlink {
		fmt.Fprintf(c.out, "Broken symlink found at %s\n", req.Destination)
	}

	for {
		fmt.Fprintf(c.out, "File exists at %s. Overwrite? (y/n): ", req.Destination)

		line, err := c.in.ReadString('\n')
		if err != nil && err != io.EOF {
			return false, errors.Wrap(err, errors.ErrPrompt, "failed to read user input")
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}

		if err == io.EOF {
			fmt.Fprintln(c.out)
			return false, nil
		}

		fmt.Fprintln(c.out, "Please enter 'y' or 'n'")
	}
}
