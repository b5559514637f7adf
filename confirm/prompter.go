package confirm

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

var _ Prompter = &TerminalPrompter{}

// TerminalPrompter asks on out and reads a single line from in.
// y, yes, c and có (any case) count as yes; anything else, including EOF, is no.
type TerminalPrompter struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

func (p *TerminalPrompter) Present(message string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "%s [y/N]: ", message)

	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(p.out)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "c", "có", "co":
		return true
	default:
		return false
	}
}

var _ Prompter = AutoPrompter(false)

// AutoPrompter answers every question the same way without asking.
type AutoPrompter bool

func (a AutoPrompter) Present(message string) bool {
	return bool(a)
}

var _ Prompter = &ScriptedPrompter{}

// ScriptedPrompter replays a fixed list of answers and records what it was asked.
// Once the answers run out it answers no.
type ScriptedPrompter struct {
	mu       sync.Mutex
	answers  []bool
	Messages []string
}

func NewScriptedPrompter(answers ...bool) *ScriptedPrompter {
	return &ScriptedPrompter{answers: answers}
}

func (s *ScriptedPrompter) Present(message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Messages = append(s.Messages, message)

	if len(s.answers) == 0 {
		return false
	}

	answer := s.answers[0]
	s.answers = s.answers[1:]

	return answer
}
