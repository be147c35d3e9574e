package shell

import (
	"errors"
	"io"

	"github.com/chzyer/readline"
)

// Prompter reads one line of operator input. It returns io.EOF when no more
// input is available.
type Prompter interface {
	Prompt(prompt string) (string, error)
}

// ReadlinePrompter reads from the terminal with line editing and history.
type ReadlinePrompter struct {
	rl *readline.Instance
}

func NewReadlinePrompter(historyFile string) (*ReadlinePrompter, error) {
	rl, err := readline.NewEx(&readline.Config{
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "q",
	})
	if err != nil {
		return nil, err
	}
	return &ReadlinePrompter{rl: rl}, nil
}

func (p *ReadlinePrompter) Prompt(prompt string) (string, error) {
	p.rl.SetPrompt(prompt)

	line, err := p.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", io.EOF
	}
	return line, err
}

func (p *ReadlinePrompter) Close() error {
	return p.rl.Close()
}
