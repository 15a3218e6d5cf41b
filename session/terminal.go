package session

import (
	"errors"
	"io"

	"github.com/chzyer/readline"
)

// Input reads one line of user input after showing a prompt.
type Input interface {
	Readline(prompt string) (string, error)
}

func NewTerminal() (*Terminal, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}
	return &Terminal{rl: rl}, nil
}

// Terminal is an Input backed by readline. Ctrl+C and Ctrl+D are reported
// as ErrInterrupted.
type Terminal struct {
	rl *readline.Instance
}

func (t *Terminal) Readline(prompt string) (string, error) {
	t.rl.SetPrompt(prompt)
	line, err := t.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return "", ErrInterrupted
	}
	return line, err
}

// Stdout writes above the prompt without corrupting it.
func (t *Terminal) Stdout() io.Writer {
	return t.rl.Stdout()
}

func (t *Terminal) Close() error {
	return t.rl.Close()
}
