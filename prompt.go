package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// prompter reads answers line by line. Every method returns io.EOF once the
// input is exhausted, which ends the session.
type prompter struct {
	sc  *bufio.Scanner
	out io.Writer

	// secret reads a masked line from a terminal. Nil when input is not a
	// terminal; passwords are then read as plain lines.
	secret func() (string, error)
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	p := &prompter{sc: bufio.NewScanner(in), out: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		p.secret = func() (string, error) {
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(out) // ReadPassword swallows the newline
			return string(b), err
		}
	}
	return p
}

func (p *prompter) line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.sc.Scan() {
		if err := p.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.sc.Text()), nil
}

func (p *prompter) nonEmpty(prompt string) (string, error) {
	for {
		s, err := p.line(prompt)
		if err != nil || s != "" {
			return s, err
		}
		fmt.Fprintln(p.out, "Input cannot be empty. Try again.")
	}
}

func (p *prompter) number(prompt string) (int, error) {
	for {
		s, err := p.line(prompt)
		if err != nil {
			return 0, err
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n, nil
		}
		fmt.Fprintln(p.out, "Invalid number. Try again.")
	}
}

func (p *prompter) password(prompt string) (string, error) {
	if p.secret == nil {
		return p.nonEmpty(prompt)
	}
	for {
		fmt.Fprint(p.out, prompt)
		s, err := p.secret()
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s, nil
		}
		fmt.Fprintln(p.out, "Input cannot be empty. Try again.")
	}
}
