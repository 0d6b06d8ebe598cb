package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/prospector/pkg/usecase/history"
)

// isTerminal reports whether r is an interactive terminal
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && readline.IsTerminal(int(f.Fd()))
}

// pasteInput reads lines with readline until an empty line or EOF
func pasteInput(stdin io.Reader, stdout io.Writer) (string, error) {
	fmt.Fprintln(stdout, "Paste field signals (permits, posts, transcripts). Finish with an empty line.")

	rl, err := readline.NewEx(&readline.Config{
		Prompt: "> ",
		Stdin:  io.NopCloser(stdin),
		Stdout: stdout,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to initialize readline")
	}
	defer rl.Close()

	var lines []string
	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				return "", goerr.New("input cancelled")
			}
			if errors.Is(err, io.EOF) {
				break
			}
			return "", goerr.Wrap(err, "failed to read input")
		}
		if strings.TrimSpace(line) == "" {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

// readText picks the analysis input: --text, then --input, then stdin.
// stdin is read whole when piped and interactively otherwise.
func readText(text, inputFile string, stdin io.Reader, stdout io.Writer) (string, error) {
	switch {
	case text != "":
		return text, nil

	case inputFile != "":
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return "", goerr.Wrap(err, "failed to read input file", goerr.V("path", inputFile))
		}
		return string(data), nil

	case isTerminal(stdin):
		return pasteInput(stdin, stdout)

	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", goerr.Wrap(err, "failed to read stdin")
		}
		return string(data), nil
	}
}

// confirmer asks on the terminal with readline, or reads one line from a
// non-interactive stdin. Only "y" and "yes" confirm.
func confirmer(stdin io.Reader, stdout io.Writer) history.Confirmer {
	return history.ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
		question := prompt + " [y/N] "

		var answer string
		if isTerminal(stdin) {
			rl, err := readline.NewEx(&readline.Config{
				Prompt: question,
				Stdin:  io.NopCloser(stdin),
				Stdout: stdout,
			})
			if err != nil {
				return false, goerr.Wrap(err, "failed to initialize readline")
			}
			defer rl.Close()

			line, err := rl.Readline()
			if err != nil {
				if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
					return false, nil
				}
				return false, goerr.Wrap(err, "failed to read answer")
			}
			answer = line
		} else {
			fmt.Fprint(stdout, question)
			line, err := bufio.NewReader(stdin).ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return false, goerr.Wrap(err, "failed to read answer")
			}
			fmt.Fprintln(stdout)
			answer = line
		}

		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	})
}

// startSpinner shows a loading indicator on w until Stop is called
func startSpinner(w io.Writer, suffix string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + suffix
	s.Start()
	return s
}
