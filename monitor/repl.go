package monitor

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
)

// RunREPL reads commands from the terminal until q or end of input.
func (m *Monitor) RunREPL(historyFile string) error {
	color := term.IsTerminal(int(os.Stdout.Fd()))

	prompt := "(monitor) "
	if color {
		prompt = colorCyan + "(monitor)" + colorReset + " "
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "q",
		HistorySearchFold: true,
	})
	if err != nil {
		return errors.Wrap(err, "start line editor")
	}
	defer rl.Close()

	m.SetConfirm(confirmPrompt)

	fmt.Fprint(rl.Stdout(), hLine("riscv32 monitor"))
	fmt.Fprintln(rl.Stdout(), `For help, type "help"`)

	prev := ""
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			m.Exec("q")
			return nil
		} else if err != nil {
			return errors.Wrap(err, "read command")
		}

		// an empty line repeats the previous command
		if strings.TrimSpace(line) == "" {
			if prev == "" {
				continue
			}
			line = prev
		}
		prev = line

		out, err := m.Exec(line)
		fmt.Fprint(rl.Stdout(), out)
		if err != nil {
			if color {
				fmt.Fprintf(rl.Stderr(), "%s%v%s\n", colorRed, err, colorReset)
			} else {
				fmt.Fprintln(rl.Stderr(), err)
			}
		}

		if m.Quitting() {
			return nil
		}
	}
}

// RunBatch continues the program to completion without asking anything.
func (m *Monitor) RunBatch(w io.Writer) error {
	out, err := m.Exec("c")
	fmt.Fprint(w, out)
	return err
}

func confirmPrompt(label string) bool {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}

	_, err := prompt.Run()
	return err == nil
}

func hLine(msg string) string {
	width := 80
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > len(msg)+2 {
			width = w
		}
	}

	side := (width - len(msg) - 2) / 2
	return strings.Repeat("-", side) + "[" + msg + "]" + strings.Repeat("-", side) + "\n"
}
