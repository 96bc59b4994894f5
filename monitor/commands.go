package monitor

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/expression"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/isa"
)

type cmdHandler struct {
	name        string
	usage       string
	description string
	regex       *regexp.Regexp
	fn          func(*Monitor, []string, *strings.Builder) error
}

var compiledCmds []cmdHandler

func init() {
	compiledCmds = []cmdHandler{
		{"help", "help", "Display information about all supported commands",
			regexp.MustCompile(`^\s*(help)\s*$`), (*Monitor).cmdHelp},
		{"c", "c", "Continue the execution of the program",
			regexp.MustCompile(`^\s*(c)\s*$`), (*Monitor).cmdContinue},
		{"q", "q", "Exit the monitor",
			regexp.MustCompile(`^\s*(q)\s*$`), (*Monitor).cmdQuit},
		{"si", "si [N]", "Execute N instructions, 1 by default",
			regexp.MustCompile(`^\s*(si)(?:\s+(\S+))?\s*$`), (*Monitor).cmdStep},
		{"info", "info r|w", "Print the registers or the watchpoints",
			regexp.MustCompile(`^\s*(info)\s+(r|w)\s*$`), (*Monitor).cmdInfo},
		{"x", "x N EXPR", "Print N words of memory starting at the value of EXPR",
			regexp.MustCompile(`^\s*(x)\s+(\S+)\s+(.+)$`), (*Monitor).cmdExamine},
		{"p", "p EXPR", "Print the value of EXPR",
			regexp.MustCompile(`^\s*(p)\s+(.+)$`), (*Monitor).cmdPrint},
		{"w", "w EXPR", "Stop the program whenever the value of EXPR changes",
			regexp.MustCompile(`^\s*(w)\s+(.+)$`), (*Monitor).cmdWatch},
		{"d", "d [N]", "Delete watchpoint N, or every watchpoint",
			regexp.MustCompile(`^\s*(d)(?:\s+(\S+))?\s*$`), (*Monitor).cmdDelete},
	}
}

func (m *Monitor) dispatch(line string, out *strings.Builder) error {
	for _, handler := range compiledCmds {
		if args := handler.regex.FindStringSubmatch(line); args != nil {
			return handler.fn(m, args, out)
		}
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	for _, handler := range compiledCmds {
		if handler.name == fields[0] {
			return errors.Errorf("usage: %s", handler.usage)
		}
	}
	return errors.Errorf("unknown command '%s'", fields[0])
}

func (m *Monitor) cmdHelp(_ []string, out *strings.Builder) error {
	for _, handler := range compiledCmds {
		fmt.Fprintf(out, "%-10s - %s\n", handler.usage, handler.description)
	}
	return nil
}

func (m *Monitor) cmdContinue(_ []string, out *strings.Builder) error {
	return m.run(out, math.MaxUint64)
}

func (m *Monitor) cmdQuit(_ []string, _ *strings.Builder) error {
	m.emu.Terminate()
	return nil
}

func (m *Monitor) cmdStep(args []string, out *strings.Builder) error {
	n := uint64(1)
	if args[2] != "" {
		v, err := strconv.ParseUint(args[2], 0, 64)
		if err != nil || v == 0 {
			return errors.Errorf("si: invalid instruction count %q", args[2])
		}
		n = v
	}
	return m.run(out, n)
}

func (m *Monitor) cmdInfo(args []string, out *strings.Builder) error {
	if args[2] == "w" {
		infos := m.watchpoints.List()
		if len(infos) == 0 {
			out.WriteString("No watchpoints.\n")
			return nil
		}
		fmt.Fprintf(out, "%-4s %-24s %s\n", "Num", "What", "Value")
		for _, info := range infos {
			fmt.Fprintf(out, "%-4d %-24s %d\n", info.ID, info.Expr, info.Value)
		}
		return nil
	}

	regs := m.emu.Registers()
	for i, name := range isa.RegisterNames {
		fmt.Fprintf(out, "%-4s 0x%08x %d\n", name, regs[i], regs[i])
	}
	fmt.Fprintf(out, "%-4s 0x%08x\n", "pc", m.emu.PC())
	return nil
}

func (m *Monitor) cmdExamine(args []string, out *strings.Builder) error {
	n, err := strconv.ParseUint(args[2], 0, 32)
	if err != nil {
		return errors.Errorf("x: invalid word count %q", args[2])
	}

	addr, err := m.evaluate(args[3])
	if err != nil {
		return err
	}

	for i := uint64(0); i < n; i++ {
		if i%4 == 0 {
			if i != 0 {
				out.WriteByte('\n')
			}
			fmt.Fprintf(out, "0x%08x:", addr+uint32(i*4))
		}
		word, err := m.emu.ReadWord(addr + uint32(i*4))
		if err != nil {
			out.WriteByte('\n')
			return err
		}
		fmt.Fprintf(out, " 0x%08x", word)
	}
	if n > 0 {
		out.WriteByte('\n')
	}
	return nil
}

func (m *Monitor) cmdPrint(args []string, out *strings.Builder) error {
	value, err := m.evaluate(args[2])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d\n", value)
	return nil
}

func (m *Monitor) cmdWatch(args []string, out *strings.Builder) error {
	e := strings.TrimSpace(args[2])
	id, err := m.watchpoints.Create(e)
	if err != nil {
		return describe(e, err)
	}
	fmt.Fprintf(out, "Watchpoint %d: %s\n", id, e)
	return nil
}

func (m *Monitor) cmdDelete(args []string, out *strings.Builder) error {
	if args[2] == "" {
		if m.watchpoints.Len() == 0 {
			out.WriteString("No watchpoints.\n")
			return nil
		}
		if m.confirm != nil && !m.confirm("Delete all watchpoints") {
			return nil
		}
		n := m.watchpoints.DeleteAll()
		fmt.Fprintf(out, "Deleted %d watchpoints\n", n)
		return nil
	}

	id, err := strconv.Atoi(args[2])
	if err != nil {
		return errors.Errorf("d: invalid watchpoint number %q", args[2])
	}
	if err := m.watchpoints.Delete(id); err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted watchpoint %d\n", id)
	return nil
}

func (m *Monitor) evaluate(e string) (uint32, error) {
	value, err := expression.Evaluate(e, m.emu)
	if err != nil {
		return 0, describe(e, err)
	}
	return value, nil
}

type caretError struct {
	expression string
	cause      *expression.NoMatchError
}

func (e *caretError) Error() string {
	return fmt.Sprintf("no match at position %d\n%s\n%s^", e.cause.Position, e.expression, strings.Repeat(" ", e.cause.Position))
}

func (e *caretError) Unwrap() error {
	return e.cause
}

// describe points at the offending character of a tokenize failure.
func describe(e string, err error) error {
	if err == nil {
		return nil
	}
	var noMatch *expression.NoMatchError
	if !errors.As(err, &noMatch) {
		return err
	}
	return &caretError{expression: e, cause: noMatch}
}
