// Package monitor is the debugger command layer that sits on top of an
// emulator instance and its watchpoints.
package monitor

import (
	"fmt"
	"strings"
	"sync"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/emulator"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/expression"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/isa"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/watchpoint"
)

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(label string) bool

type Monitor struct {
	mutex       sync.Mutex
	emu         *emulator.EmulatorInstance
	watchpoints *watchpoint.Manager
	confirm     ConfirmFunc
	hitCallback func(watchpoint.Hit)

	// collected while the emulator runs, drained by Exec
	console strings.Builder
	hits    []watchpoint.Hit
	scanErr error
}

// New attaches a monitor to emu. It takes over the emulator's step and
// stdout callbacks.
func New(emu *emulator.EmulatorInstance) *Monitor {
	m := &Monitor{emu: emu}
	m.watchpoints = watchpoint.NewManager(emu, emu)
	emu.SetStepCallback(m.afterStep)
	emu.SetStdOutCallback(func(b byte) { m.console.WriteByte(b) })
	return m
}

// SetConfirm installs the question asked before deleting every watchpoint.
// Without one the deletion goes ahead.
func (m *Monitor) SetConfirm(confirm ConfirmFunc) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.confirm = confirm
}

// SetHitCallback registers a listener for watchpoint hits, used by the
// remote front ends to push notifications.
func (m *Monitor) SetHitCallback(callback func(watchpoint.Hit)) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.hitCallback = callback
}

func (m *Monitor) Watchpoints() *watchpoint.Manager {
	return m.watchpoints
}

func (m *Monitor) Emulator() *emulator.EmulatorInstance {
	return m.emu
}

// Quitting reports whether the q command has been run.
func (m *Monitor) Quitting() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.emu.State() == emulator.Quit
}

// Evaluate evaluates an expression against the current machine state.
func (m *Monitor) Evaluate(e string) (uint32, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return expression.Evaluate(e, m.emu)
}

// Watch starts watching e and returns the new watchpoint's id.
func (m *Monitor) Watch(e string) (int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	e = strings.TrimSpace(e)
	id, err := m.watchpoints.Create(e)
	return id, describe(e, err)
}

func (m *Monitor) Unwatch(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.watchpoints.Delete(id)
}

// Registers returns every register by ABI name, plus pc.
func (m *Monitor) Registers() map[string]uint32 {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	regs := m.emu.Registers()
	named := make(map[string]uint32, len(regs)+1)
	for i, name := range isa.RegisterNames {
		named[name] = regs[i]
	}
	named["pc"] = m.emu.PC()
	return named
}

// State returns the emulator's run state and pc.
func (m *Monitor) State() (emulator.State, uint32) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.emu.State(), m.emu.PC()
}

// Exec runs one command line and returns what it printed. Commands from
// different callers are serialized.
func (m *Monitor) Exec(line string) (string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	out := &strings.Builder{}
	err := m.dispatch(line, out)
	return out.String(), err
}

func (m *Monitor) afterStep(inst *emulator.EmulatorInstance) {
	hits, err := m.watchpoints.ScanAndCheck()
	m.hits = append(m.hits, hits...)
	if err != nil {
		m.scanErr = err
		inst.Abort()
	}
}

// run drives the emulator and reports program output, watchpoint hits and
// how the run ended.
func (m *Monitor) run(out *strings.Builder, steps uint64) error {
	m.console.Reset()
	m.hits = nil
	m.scanErr = nil

	err := m.emu.Step(steps)

	out.WriteString(m.console.String())
	for _, hit := range m.hits {
		out.WriteString(FormatHit(hit))
		if m.hitCallback != nil {
			m.hitCallback(hit)
		}
	}
	if m.scanErr != nil {
		fmt.Fprintf(out, "watchpoint check failed: %v\n", m.scanErr)
	}
	if err != nil {
		return err
	}

	out.WriteString(m.status())
	return nil
}

func (m *Monitor) status() string {
	switch m.emu.State() {
	case emulator.End:
		trap := "HIT GOOD TRAP"
		if m.emu.GetExitCode() != 0 {
			trap = "HIT BAD TRAP"
		}
		return fmt.Sprintf("%s at pc = 0x%08x\ntotal guest instructions = %d\n",
			trap, m.emu.HaltPC(), m.emu.GetTotalInstructionsExecuted())
	case emulator.Abort:
		s := ""
		if errs := m.emu.GetErrors(); len(errs) > 0 {
			s = errs[len(errs)-1].Error() + "\n"
		}
		return s + fmt.Sprintf("ABORT at pc = 0x%08x\ntotal guest instructions = %d\n",
			m.emu.HaltPC(), m.emu.GetTotalInstructionsExecuted())
	}
	return ""
}

// FormatHit renders a watchpoint hit the way the console prints it.
func FormatHit(hit watchpoint.Hit) string {
	return fmt.Sprintf("Watchpoint %d: %s\nOld value = %d\nNew value = %d\n", hit.ID, hit.Expr, hit.Old, hit.New)
}

// Bad reports whether the session ended any other way than a good trap or
// the user quitting, for use as the process exit status.
func (m *Monitor) Bad() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	switch m.emu.State() {
	case emulator.End:
		return m.emu.GetExitCode() != 0
	case emulator.Quit:
		return false
	}
	return true
}
