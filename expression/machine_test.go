package expression_test

import (
	"fmt"
)

type fakeMachine struct {
	regs   map[string]uint32
	memory map[uint32]uint32
}

func newFakeMachine() *fakeMachine {
	return &fakeMachine{regs: map[string]uint32{}, memory: map[uint32]uint32{}}
}

func (m *fakeMachine) ReadWord(addr uint32) (uint32, error) {
	v, ok := m.memory[addr]
	if !ok {
		return 0, fmt.Errorf("address 0x%x not mapped", addr)
	}
	return v, nil
}

func (m *fakeMachine) Register(name string) (uint32, bool) {
	v, ok := m.regs[name]
	return v, ok
}
