package emulator

import (
	"time"

	"github.com/pkg/errors"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/isa"
)

const (
	DefaultMemoryBase = 0x80000000
	DefaultMemorySize = 0x8000000
)

func (inst *EmulatorInstance) ResetRegisters(config EmulatorConfig) {
	for i := 0; i < 32; i++ {
		inst.registers[i] = 0
	}

	inst.pc = config.ResetVector
	inst.callStack = []uint32{}
}

func NewEmulator(config EmulatorConfig) *EmulatorInstance {
	if config.Memory == nil {
		config.Memory = NewMemoryImage()
	}
	if config.MemorySize == 0 {
		config.MemoryBase = DefaultMemoryBase
		config.MemorySize = DefaultMemorySize
	}

	inst := &EmulatorInstance{
		memory:               config.Memory,
		memBase:              config.MemoryBase,
		memSize:              config.MemorySize,
		state:                Stopped,
		runtimeLimit:         config.RuntimeLimit,
		errors:               []RuntimeException{},
		devices:              devices{bootTime: time.Now()},
		stdOutCallback:       config.StdOutCallback,
		runtimeErrorCallback: config.RuntimeErrorCallback,
		stepCallback:         config.StepCallback,
	}
	inst.ResetRegisters(config)
	return inst
}

func NewMemoryImage() *MemoryImage {
	return &MemoryImage{Blocks: map[uint32]*MemoryPage{}}
}

func (m *MemoryImage) getOrCreatePage(addr uint32) *MemoryPage {
	page, ok := m.Blocks[addr>>12]
	if !ok {
		page = &MemoryPage{Block: [1024]uint32{}, StartAddr: addr & 0xFFFFF000}
		m.Blocks[addr>>12] = page
	}
	return page
}

func (m *MemoryImage) WriteWord(addr uint32, value uint32) {
	page := m.getOrCreatePage(addr)
	page.Block[(addr&0xFFF)>>2] = value
	page.Initialized[(addr&0xFFF)>>2] = true
}

func (m *MemoryImage) WriteByte(addr uint32, value byte) {
	page := m.getOrCreatePage(addr)
	page.Block[(addr&0xFFF)>>2] = (page.Block[(addr&0xFFF)>>2] & ^(0xFF << ((addr & 0x3) * 8))) | (uint32(value) << ((addr & 0x3) * 8))
	page.Initialized[(addr&0xFFF)>>2] = true
}

func (m *MemoryImage) ReadWord(addr uint32) (uint32, bool) {
	page, ok := m.Blocks[addr>>12]
	if !ok {
		return 0, false
	}
	return page.Block[(addr&0xFFF)>>2], page.Initialized[(addr&0xFFF)>>2]
}

func (m *MemoryImage) ReadByte(addr uint32) (byte, bool) {
	page, ok := m.Blocks[addr>>12]
	if !ok {
		return 0, false
	}
	return byte((page.Block[(addr&0xFFF)>>2] >> ((addr & 0x3) * 8)) & 0xFF), page.Initialized[(addr&0xFFF)>>2]
}

func (m *MemoryImage) ReadHalfWord(addr uint32) (uint16, bool) {
	page, ok := m.Blocks[addr>>12]
	if !ok {
		return 0, false
	}
	return uint16((page.Block[(addr&0xFFF)>>2] >> ((addr & 0x2) * 8)) & 0xFFFF), page.Initialized[(addr&0xFFF)>>2]
}

// PeekWord assembles the four bytes at addr..addr+3 little endian. Unlike
// ReadWord it accepts any alignment and may straddle pages. Bytes never
// written read as zero.
func (m *MemoryImage) PeekWord(addr uint32) uint32 {
	value := uint32(0)
	for i := uint32(0); i < 4; i++ {
		b, _ := m.ReadByte(addr + i)
		value |= uint32(b) << (8 * i)
	}
	return value
}

func (m *MemoryImage) Clone() *MemoryImage {
	newMem := NewMemoryImage()
	for k, v := range m.Blocks {
		newPage := &MemoryPage{Block: [1024]uint32{}, Initialized: [1024]bool{}, StartAddr: v.StartAddr}
		copy(newPage.Block[:], v.Block[:])
		copy(newPage.Initialized[:], v.Initialized[:])
		newMem.Blocks[k] = newPage
	}
	return newMem
}

func (inst *EmulatorInstance) GetExitCode() int {
	return inst.exitCode
}

func (inst *EmulatorInstance) GetErrors() []RuntimeException {
	return inst.errors
}

func (inst *EmulatorInstance) GetTotalInstructionsExecuted() uint64 {
	return inst.executedInstructions
}

func (inst *EmulatorInstance) State() State {
	return inst.state
}

func (inst *EmulatorInstance) PC() uint32 {
	return inst.pc
}

// HaltPC is the address of the instruction that ended or aborted the run.
func (inst *EmulatorInstance) HaltPC() uint32 {
	return inst.haltPC
}

func (inst *EmulatorInstance) Memory() *MemoryImage {
	return inst.memory
}

func (inst *EmulatorInstance) Registers() [32]uint32 {
	return inst.registers
}

// Register looks up a register by ABI name, xN name, alias or "pc".
func (inst *EmulatorInstance) Register(name string) (uint32, bool) {
	if name == "pc" {
		return inst.pc, true
	}

	idx, ok := isa.RegisterIndex(name)
	if !ok {
		return 0, false
	}
	return inst.registers[idx], true
}

// ReadWord reads the 4 bytes at addr for the debugger. The access must lie
// entirely inside physical memory.
func (inst *EmulatorInstance) ReadWord(addr uint32) (uint32, error) {
	if !inst.inBounds(addr, 4) {
		return 0, errors.Errorf("address 0x%08x is out of bound of pmem [0x%08x, 0x%08x]",
			addr, inst.memBase, inst.memBase+inst.memSize-1)
	}
	return inst.memory.PeekWord(addr), nil
}

func (inst *EmulatorInstance) inBounds(addr, size uint32) bool {
	offset := addr - inst.memBase
	return addr >= inst.memBase && offset < inst.memSize && inst.memSize-offset >= size
}

// Halt pauses a running program after the current instruction.
func (inst *EmulatorInstance) Halt() {
	if inst.state == Running {
		inst.state = Stopped
	}
}

// Abort stops the program for good, as if it had faulted at the current pc.
func (inst *EmulatorInstance) Abort() {
	if inst.state == Quit {
		return
	}
	inst.state = Abort
	inst.haltPC = inst.pc
	inst.exitCode = -1
}

// Terminate marks the session as quit by the user.
func (inst *EmulatorInstance) Terminate() {
	inst.state = Quit
}

func (inst *EmulatorInstance) SetStepCallback(callback func(*EmulatorInstance)) {
	inst.stepCallback = callback
}

func (inst *EmulatorInstance) SetStdOutCallback(callback func(byte)) {
	inst.stdOutCallback = callback
}
