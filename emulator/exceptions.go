package emulator

import "fmt"

func (inst *EmulatorInstance) newException(format string, args ...interface{}) RuntimeException {
	// auto-reports

	regs := inst.registers

	// deep-copy call stack
	callStack := make([]uint32, len(inst.callStack))
	copy(callStack, inst.callStack)
	callStack = append(callStack, inst.pc)

	exception := RuntimeException{
		regs:      regs,
		pc:        inst.pc,
		callStack: callStack,
		message:   fmt.Sprintf(format, args...),
	}

	inst.reportException(exception)
	return exception
}

func (inst *EmulatorInstance) newOutOfBoundException(addr uint32) RuntimeException {
	return inst.newException("address = 0x%08x is out of bound of pmem [0x%08x, 0x%08x] at pc = 0x%08x",
		addr, inst.memBase, inst.memBase+inst.memSize-1, inst.pc)
}

func (inst *EmulatorInstance) newMemoryAccessNotAlignedException(addr uint32, accessType string) RuntimeException {
	return inst.newException("Memory access not aligned at 0x%08X for type %s", addr, accessType)
}

func (inst *EmulatorInstance) newInvalidInstructionException(instruction uint32) RuntimeException {
	return inst.newException("invalid opcode 0x%08x at pc = 0x%08x", instruction, inst.pc)
}

// reportException records the fault and aborts the run. The callback is
// suppressed once the user has quit.
func (inst *EmulatorInstance) reportException(exception RuntimeException) {
	inst.errors = append(inst.errors, exception)
	if inst.state == Quit {
		return
	}

	inst.state = Abort
	inst.haltPC = exception.pc
	inst.exitCode = -1
	if inst.runtimeErrorCallback != nil {
		inst.runtimeErrorCallback(exception)
	}
}

func (e RuntimeException) Error() string {
	return e.message
}

func (e RuntimeException) PC() uint32 {
	return e.pc
}

func (e RuntimeException) Registers() [32]uint32 {
	return e.regs
}

// CallStack lists the return sites of the active calls, innermost last,
// followed by the faulting pc.
func (e RuntimeException) CallStack() []uint32 {
	return e.callStack
}
