package emulator

import (
	"math"

	"github.com/pkg/errors"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/isa"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/util"
)

const (
	OPCODE_FENCE = 0b0001111

	syscallWrite = 64
	syscallExit  = 93
)

var ErrProgramEnded = errors.New("program execution has ended, restart the monitor to run it again")

func (inst *EmulatorInstance) regRead(reg uint32) uint32 {
	return inst.registers[reg]
}

func (inst *EmulatorInstance) regWrite(reg uint32, value uint32) {
	if reg == 0 {
		// x0 is hardwired to zero
		return
	}
	inst.registers[reg] = value
}

// Step executes up to n instructions. The step callback runs after every
// instruction and may halt the run early. Stepping a program that has ended
// or aborted fails with ErrProgramEnded.
func (inst *EmulatorInstance) Step(n uint64) error {
	switch inst.state {
	case End, Abort, Quit:
		return ErrProgramEnded
	}

	inst.state = Running
	for i := uint64(0); i < n && inst.state == Running; i++ {
		inst.execOnce()
		inst.executedInstructions++

		if inst.stepCallback != nil {
			inst.stepCallback(inst)
		}

		if inst.runtimeLimit != 0 && inst.executedInstructions >= inst.runtimeLimit && inst.state == Running {
			inst.newException("runtime limit of %d instructions reached, infinite loop?", inst.runtimeLimit)
		}
	}

	if inst.state == Running {
		inst.state = Stopped
	}
	return nil
}

// Continue runs until the program ends, faults or is halted.
func (inst *EmulatorInstance) Continue() error {
	return inst.Step(math.MaxUint64)
}

func (inst *EmulatorInstance) execOnce() {
	// fetching next instruction
	instruction := inst.memReadWord(inst.pc, true)
	if inst.state != Running {
		return
	}

	inst.nextPC = inst.pc + 4
	util.LogF("0x%08x: %08x", inst.pc, instruction)

	// decoding instruction
	opcode := isa.OpCode(instruction)
	// executing instruction
	switch opcode {
	case isa.OPCODE_LUI:
		inst.executeLUI(instruction)
	case isa.OPCODE_AUIPC:
		inst.executeAUIPC(instruction)
	case isa.OPCODE_JAL:
		inst.executeJAL(instruction)
	case isa.OPCODE_JALR:
		inst.executeJALR(instruction)
	case isa.OPCODE_BTYPE:
		inst.executeBType(instruction)
	case isa.OPCODE_MEMITYPE:
		inst.executeMemIType(instruction)
	case isa.OPCODE_ITYPE:
		inst.executeIType(instruction)
	case isa.OPCODE_RTYPE:
		inst.executeRType(instruction)
	case isa.OPCODE_STYPE:
		inst.executeSType(instruction)
	case isa.OPCODE_ENV:
		inst.executeEnv(instruction)
	case OPCODE_FENCE:
		// single hart, nothing to order
	default:
		inst.newInvalidInstructionException(instruction)
	}

	if inst.state == Abort || inst.state == Quit {
		return // pc stays on the faulting instruction
	}
	inst.pc = inst.nextPC
}

// trap ends the program with the given exit code.
func (inst *EmulatorInstance) trap(code uint32) {
	inst.state = End
	inst.haltPC = inst.pc
	inst.exitCode = int(int32(code))
}

func (inst *EmulatorInstance) executeLUI(instruction uint32) {
	// decode the instruction
	_, rd, imm := isa.DecodeUType(instruction)
	inst.regWrite(rd, imm<<12)
}

func (inst *EmulatorInstance) executeAUIPC(instruction uint32) {
	// decode the instruction
	_, rd, imm := isa.DecodeUType(instruction)
	inst.regWrite(rd, (imm<<12)+inst.pc)
}

func (inst *EmulatorInstance) executeJAL(instruction uint32) {
	// decode the instruction
	_, rd, imm := isa.DecodeJType(instruction)

	// setting the return address
	inst.regWrite(rd, inst.pc+4)
	if rd == 1 {
		inst.callStack = append(inst.callStack, inst.pc)
	}

	inst.nextPC = uint32(int32(inst.pc) + isa.SignExtend(imm, 21))
}

func (inst *EmulatorInstance) executeJALR(instruction uint32) {
	// decode the instruction
	_, rd, rs1, imm, _ := isa.DecodeIType(instruction)

	if rs1 == 1 && rd == 0 {
		// ret
		if len(inst.callStack) > 0 {
			inst.callStack = inst.callStack[:len(inst.callStack)-1]
		}
	} else if rd == 1 {
		inst.callStack = append(inst.callStack, inst.pc)
	}

	// rs1 is read before rd is written, they may be the same register
	target := uint32(int32(inst.regRead(rs1))+isa.SignExtend(imm, 12)) & 0xFFFFFFFE
	inst.regWrite(rd, inst.pc+4)
	inst.nextPC = target
}

func (inst *EmulatorInstance) executeBType(instruction uint32) {
	opcode, rs1, rs2, imm, func3 := isa.DecodeBType(instruction)
	target := uint32(int32(inst.pc) + isa.SignExtend(imm, 13))

	taken := false
	switch func3 {
	case 0b000:
		// BEQ
		taken = inst.regRead(rs1) == inst.regRead(rs2)
	case 0b001:
		// BNE
		taken = inst.regRead(rs1) != inst.regRead(rs2)
	case 0b100:
		// BLT
		taken = int32(inst.regRead(rs1)) < int32(inst.regRead(rs2))
	case 0b101:
		// BGE
		taken = int32(inst.regRead(rs1)) >= int32(inst.regRead(rs2))
	case 0b110:
		// BLTU
		taken = inst.regRead(rs1) < inst.regRead(rs2)
	case 0b111:
		// BGEU
		taken = inst.regRead(rs1) >= inst.regRead(rs2)
	default:
		inst.newException("Unsupported B-Type instruction exception: op=%d func3=%d", opcode, func3)
		return
	}

	if taken {
		inst.nextPC = target
	}
}

func (inst *EmulatorInstance) executeMemIType(instruction uint32) {
	_, rd, rs1, imm, func3 := isa.DecodeIType(instruction)

	addr := uint32(int32(inst.regRead(rs1)) + isa.SignExtend(imm, 12))
	// since this is the mem I-type, the opcode should be the same for all, thus only func3 needs to be checked
	var value uint32
	switch func3 {
	case 0b000:
		// LB
		value = uint32(int8(inst.memReadByte(addr)))
	case 0b001:
		// LH
		value = uint32(int16(inst.memReadHalf(addr)))
	case 0b010:
		// LW
		value = inst.memReadWord(addr, false)
	case 0b100:
		// LBU
		value = inst.memReadByte(addr)
	case 0b101:
		// LHU
		value = inst.memReadHalf(addr)
	default:
		inst.newException("Unsupported Mem I-Type instruction exception: func3=%d", func3)
		return
	}

	if inst.state != Abort {
		inst.regWrite(rd, value)
	}
}

func (inst *EmulatorInstance) executeIType(instruction uint32) {
	opcode, rd, rs1, imm, func3 := isa.DecodeIType(instruction)
	immInt := isa.SignExtend(imm, 12)

	switch func3 {
	case 0b000:
		// ADDI
		inst.regWrite(rd, uint32(int32(inst.regRead(rs1))+immInt))
	case 0b010:
		// SLTI
		inst.regWrite(rd, boolToWord(int32(inst.regRead(rs1)) < immInt))
	case 0b011:
		// SLTIU, the immediate is sign extended then compared unsigned
		inst.regWrite(rd, boolToWord(inst.regRead(rs1) < uint32(immInt)))
	case 0b100:
		// XORI
		inst.regWrite(rd, inst.regRead(rs1)^uint32(immInt))
	case 0b110:
		// ORI
		inst.regWrite(rd, inst.regRead(rs1)|uint32(immInt))
	case 0b111:
		// ANDI
		inst.regWrite(rd, inst.regRead(rs1)&uint32(immInt))
	case 0b001:
		// SLLI
		inst.regWrite(rd, inst.regRead(rs1)<<(imm&0b11111))
	case 0b101:
		// SRLI/SRAI
		if imm>>5 == 0b0000000 {
			// SRLI
			inst.regWrite(rd, inst.regRead(rs1)>>(imm&0b11111))
		} else if imm>>5 == 0b0100000 {
			// SRAI
			inst.regWrite(rd, uint32(int32(inst.regRead(rs1))>>(imm&0b11111)))
		} else {
			inst.newException("Unsupported I-Type instruction exception: op=%d func3=%d imm=%d", opcode, func3, imm)
		}
	}
}

func (inst *EmulatorInstance) executeRType(instruction uint32) {
	opcode, rd, rs1, rs2, func7, func3 := isa.DecodeRType(instruction)
	a, b := inst.regRead(rs1), inst.regRead(rs2)

	if func7 == 0b0000000 || func7 == 0b0100000 {
		switch func3 {
		case 0b000:
			// ADD/SUB
			if func7 == 0b0000000 {
				inst.regWrite(rd, a+b)
			} else {
				inst.regWrite(rd, a-b)
			}
		case 0b001:
			// SLL
			inst.regWrite(rd, a<<(b&0b11111))
		case 0b010:
			// SLT
			inst.regWrite(rd, boolToWord(int32(a) < int32(b)))
		case 0b011:
			// SLTU
			inst.regWrite(rd, boolToWord(a < b))
		case 0b100:
			// XOR
			inst.regWrite(rd, a^b)
		case 0b101:
			// SRL/SRA
			if func7 == 0b0000000 {
				inst.regWrite(rd, a>>(b&0b11111))
			} else {
				inst.regWrite(rd, uint32(int32(a)>>(b&0b11111)))
			}
		case 0b110:
			// OR
			inst.regWrite(rd, a|b)
		case 0b111:
			// AND
			inst.regWrite(rd, a&b)
		}
	} else if func7 == 0b0000001 {
		switch func3 {
		case 0b000:
			// MUL
			inst.regWrite(rd, a*b)
		case 0b001:
			// MULH
			inst.regWrite(rd, uint32((int64(int32(a))*int64(int32(b)))>>32))
		case 0b010:
			// MULHSU
			inst.regWrite(rd, uint32((int64(int32(a))*int64(b))>>32))
		case 0b011:
			// MULHU
			inst.regWrite(rd, uint32((uint64(a)*uint64(b))>>32))
		case 0b100:
			// DIV, division by zero yields all ones and overflow yields the dividend
			switch {
			case b == 0:
				inst.regWrite(rd, 0xFFFFFFFF)
			case int32(a) == math.MinInt32 && int32(b) == -1:
				inst.regWrite(rd, a)
			default:
				inst.regWrite(rd, uint32(int32(a)/int32(b)))
			}
		case 0b101:
			// DIVU
			if b == 0 {
				inst.regWrite(rd, 0xFFFFFFFF)
			} else {
				inst.regWrite(rd, a/b)
			}
		case 0b110:
			// REM
			switch {
			case b == 0:
				inst.regWrite(rd, a)
			case int32(a) == math.MinInt32 && int32(b) == -1:
				inst.regWrite(rd, 0)
			default:
				inst.regWrite(rd, uint32(int32(a)%int32(b)))
			}
		case 0b111:
			// REMU
			if b == 0 {
				inst.regWrite(rd, a)
			} else {
				inst.regWrite(rd, a%b)
			}
		}
	} else {
		inst.newException("Unsupported R-Type instruction exception: op=%d func3=%d func7=%d", opcode, func3, func7)
	}
}

func (inst *EmulatorInstance) executeSType(instruction uint32) {
	opcode, rs1, rs2, imm, func3 := isa.DecodeSType(instruction)
	addr := uint32(int32(inst.regRead(rs1)) + isa.SignExtend(imm, 12))

	switch func3 {
	case 0b000:
		// SB
		inst.memWriteByte(addr, inst.regRead(rs2))
	case 0b001:
		// SH
		inst.memWriteHalf(addr, inst.regRead(rs2))
	case 0b010:
		// SW
		inst.memWriteWord(addr, inst.regRead(rs2))
	default:
		inst.newException("Unsupported S-Type instruction exception: op=%d func3=%d", opcode, func3)
	}
}

func (inst *EmulatorInstance) executeEnv(instruction uint32) {
	opcode, _, _, imm, func3 := isa.DecodeIType(instruction)
	if func3 != 0b000 {
		// no CSRs are implemented
		inst.newInvalidInstructionException(instruction)
		return
	}

	switch imm {
	case 0b000000000000:
		// ECALL, Linux syscall numbering in a7
		switch inst.registers[17] {
		case syscallExit:
			inst.trap(inst.registers[10])
		case syscallWrite:
			// a0 is the file descriptor, a1 the buffer and a2 the length
			length := inst.registers[12]
			for i := uint32(0); i < length && inst.state == Running; i++ {
				b := byte(inst.memReadByte(inst.registers[11] + i))
				if inst.stdOutCallback != nil {
					inst.stdOutCallback(b)
				}
			}
			inst.regWrite(10, length)
		default:
			inst.newException("Unsupported syscall %d at pc = 0x%08x", inst.registers[17], inst.pc)
		}
	case 0b000000000001:
		// EBREAK ends the program, a0 holds the exit code
		inst.trap(inst.registers[10])
	default:
		inst.newException("Unsupported Env-Type instruction exception: op=%d func3=%d", opcode, func3)
	}
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
