package isa

// Decode helpers return the raw (unsigned, not sign-extended) immediate fields.

func DecodeRType(instruction uint32) (opcode, rd, rs1, rs2, func7, func3 uint32) {
	opcode = instruction & 0x7F
	rd = (instruction >> 7) & 0x1F
	func3 = (instruction >> 12) & 0x7
	rs1 = (instruction >> 15) & 0x1F
	rs2 = (instruction >> 20) & 0x1F
	func7 = (instruction >> 25) & 0x7F
	return
}

func DecodeIType(instruction uint32) (opcode, rd, rs1, imm, func3 uint32) {
	opcode = instruction & 0x7F
	rd = (instruction >> 7) & 0x1F
	func3 = (instruction >> 12) & 0x7
	rs1 = (instruction >> 15) & 0x1F
	imm = (instruction >> 20) & 0xFFF
	return
}

func DecodeSType(instruction uint32) (opcode, rs1, rs2, imm, func3 uint32) {
	opcode = instruction & 0x7F
	func3 = (instruction >> 12) & 0x7
	rs1 = (instruction >> 15) & 0x1F
	rs2 = (instruction >> 20) & 0x1F
	imm = (((instruction >> 25) & 0x7F) << 5) | ((instruction >> 7) & 0x1F)
	return
}

func DecodeBType(instruction uint32) (opcode, rs1, rs2, imm, func3 uint32) {
	opcode = instruction & 0x7F
	func3 = (instruction >> 12) & 0x7
	rs1 = (instruction >> 15) & 0x1F
	rs2 = (instruction >> 20) & 0x1F
	imm = ((instruction >> 31) & 0x1) << 12
	imm |= ((instruction >> 7) & 0x1) << 11
	imm |= ((instruction >> 25) & 0x3F) << 5
	imm |= ((instruction >> 8) & 0xF) << 1
	return
}

func DecodeUType(instruction uint32) (opcode, rd, imm uint32) {
	opcode = instruction & 0x7F
	rd = (instruction >> 7) & 0x1F
	imm = (instruction >> 12) & 0xFFFFF
	return
}

func DecodeJType(instruction uint32) (opcode, rd, imm uint32) {
	opcode = instruction & 0x7F
	rd = (instruction >> 7) & 0x1F
	imm = ((instruction >> 31) & 0x1) << 20
	imm |= ((instruction >> 21) & 0x3FF) << 1
	imm |= ((instruction >> 20) & 0x1) << 11
	imm |= ((instruction >> 12) & 0xFF) << 12
	return
}

func OpCode(instruction uint32) uint32 {
	return instruction & 0x7F
}

// SignExtend treats the low `bits` bits of value as a two's complement number.
func SignExtend(value uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(value<<shift) >> shift
}

const (
	OPCODE_RTYPE    = 0b0110011
	OPCODE_ITYPE    = 0b0010011
	OPCODE_STYPE    = 0b0100011
	OPCODE_BTYPE    = 0b1100011
	OPCODE_LUI      = 0b0110111
	OPCODE_AUIPC    = 0b0010111
	OPCODE_JAL      = 0b1101111
	OPCODE_JALR     = 0b1100111
	OPCODE_MEMITYPE = 0b0000011
	OPCODE_ENV      = 0b1110011
)
