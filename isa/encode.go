package isa

// Encoders are used to build the built-in program image and test programs.
// Immediates are masked to their field width; branch and jump offsets are in bytes.

func EncodeRType(opcode, rd, rs1, rs2, func7, func3 uint32) uint32 {
	return (func7 << 25) | (rs2 << 20) | (rs1 << 15) | (func3 << 12) | (rd << 7) | opcode
}

func EncodeIType(opcode, rd, rs1, imm, func3 uint32) uint32 {
	imm = imm & 0xFFF
	return (imm << 20) | (rs1 << 15) | (func3 << 12) | (rd << 7) | opcode
}

func EncodeSType(opcode, rs1, rs2, imm, func3 uint32) uint32 {
	imm = imm & 0xFFF
	return ((imm >> 5) << 25) | (rs2 << 20) | (rs1 << 15) | (func3 << 12) | ((imm & 0x1F) << 7) | opcode
}

func EncodeBType(opcode, rs1, rs2, imm, func3 uint32) uint32 {
	imm = imm & 0x1FFF

	instr := (rs2 << 20) | (rs1 << 15) | (func3 << 12) | opcode
	instr |= ((imm >> 12) & 0x1) << 31
	instr |= ((imm >> 11) & 0x1) << 7
	instr |= ((imm >> 5) & 0x3F) << 25
	instr |= ((imm >> 1) & 0xF) << 8

	return instr
}

func EncodeUType(opcode, rd, imm uint32) uint32 {
	imm = imm & 0xFFFFF
	return (imm << 12) | (rd << 7) | opcode
}

func EncodeJType(opcode, rd, imm uint32) uint32 {
	imm = imm & 0x1FFFFF

	instr := (rd << 7) | opcode
	instr |= ((imm >> 20) & 0x1) << 31
	instr |= ((imm >> 1) & 0x3FF) << 21
	instr |= ((imm >> 11) & 0x1) << 20
	instr |= ((imm >> 12) & 0xFF) << 12

	return instr
}

// Shorthands for the handful of instructions test programs need.

func ADDI(rd, rs1 uint32, imm int32) uint32 {
	return EncodeIType(OPCODE_ITYPE, rd, rs1, uint32(imm), 0b000)
}

func ADD(rd, rs1, rs2 uint32) uint32 {
	return EncodeRType(OPCODE_RTYPE, rd, rs1, rs2, 0b0000000, 0b000)
}

func LUI(rd, imm uint32) uint32 {
	return EncodeUType(OPCODE_LUI, rd, imm)
}

func AUIPC(rd, imm uint32) uint32 {
	return EncodeUType(OPCODE_AUIPC, rd, imm)
}

func SW(rs1, rs2 uint32, imm int32) uint32 {
	return EncodeSType(OPCODE_STYPE, rs1, rs2, uint32(imm), 0b010)
}

func SB(rs1, rs2 uint32, imm int32) uint32 {
	return EncodeSType(OPCODE_STYPE, rs1, rs2, uint32(imm), 0b000)
}

func LW(rd, rs1 uint32, imm int32) uint32 {
	return EncodeIType(OPCODE_MEMITYPE, rd, rs1, uint32(imm), 0b010)
}

func LBU(rd, rs1 uint32, imm int32) uint32 {
	return EncodeIType(OPCODE_MEMITYPE, rd, rs1, uint32(imm), 0b100)
}

func BNE(rs1, rs2 uint32, offset int32) uint32 {
	return EncodeBType(OPCODE_BTYPE, rs1, rs2, uint32(offset), 0b001)
}

func JAL(rd uint32, offset int32) uint32 {
	return EncodeJType(OPCODE_JAL, rd, uint32(offset))
}

const (
	ECALL  = 0x00000073
	EBREAK = 0x00100073
)
