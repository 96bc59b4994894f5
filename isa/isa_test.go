package isa_test

import (
	"testing"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/isa"
)

func TestEncodeMatchesKnownWords(t *testing.T) {
	cases := []struct {
		name     string
		got      uint32
		expected uint32
	}{
		{"auipc t0,0", isa.AUIPC(5, 0), 0x00000297},
		{"sb zero,16(t0)", isa.SB(5, 0, 16), 0x00028823},
		{"lbu a0,16(t0)", isa.LBU(10, 5, 16), 0x0102c503},
		{"addi x1,x0,1", isa.ADDI(1, 0, 1), 0x00100093},
		{"addi x2,x0,2", isa.ADDI(2, 0, 2), 0x00200113},
		{"jal x1,8", isa.JAL(1, 8), 0x008000ef},
	}

	for _, c := range cases {
		if c.got != c.expected {
			t.Errorf("%s: expected 0x%08x, got 0x%08x", c.name, c.expected, c.got)
		}
	}
}

func TestBranchRoundTrip(t *testing.T) {
	instr := isa.BNE(1, 2, -8)
	opcode, rs1, rs2, imm, func3 := isa.DecodeBType(instr)
	if opcode != isa.OPCODE_BTYPE || rs1 != 1 || rs2 != 2 || func3 != 0b001 {
		t.Fatalf("unexpected fields op=%d rs1=%d rs2=%d func3=%d", opcode, rs1, rs2, func3)
	}
	if off := isa.SignExtend(imm, 13); off != -8 {
		t.Errorf("Expected offset -8, got %d", off)
	}
}

func TestJumpRoundTrip(t *testing.T) {
	_, rd, imm := isa.DecodeJType(isa.JAL(0, -12))
	if rd != 0 {
		t.Errorf("Expected rd 0, got %d", rd)
	}
	if off := isa.SignExtend(imm, 21); off != -12 {
		t.Errorf("Expected offset -12, got %d", off)
	}
}

func TestRegisterIndex(t *testing.T) {
	for name, expected := range map[string]int{"$0": 0, "zero": 0, "ra": 1, "a0": 10, "x10": 10, "s11": 27, "t6": 31, "fp": 8} {
		idx, ok := isa.RegisterIndex(name)
		if !ok || idx != expected {
			t.Errorf("RegisterIndex(%q) = %d, %v; expected %d", name, idx, ok, expected)
		}
	}

	for _, name := range []string{"A0", "x32", "pc", ""} {
		if _, ok := isa.RegisterIndex(name); ok {
			t.Errorf("RegisterIndex(%q) unexpectedly resolved", name)
		}
	}
}
