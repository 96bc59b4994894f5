package isa

import "strconv"

// RegisterNames is indexed by register number. Register 0 is spelled "$0" so
// that the debugger expression "$$0" names it.
var RegisterNames = [32]string{
	"$0", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

var registerNameMap = func() map[string]int {
	m := make(map[string]int, 66)
	for i, name := range RegisterNames {
		m[name] = i
		m["x"+strconv.Itoa(i)] = i
	}
	m["zero"] = 0
	m["fp"] = 8
	return m
}()

// RegisterIndex resolves an ABI name ("a0"), a numeric name ("x10") or an
// alias ("zero", "fp"). Lookup is case sensitive.
func RegisterIndex(name string) (int, bool) {
	idx, ok := registerNameMap[name]
	return idx, ok
}
