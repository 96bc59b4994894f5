package emulator

import "time"

// State is the run state of an emulator instance.
type State int

const (
	Running State = iota
	Stopped
	End
	Abort
	Quit
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	case End:
		return "end"
	case Abort:
		return "abort"
	case Quit:
		return "quit"
	}
	return "unknown"
}

type MemoryPage struct {
	Block       [1024]uint32
	StartAddr   uint32
	Initialized [1024]bool
}

type MemoryImage struct {
	Blocks map[uint32]*MemoryPage
}

type EmulatorConfig struct {
	Memory               *MemoryImage
	MemoryBase           uint32
	MemorySize           uint32
	ResetVector          uint32
	RuntimeLimit         uint64 // 0 means unlimited
	RuntimeErrorCallback func(RuntimeException)
	StdOutCallback       func(byte)
	StepCallback         func(*EmulatorInstance)
}

type RuntimeException struct {
	regs      [32]uint32
	pc        uint32
	callStack []uint32
	message   string
}

type devices struct {
	bootTime time.Time
	rtcLatch uint64
}

type EmulatorInstance struct {
	registers            [32]uint32
	memory               *MemoryImage
	memBase              uint32
	memSize              uint32
	pc                   uint32
	nextPC               uint32
	iCache               *MemoryPage
	dCache               *MemoryPage
	state                State
	haltPC               uint32
	exitCode             int
	runtimeLimit         uint64
	executedInstructions uint64
	devices              devices

	errors               []RuntimeException
	callStack            []uint32
	stdOutCallback       func(byte)
	runtimeErrorCallback func(RuntimeException)
	stepCallback         func(*EmulatorInstance)
}
