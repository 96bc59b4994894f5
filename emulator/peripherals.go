package emulator

import "time"

/*
 * Device Memory Map
 * 0xa0000048 - 0xa000004F: RTC, microseconds since boot READONLY (reading the low word latches the high word)
 * 0xa00003f8 - 0xa00003fb: Serial port data WRITEONLY, the low byte goes to stdout
 */
const (
	RTCAddr    = 0xa0000048
	SerialPort = 0xa00003f8
)

func isDeviceAddr(addr uint32) bool {
	addr &= 0xFFFFFFFC
	return addr == RTCAddr || addr == RTCAddr+4 || addr == SerialPort
}

func (inst *EmulatorInstance) deviceRead(addr uint32) uint32 {
	switch addr {
	case RTCAddr:
		inst.devices.rtcLatch = uint64(time.Since(inst.devices.bootTime).Microseconds())
		return uint32(inst.devices.rtcLatch)
	case RTCAddr + 4:
		return uint32(inst.devices.rtcLatch >> 32)
	}
	return 0
}

func (inst *EmulatorInstance) deviceWrite(addr, bitmask, value uint32) {
	switch addr {
	case SerialPort:
		if bitmask&0xFF != 0 && inst.stdOutCallback != nil {
			inst.stdOutCallback(byte(value))
		}
	default:
		inst.newException("write to read-only device register 0x%08x at pc = 0x%08x", addr, inst.pc)
	}
}
