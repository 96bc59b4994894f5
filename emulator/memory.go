package emulator

func (inst *EmulatorInstance) memReadByte(addr uint32) uint32 {
	// preparing bit mask
	bitmask := uint32(0xFF)
	bitmask <<= (addr & 0x3) << 3

	return inst.memReadRaw(addr, bitmask, false)
}

func (inst *EmulatorInstance) memReadHalf(addr uint32) uint32 {
	// preparing bit mask
	bitmask := uint32(0xFFFF)
	bitmask <<= (addr & 0x2) << 3

	// checking for alignment
	if addr&0x1 != 0 {
		inst.newMemoryAccessNotAlignedException(addr, "halfword")
		return 0
	}

	return inst.memReadRaw(addr, bitmask, false)
}

func (inst *EmulatorInstance) memReadWord(addr uint32, isInstruction bool) uint32 {
	// checking for alignment
	if addr&0x3 != 0 {
		inst.newMemoryAccessNotAlignedException(addr, "word")
		return 0
	}

	return inst.memReadRaw(addr, 0xFFFFFFFF, isInstruction)
}

func (inst *EmulatorInstance) memReadRaw(addr uint32, bitmask uint32, isInstruction bool) uint32 {
	if !isInstruction && isDeviceAddr(addr) {
		return (inst.deviceRead(addr&0xFFFFFFFC) & bitmask) >> ((addr & 0x3) * 8)
	}

	if !inst.inBounds(addr&0xFFFFFFFC, 4) {
		inst.newOutOfBoundException(addr)
		return 0
	}

	// accessing the memory, but first check if it is in the cache
	// if not, then load it into the cache
	blockAddr := addr & 0xFFFFF000
	cache := &inst.dCache
	if isInstruction {
		cache = &inst.iCache
	}
	if *cache == nil || (*cache).StartAddr != blockAddr {
		newBlock, ok := inst.memory.Blocks[blockAddr>>12]
		if !ok {
			return 0 // never written, reads as zero
		}
		*cache = newBlock
	}

	value := (*cache).Block[(addr&0xFFF)>>2]
	return (value & bitmask) >> ((addr & 0x3) * 8)
}

func (inst *EmulatorInstance) memWriteRaw(addr, bitmask, value uint32) {
	if isDeviceAddr(addr) {
		inst.deviceWrite(addr&0xFFFFFFFC, bitmask, value<<((addr&0x3)*8))
		return
	}

	if !inst.inBounds(addr&0xFFFFFFFC, 4) {
		inst.newOutOfBoundException(addr)
		return
	}

	blockAddr := addr & 0xFFFFF000
	if inst.dCache == nil || inst.dCache.StartAddr != blockAddr {
		inst.dCache = inst.memory.getOrCreatePage(blockAddr)
	}

	// now that the cache is loaded, we can write to it
	offset := (addr & 0xFFF) >> 2
	inst.dCache.Block[offset] = (inst.dCache.Block[offset] & ^bitmask) | ((value << ((addr & 0x3) * 8)) & bitmask)
	inst.dCache.Initialized[offset] = true
}

func (inst *EmulatorInstance) memWriteByte(addr, value uint32) {
	// preparing bit mask
	bitmask := uint32(0xFF)
	bitmask <<= (addr & 0x3) << 3

	inst.memWriteRaw(addr, bitmask, value)
}

func (inst *EmulatorInstance) memWriteHalf(addr, value uint32) {
	// preparing bit mask
	bitmask := uint32(0xFFFF)
	bitmask <<= (addr & 0x2) << 3

	// checking for alignment
	if addr&0x1 != 0 {
		inst.newMemoryAccessNotAlignedException(addr, "halfword")
		return
	}

	inst.memWriteRaw(addr, bitmask, value)
}

func (inst *EmulatorInstance) memWriteWord(addr, value uint32) {
	// checking for alignment
	if addr&0x3 != 0 {
		inst.newMemoryAccessNotAlignedException(addr, "word")
		return
	}
	inst.memWriteRaw(addr, 0xFFFFFFFF, value)
}
