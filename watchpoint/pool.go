package watchpoint

const PoolSize = 32

const nilSlot = -1

type slot struct {
	id    int
	next  int // index of the next slot in whichever list this slot is on
	expr  string
	value uint32
}

// pool is an arena of slots threaded onto two singly linked lists by index.
// Every slot is on exactly one of them at any time.
type pool struct {
	slots      [PoolSize]slot
	activeHead int
	activeTail int
	freeHead   int
}

func newPool() *pool {
	p := &pool{activeHead: nilSlot, activeTail: nilSlot, freeHead: 0}
	for i := range p.slots {
		p.slots[i].id = i
		p.slots[i].next = i + 1
	}
	p.slots[PoolSize-1].next = nilSlot
	return p
}

// popFree unlinks and returns the lowest free id, or nilSlot.
func (p *pool) popFree() int {
	idx := p.freeHead
	if idx == nilSlot {
		return nilSlot
	}
	p.freeHead = p.slots[idx].next
	p.slots[idx].next = nilSlot
	return idx
}

func (p *pool) appendActive(idx int) {
	p.slots[idx].next = nilSlot
	if p.activeHead == nilSlot {
		p.activeHead = idx
	} else {
		p.slots[p.activeTail].next = idx
	}
	p.activeTail = idx
}

// removeActive splices id out of the active list. It reports false when id
// is not active.
func (p *pool) removeActive(id int) bool {
	prev := nilSlot
	for cur := p.activeHead; cur != nilSlot; cur = p.slots[cur].next {
		if p.slots[cur].id != id {
			prev = cur
			continue
		}

		if prev == nilSlot {
			p.activeHead = p.slots[cur].next
		} else {
			p.slots[prev].next = p.slots[cur].next
		}
		if p.activeTail == cur {
			p.activeTail = prev
		}
		p.slots[cur].next = nilSlot
		return true
	}
	return false
}

// pushFree puts idx back on the free list, keeping it sorted by id.
func (p *pool) pushFree(idx int) {
	id := p.slots[idx].id

	if p.freeHead == nilSlot {
		p.slots[idx].next = nilSlot
		p.freeHead = idx
		return
	}

	if id < p.slots[p.freeHead].id {
		p.slots[idx].next = p.freeHead
		p.freeHead = idx
		return
	}

	prev := p.freeHead
	cur := p.slots[prev].next
	for cur != nilSlot && p.slots[cur].id < id {
		prev = cur
		cur = p.slots[cur].next
	}
	p.slots[prev].next = idx
	p.slots[idx].next = cur
}

func (p *pool) activeIDs() []int {
	return p.walk(p.activeHead)
}

func (p *pool) freeIDs() []int {
	return p.walk(p.freeHead)
}

func (p *pool) walk(head int) []int {
	ids := []int{}
	for cur := head; cur != nilSlot; cur = p.slots[cur].next {
		ids = append(ids, p.slots[cur].id)
	}
	return ids
}
