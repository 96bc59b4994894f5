// Package watchpoint keeps a fixed pool of watched expressions and detects
// value changes between simulation steps.
package watchpoint

import (
	"sync"

	"github.com/pkg/errors"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/expression"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/util"
)

// Halter is told to stop the simulation after the current step.
type Halter interface {
	Halt()
}

type Hit struct {
	ID   int
	Expr string
	Old  uint32
	New  uint32
}

type Info struct {
	ID    int
	Expr  string
	Value uint32
}

type Manager struct {
	mutex   sync.Mutex
	pool    *pool
	machine expression.Machine
	halter  Halter
}

func NewManager(machine expression.Machine, halter Halter) *Manager {
	return &Manager{
		pool:    newPool(),
		machine: machine,
		halter:  halter,
	}
}

// Create evaluates e once to record its baseline and starts watching it
// under the lowest free id. A failed evaluation leaves the pool untouched.
func (m *Manager) Create(e string) (int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.pool.freeHead == nilSlot {
		return -1, Errors.NoFreeSlot()
	}

	value, err := expression.Evaluate(e, m.machine)
	if err != nil {
		return -1, err
	}

	idx := m.pool.popFree()
	s := &m.pool.slots[idx]
	s.expr = e
	s.value = value
	m.pool.appendActive(idx)

	util.LogF("watchpoint %d created: %s = %d", s.id, e, value)
	return s.id, nil
}

func (m *Manager) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.delete(id)
}

func (m *Manager) delete(id int) error {
	if id < 0 || id >= PoolSize || !m.pool.removeActive(id) {
		return Errors.NotFound(id)
	}

	s := &m.pool.slots[id]
	s.expr = ""
	s.value = 0
	m.pool.pushFree(id)

	util.LogF("watchpoint %d deleted", id)
	return nil
}

// DeleteAll stops watching everything and returns how many were removed.
func (m *Manager) DeleteAll() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	ids := m.pool.activeIDs()
	for _, id := range ids {
		// every id was just read off the active list
		_ = m.delete(id)
	}
	return len(ids)
}

// ScanAndCheck re-evaluates every watchpoint in creation order. Each changed
// value is reported, becomes the new baseline and halts the simulation. An
// expression that no longer evaluates aborts the scan; hits found before it
// are still returned.
func (m *Manager) ScanAndCheck() ([]Hit, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.pool.activeHead == nilSlot {
		return nil, nil
	}

	var hits []Hit
	for cur := m.pool.activeHead; cur != nilSlot; cur = m.pool.slots[cur].next {
		s := &m.pool.slots[cur]
		value, err := expression.Evaluate(s.expr, m.machine)
		if err != nil {
			return hits, errors.Wrapf(err, "watchpoint %d (%s)", s.id, s.expr)
		}

		if value != s.value {
			hits = append(hits, Hit{ID: s.id, Expr: s.expr, Old: s.value, New: value})
			s.value = value
			if m.halter != nil {
				m.halter.Halt()
			}
		}
	}

	return hits, nil
}

// List returns the active watchpoints in creation order.
func (m *Manager) List() []Info {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	infos := []Info{}
	for cur := m.pool.activeHead; cur != nilSlot; cur = m.pool.slots[cur].next {
		s := m.pool.slots[cur]
		infos = append(infos, Info{ID: s.id, Expr: s.expr, Value: s.value})
	}
	return infos
}

func (m *Manager) ActiveIDs() []int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.pool.activeIDs()
}

func (m *Manager) FreeIDs() []int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.pool.freeIDs()
}

func (m *Manager) Len() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.pool.activeIDs())
}
