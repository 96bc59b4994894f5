package watchpoint_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/expression"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/watchpoint"
)

type fakeMachine struct {
	regs   map[string]uint32
	memory map[uint32]uint32
	halts  int
}

func newFakeMachine() *fakeMachine {
	return &fakeMachine{regs: map[string]uint32{}, memory: map[uint32]uint32{}}
}

func (m *fakeMachine) ReadWord(addr uint32) (uint32, error) {
	v, ok := m.memory[addr]
	if !ok {
		return 0, fmt.Errorf("address 0x%x not mapped", addr)
	}
	return v, nil
}

func (m *fakeMachine) Register(name string) (uint32, bool) {
	v, ok := m.regs[name]
	return v, ok
}

func (m *fakeMachine) Halt() {
	m.halts++
}

func validateIDs(t *testing.T, what string, got, expected []int) {
	t.Helper()
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("%s ids: expected %v, got %v", what, expected, got)
	}
}

func mustCreate(t *testing.T, mgr *watchpoint.Manager, e string) int {
	t.Helper()
	id, err := mgr.Create(e)
	if err != nil {
		t.Fatalf("create %q: %v", e, err)
	}
	return id
}

func TestCreateAssignsLowestIDs(t *testing.T) {
	m := newFakeMachine()
	mgr := watchpoint.NewManager(m, m)

	for i, e := range []string{"1", "2", "3"} {
		if id := mustCreate(t, mgr, e); id != i {
			t.Errorf("expected id %d for %q, got %d", i, e, id)
		}
	}

	validateIDs(t, "active", mgr.ActiveIDs(), []int{0, 1, 2})
	free := mgr.FreeIDs()
	if len(free) != watchpoint.PoolSize-3 || free[0] != 3 {
		t.Errorf("unexpected free list %v", free)
	}
}

func TestDeleteReusesID(t *testing.T) {
	m := newFakeMachine()
	mgr := watchpoint.NewManager(m, m)

	mustCreate(t, mgr, "1")
	mustCreate(t, mgr, "2")
	mustCreate(t, mgr, "3")

	if err := mgr.Delete(1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	validateIDs(t, "active", mgr.ActiveIDs(), []int{0, 2})
	if free := mgr.FreeIDs(); free[0] != 1 || free[1] != 3 {
		t.Errorf("free list not sorted after delete: %v", free[:4])
	}

	if id := mustCreate(t, mgr, "4"); id != 1 {
		t.Errorf("expected reused id 1, got %d", id)
	}
	// reused id goes to the tail of the active list
	validateIDs(t, "active", mgr.ActiveIDs(), []int{0, 2, 1})
}

func TestDeleteKeepsFreeListSorted(t *testing.T) {
	m := newFakeMachine()
	mgr := watchpoint.NewManager(m, m)

	for i := 0; i < 6; i++ {
		mustCreate(t, mgr, "1")
	}
	for _, id := range []int{4, 1, 5, 0} {
		if err := mgr.Delete(id); err != nil {
			t.Fatalf("delete %d: %v", id, err)
		}
	}

	validateIDs(t, "active", mgr.ActiveIDs(), []int{2, 3})
	free := mgr.FreeIDs()
	validateIDs(t, "free head", free[:5], []int{0, 1, 4, 5, 6})
	if len(free) != watchpoint.PoolSize-2 {
		t.Errorf("expected %d free slots, got %d", watchpoint.PoolSize-2, len(free))
	}
}

func TestDeleteUnknown(t *testing.T) {
	m := newFakeMachine()
	mgr := watchpoint.NewManager(m, m)
	mustCreate(t, mgr, "1")

	for _, id := range []int{1, -1, watchpoint.PoolSize, 100} {
		err := mgr.Delete(id)
		if !watchpoint.Errors.IsNotFound(err) {
			t.Errorf("delete %d: expected not found error, got %v", id, err)
		}
	}

	if err := mgr.Delete(0); err != nil {
		t.Fatalf("delete 0: %v", err)
	}
	if err := mgr.Delete(0); !watchpoint.Errors.IsNotFound(err) {
		t.Errorf("second delete of 0: expected not found error, got %v", err)
	}
}

func TestFailedCreateKeepsSlot(t *testing.T) {
	m := newFakeMachine()
	mgr := watchpoint.NewManager(m, m)

	_, err := mgr.Create("$nosuch")
	if !expression.Errors.IsUnknownRegister(err) {
		t.Fatalf("expected unknown register error, got %v", err)
	}
	_, err = mgr.Create("1 +")
	if err == nil {
		t.Fatalf("expected error for incomplete expression")
	}

	validateIDs(t, "active", mgr.ActiveIDs(), []int{})
	if id := mustCreate(t, mgr, "1"); id != 0 {
		t.Errorf("expected id 0 after failed creates, got %d", id)
	}
}

func TestPoolExhaustion(t *testing.T) {
	m := newFakeMachine()
	mgr := watchpoint.NewManager(m, m)

	for i := 0; i < watchpoint.PoolSize; i++ {
		mustCreate(t, mgr, "1")
	}
	validateIDs(t, "free", mgr.FreeIDs(), []int{})

	_, err := mgr.Create("1")
	if !watchpoint.Errors.IsNoFreeSlot(err) {
		t.Fatalf("expected no free slot error, got %v", err)
	}

	if err := mgr.Delete(17); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if id := mustCreate(t, mgr, "2"); id != 17 {
		t.Errorf("expected id 17, got %d", id)
	}
}

func TestScanReportsChange(t *testing.T) {
	m := newFakeMachine()
	m.regs["a5"] = 3
	mgr := watchpoint.NewManager(m, m)

	mustCreate(t, mgr, "$a5")
	mustCreate(t, mgr, "$a5 == 3")
	mustCreate(t, mgr, "10")

	hits, err := mgr.ScanAndCheck()
	if err != nil || len(hits) != 0 {
		t.Fatalf("expected quiet scan, got %v %v", hits, err)
	}
	if m.halts != 0 {
		t.Errorf("halted without a change")
	}

	m.regs["a5"] = 7
	hits, err = mgr.ScanAndCheck()
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	expected := []watchpoint.Hit{
		{ID: 0, Expr: "$a5", Old: 3, New: 7},
		{ID: 1, Expr: "$a5 == 3", Old: 1, New: 0},
	}
	if !reflect.DeepEqual(hits, expected) {
		t.Errorf("expected hits %+v, got %+v", expected, hits)
	}
	if m.halts != 2 {
		t.Errorf("expected 2 halts, got %d", m.halts)
	}

	hits, err = mgr.ScanAndCheck()
	if err != nil || len(hits) != 0 {
		t.Errorf("change reported twice: %v %v", hits, err)
	}

	infos := mgr.List()
	if len(infos) != 3 || infos[0].Value != 7 || infos[1].Value != 0 || infos[2].Value != 10 {
		t.Errorf("unexpected list %+v", infos)
	}
}

func TestScanEmptyIsNoop(t *testing.T) {
	m := newFakeMachine()
	mgr := watchpoint.NewManager(m, m)

	hits, err := mgr.ScanAndCheck()
	if err != nil || hits != nil {
		t.Errorf("expected nothing, got %v %v", hits, err)
	}
}

func TestScanAbortsOnEvaluationError(t *testing.T) {
	m := newFakeMachine()
	m.regs["t0"] = 1
	m.memory[0x100] = 5
	mgr := watchpoint.NewManager(m, m)

	mustCreate(t, mgr, "$t0")
	mustCreate(t, mgr, "*0x100")
	mustCreate(t, mgr, "$t0 + 1")

	m.regs["t0"] = 2
	delete(m.memory, 0x100)

	hits, err := mgr.ScanAndCheck()
	if !expression.Errors.IsMemoryAccess(err) {
		t.Fatalf("expected memory access error, got %v", err)
	}
	if len(hits) != 1 || hits[0].ID != 0 {
		t.Errorf("expected the hit before the failure, got %+v", hits)
	}
	// the watchpoint after the failing one was not re-evaluated
	if infos := mgr.List(); infos[2].Value != 2 {
		t.Errorf("expected untouched baseline 2, got %d", infos[2].Value)
	}
}

func TestDeleteAll(t *testing.T) {
	m := newFakeMachine()
	mgr := watchpoint.NewManager(m, m)

	mustCreate(t, mgr, "1")
	mustCreate(t, mgr, "2")
	mustCreate(t, mgr, "3")
	mgr.Delete(1)

	if n := mgr.DeleteAll(); n != 2 {
		t.Errorf("expected 2 deleted, got %d", n)
	}
	validateIDs(t, "active", mgr.ActiveIDs(), []int{})
	if free := mgr.FreeIDs(); len(free) != watchpoint.PoolSize || free[0] != 0 || free[2] != 2 {
		t.Errorf("unexpected free list %v", free)
	}
}
