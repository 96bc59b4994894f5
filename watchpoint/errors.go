package watchpoint

import (
	"fmt"

	"github.com/pkg/errors"
)

type NoFreeSlotError struct{}

func (e *NoFreeSlotError) Error() string {
	return fmt.Sprintf("no free watchpoint slot (all %d in use)", PoolSize)
}

type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("watchpoint %d not found", e.ID)
}

type managerErrors struct{}

var Errors managerErrors

func (managerErrors) NoFreeSlot() *NoFreeSlotError {
	return &NoFreeSlotError{}
}

func (managerErrors) NotFound(id int) *NotFoundError {
	return &NotFoundError{ID: id}
}

func (managerErrors) IsNoFreeSlot(err error) bool {
	var target *NoFreeSlotError
	return errors.As(err, &target)
}

func (managerErrors) IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
