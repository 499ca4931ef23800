package domain

import (
	"errors"
	"fmt"

	ordersdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/orders/domain"
)

var (
	ErrNothingToPack     = errors.New("packing queue is empty")
	ErrPackingIncomplete = errors.New("every item must be verified before finalizing")
	ErrUnknownItem       = errors.New("item does not belong to the order being packed")
)

// PackingTask mirrors TareaEmpaque. Next is nil when the queue is empty.
type PackingTask struct {
	Next   *ordersdomain.Order `json:"siguiente_pedido"`
	Queued int                 `json:"pedidos_en_cola"`
}

// Empty reports whether there is nothing left to pack.
func (t PackingTask) Empty() bool { return t.Next == nil }

// Checklist tracks which items of the order on the bench were verified.
// It belongs to one order; Reset rebinds it when the bench changes.
type Checklist struct {
	orderID  int64
	bound    bool
	items    []ordersdomain.Item
	verified map[int64]bool
}

func NewChecklist(order *ordersdomain.Order) *Checklist {
	c := &Checklist{}
	c.Reset(order)
	return c
}

// Reset binds the checklist to order and forgets every verification when
// order differs from the current one. It reports whether a reset happened.
func (c *Checklist) Reset(order *ordersdomain.Order) bool {
	if order == nil {
		changed := c.bound
		*c = Checklist{verified: map[int64]bool{}}
		return changed
	}
	if c.bound && c.orderID == order.ID {
		return false
	}
	*c = Checklist{
		orderID:  order.ID,
		bound:    true,
		items:    append([]ordersdomain.Item(nil), order.Items...),
		verified: map[int64]bool{},
	}
	return true
}

// OrderID returns the bound order, or 0 when the bench is empty.
func (c *Checklist) OrderID() int64 { return c.orderID }

// Toggle flips the verification mark of itemID and returns the new mark.
func (c *Checklist) Toggle(itemID int64) (bool, error) {
	if !c.has(itemID) {
		return false, fmt.Errorf("%w: %d", ErrUnknownItem, itemID)
	}
	if c.verified[itemID] {
		delete(c.verified, itemID)
		return false, nil
	}
	c.verified[itemID] = true
	return true, nil
}

// Verify marks itemID as verified; verifying twice is a no-op.
func (c *Checklist) Verify(itemID int64) error {
	if !c.has(itemID) {
		return fmt.Errorf("%w: %d", ErrUnknownItem, itemID)
	}
	c.verified[itemID] = true
	return nil
}

func (c *Checklist) IsVerified(itemID int64) bool { return c.verified[itemID] }

func (c *Checklist) Verified() int { return len(c.verified) }

func (c *Checklist) Total() int { return len(c.items) }

// Items returns the items of the bound order in their original order.
func (c *Checklist) Items() []ordersdomain.Item {
	return append([]ordersdomain.Item(nil), c.items...)
}

// Complete reports whether the bound order can be finalized.
func (c *Checklist) Complete() bool {
	return c.bound && len(c.verified) == len(c.items)
}

func (c *Checklist) has(itemID int64) bool {
	for _, item := range c.items {
		if item.ID == itemID {
			return true
		}
	}
	return false
}
