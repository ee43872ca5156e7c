package book

// PriceLevelQueue holds the resting orders at one price in FIFO arrival
// order, together with a maintained sum of their residual quantities.
// Orders are appended at the tail and consumed from the head; the only
// mid-queue removal is the cancel path.
type PriceLevelQueue struct {
	orders   []Order
	totalQty Qty
}

// Append pushes an order to the tail of the queue.
func (q *PriceLevelQueue) Append(o Order) {
	q.orders = append(q.orders, o)
	q.totalQty += o.Quantity
}

// Remove removes the order with the given id, returning it and true, or a
// zero Order and false if the id is not present. Linear in queue length;
// used only by the cancel path, where the by-id index has already narrowed
// the search to this one level.
func (q *PriceLevelQueue) Remove(id OrderID) (Order, bool) {
	for i, o := range q.orders {
		if o.ID == id {
			q.totalQty -= o.Quantity
			q.orders = append(q.orders[:i], q.orders[i+1:]...)
			return o, true
		}
	}
	return Order{}, false
}

// ConsumeHead consumes up to requested quantity from the head order. If the
// head's residual is <= requested it is popped and returned with true; else
// the head's residual is reduced and a snapshot carrying the consumed
// quantity is returned with false. Calling on an empty queue returns false
// with a zero Order.
func (q *PriceLevelQueue) ConsumeHead(requested Qty) (Order, bool) {
	if len(q.orders) == 0 {
		return Order{}, false
	}
	head := &q.orders[0]
	if head.Quantity <= requested {
		o := *head
		q.totalQty -= o.Quantity
		q.orders = q.orders[1:]
		return o, true
	}
	o := *head
	o.Quantity = requested
	head.Quantity -= requested
	q.totalQty -= requested
	return o, false
}

// Head returns the order at the head of the queue without consuming it.
func (q *PriceLevelQueue) Head() (Order, bool) {
	if len(q.orders) == 0 {
		return Order{}, false
	}
	return q.orders[0], true
}

// Get returns the resting order with the given id, if present.
func (q *PriceLevelQueue) Get(id OrderID) (Order, bool) {
	for _, o := range q.orders {
		if o.ID == id {
			return o, true
		}
	}
	return Order{}, false
}

// TotalQuantity returns the sum of residual quantities in the queue.
func (q *PriceLevelQueue) TotalQuantity() Qty { return q.totalQty }

// Len returns the number of resting orders in the queue.
func (q *PriceLevelQueue) Len() int { return len(q.orders) }

// Empty reports whether the queue holds no orders.
func (q *PriceLevelQueue) Empty() bool { return len(q.orders) == 0 }
