package book

// level is a FIFO queue of resting orders at one price on one side. totalQty
// is maintained incrementally so depth queries cost O(levels), not O(orders).
type level struct {
	price    int32
	orders   []*Order
	totalQty int64
}

func (l *level) push(o *Order) {
	l.orders = append(l.orders, o)
	l.totalQty += int64(o.QtyOpen)
}

func (l *level) front() *Order {
	return l.orders[0]
}

func (l *level) popFront() *Order {
	o := l.orders[0]
	l.orders = l.orders[1:]
	return o
}

// reduce accounts for a partial fill of an order still in the queue.
func (l *level) reduce(qty int32) {
	l.totalQty -= int64(qty)
}

// remove takes the order with the given id out of the queue, wherever it
// sits. O(level size), used only for cancellation of the caller's own order.
func (l *level) remove(id int32) bool {
	for i, o := range l.orders {
		if o.ID == id {
			l.orders = append(l.orders[:i], l.orders[i+1:]...)
			l.totalQty -= int64(o.QtyOpen)
			return true
		}
	}
	return false
}

func (l *level) isEmpty() bool {
	return len(l.orders) == 0
}
