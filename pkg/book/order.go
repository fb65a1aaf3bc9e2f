package book

import "time"

type Side int

const (
	Buy  Side = 1
	Sell Side = 2
)

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// ParseDirection accepts the wire form of a side. Lowercase only.
func ParseDirection(s string) (Side, bool) {
	switch s {
	case "buy":
		return Buy, true
	case "sell":
		return Sell, true
	}
	return 0, false
}

type OrderType int

const (
	Limit  OrderType = 1
	Market OrderType = 2
	FOK    OrderType = 3
	IOC    OrderType = 4
)

func (t OrderType) String() string {
	switch t {
	case Limit:
		return "limit"
	case Market:
		return "market"
	case FOK:
		return "fill-or-kill"
	case IOC:
		return "immediate-or-cancel"
	}
	return "unknown"
}

// ParseOrderType accepts both the long and short wire forms.
func ParseOrderType(s string) (OrderType, bool) {
	switch s {
	case "limit":
		return Limit, true
	case "market":
		return Market, true
	case "fok", "fill-or-kill":
		return FOK, true
	case "ioc", "immediate-or-cancel":
		return IOC, true
	}
	return 0, false
}

// Fill records one side's view of a trade. The two counterparty orders
// receive fills with identical price, qty and timestamp.
type Fill struct {
	Price int32
	Qty   int32
	TS    time.Time
}

// Order lives in the book's arena for the lifetime of the book. Cancellation
// and remainder-discard close an order but never delete it.
type Order struct {
	ID          int32
	Account     string
	AccountID   int
	Side        Side
	Type        OrderType
	Price       int32
	OriginalQty int32
	QtyOpen     int32
	TotalFilled int32
	Open        bool
	Created     time.Time
	LastFill    time.Time
	Fills       []Fill
}

// OrderSpec is a validated order request. The HTTP layer has already checked
// field ranges; Place asserts them.
type OrderSpec struct {
	Account   string
	AccountID int
	Side      Side
	Type      OrderType
	Price     int32
	Qty       int32
}
