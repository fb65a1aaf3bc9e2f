package book

import "time"

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// FillSnapshot is the wire form of a Fill.
type FillSnapshot struct {
	Price int32  `json:"price"`
	Qty   int32  `json:"qty"`
	TS    string `json:"ts"`
}

// OrderSnapshot is the wire form of an order, field names per the
// Stockfighter API.
type OrderSnapshot struct {
	OK          bool           `json:"ok"`
	Venue       string         `json:"venue"`
	Symbol      string         `json:"symbol"`
	Direction   string         `json:"direction"`
	OriginalQty int32          `json:"originalQty"`
	Qty         int32          `json:"qty"`
	Price       int32          `json:"price"`
	OrderType   string         `json:"orderType"`
	ID          int32          `json:"id"`
	Account     string         `json:"account"`
	TS          string         `json:"ts"`
	TotalFilled int32          `json:"totalFilled"`
	Open        bool           `json:"open"`
	Fills       []FillSnapshot `json:"fills"`
}

// DepthLevel is one aggregated price level in a depth snapshot.
type DepthLevel struct {
	Price int32 `json:"price"`
	Qty   int64 `json:"qty"`
	IsBuy bool  `json:"isBuy"`
}

// DepthSnapshot lists both sides best-first with per-level aggregate
// quantities.
type DepthSnapshot struct {
	OK     bool         `json:"ok"`
	Venue  string       `json:"venue"`
	Symbol string       `json:"symbol"`
	TS     string       `json:"ts"`
	Bids   []DepthLevel `json:"bids"`
	Asks   []DepthLevel `json:"asks"`
}

// QuoteSnapshot is the top-of-book summary. Bid/ask keys are omitted when
// that side is empty; last-trade keys are omitted until the first trade.
type QuoteSnapshot struct {
	OK        bool   `json:"ok"`
	Venue     string `json:"venue"`
	Symbol    string `json:"symbol"`
	Bid       *int32 `json:"bid,omitempty"`
	BidSize   int64  `json:"bidSize"`
	BidDepth  int64  `json:"bidDepth"`
	Ask       *int32 `json:"ask,omitempty"`
	AskSize   int64  `json:"askSize"`
	AskDepth  int64  `json:"askDepth"`
	Last      *int32 `json:"last,omitempty"`
	LastSize  *int32 `json:"lastSize,omitempty"`
	LastTrade string `json:"lastTrade,omitempty"`
	QuoteTime string `json:"quoteTime"`
}

// PositionSnapshot reports one account's running cash delta and share count
// on this book.
type PositionSnapshot struct {
	Account string `json:"account"`
	Cash    int64  `json:"cash"`
	Shares  int64  `json:"shares"`
}

// Stats holds book diagnostics.
type Stats struct {
	Orders     int   `json:"orders"`
	OpenOrders int   `json:"openOrders"`
	Fills      int   `json:"fills"`
	Trades     int64 `json:"trades"`
	BidLevels  int   `json:"bidLevels"`
	AskLevels  int   `json:"askLevels"`
	Accounts   int   `json:"accounts"`
}
