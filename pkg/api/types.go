package api

import "github.com/rooklift/disorderbook/pkg/book"

// orderRequest is the POST body for order placement. Venue and stock/symbol
// may be omitted (taken from the URL) but must match it when present.
// encoding/json matches "ordertype" to OrderType case-insensitively.
type orderRequest struct {
	Account   string `json:"account"`
	Venue     string `json:"venue"`
	Stock     string `json:"stock"`
	Symbol    string `json:"symbol"`
	Direction string `json:"direction"`
	OrderType string `json:"orderType"`
	Price     int64  `json:"price"`
	Qty       int64  `json:"qty"`
}

type heartbeatResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type venueInfo struct {
	Name  string `json:"name"`
	State string `json:"state"`
	Venue string `json:"venue"`
}

type venuesResponse struct {
	OK     bool        `json:"ok"`
	Venues []venueInfo `json:"venues"`
}

type venueHeartbeatResponse struct {
	OK    bool   `json:"ok"`
	Venue string `json:"venue"`
}

type symbolInfo struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

type symbolsResponse struct {
	OK      bool         `json:"ok"`
	Symbols []symbolInfo `json:"symbols"`
}

type ordersResponse struct {
	OK     bool                 `json:"ok"`
	Venue  string               `json:"venue"`
	Orders []book.OrderSnapshot `json:"orders"`
}

type positionsResponse struct {
	OK        bool                    `json:"ok"`
	Venue     string                  `json:"venue"`
	Symbol    string                  `json:"symbol"`
	Positions []book.PositionSnapshot `json:"positions"`
}

type debugResponse struct {
	OK     bool        `json:"ok"`
	Venue  string      `json:"venue"`
	Symbol string      `json:"symbol"`
	Stats  *book.Stats `json:"stats"`
}
