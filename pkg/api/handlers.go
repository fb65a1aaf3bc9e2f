package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/rooklift/disorderbook/pkg/book"
	"github.com/rooklift/disorderbook/pkg/engine"
	"github.com/rooklift/disorderbook/pkg/exchange"
)

// apiKey pulls the client's key from the canonical header, falling back to
// the legacy one.
func apiKey(r *http.Request) string {
	key := r.Header.Get("X-Starfighter-Authorization")
	if key == "" {
		key = r.Header.Get("X-Stockfighter-Authorization")
	}
	return key
}

// authorize checks the request's API key against the given account. Writes
// the 401 itself and returns false on failure. A nil keyring passes all.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, account string) bool {
	if !s.keyring.Enabled() {
		return true
	}
	key := apiKey(r)
	if key == "" {
		respondError(w, http.StatusUnauthorized, msgNoAuth)
		return false
	}
	if !s.keyring.Check(account, key) {
		respondError(w, http.StatusUnauthorized, msgAuthFailure)
		return false
	}
	return true
}

// bookNames validates the venue/symbol URL vars. Writes the 400 itself.
func bookNames(w http.ResponseWriter, r *http.Request) (venue, symbol string, ok bool) {
	vars := mux.Vars(r)
	venue, symbol = vars["venue"], vars["symbol"]
	if !exchange.ValidName(venue) || !exchange.ValidName(symbol) {
		respondError(w, http.StatusBadRequest, msgBadBookName)
		return "", "", false
	}
	return venue, symbol, true
}

// lookupBook finds an existing engine without creating a book.
func (s *Server) lookupBook(w http.ResponseWriter, venue, symbol string) (*engine.Engine, bool) {
	if !s.registry.HasVenue(venue) {
		respondError(w, http.StatusBadRequest, msgUnknownVenue)
		return nil, false
	}
	e, ok := s.registry.Lookup(venue, symbol)
	if !ok {
		respondError(w, http.StatusBadRequest, msgUnknownSymbol)
		return nil, false
	}
	return e, true
}

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, heartbeatResponse{OK: true, Error: ""})
}

func (s *Server) handleVenues(w http.ResponseWriter, r *http.Request) {
	resp := venuesResponse{OK: true, Venues: []venueInfo{}}
	for _, v := range s.registry.Venues() {
		resp.Venues = append(resp.Venues, venueInfo{Name: v + " Exchange", State: "open", Venue: v})
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVenueHeartbeat(w http.ResponseWriter, r *http.Request) {
	venue := mux.Vars(r)["venue"]
	if !s.registry.HasVenue(venue) {
		respondError(w, http.StatusNotFound, msgVenueNotUp)
		return
	}
	respondJSON(w, http.StatusOK, venueHeartbeatResponse{OK: true, Venue: venue})
}

func (s *Server) handleStocks(w http.ResponseWriter, r *http.Request) {
	venue := mux.Vars(r)["venue"]
	symbols, ok := s.registry.Symbols(venue)
	if !ok {
		respondError(w, http.StatusNotFound, msgVenueNotUp)
		return
	}
	resp := symbolsResponse{OK: true, Symbols: []symbolInfo{}}
	for _, sym := range symbols {
		resp.Symbols = append(resp.Symbols, symbolInfo{Name: sym + " Inc", Symbol: sym})
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDepth(w http.ResponseWriter, r *http.Request) {
	venue, symbol, ok := bookNames(w, r)
	if !ok {
		return
	}
	e, err := s.registry.GetOrCreate(venue, symbol)
	if err != nil {
		respondError(w, http.StatusBadRequest, msgBookLimit)
		return
	}
	snap, err := e.Depth()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	venue, symbol, ok := bookNames(w, r)
	if !ok {
		return
	}
	e, err := s.registry.GetOrCreate(venue, symbol)
	if err != nil {
		respondError(w, http.StatusBadRequest, msgBookLimit)
		return
	}
	snap, err := e.Quote()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	venue, symbol, ok := bookNames(w, r)
	if !ok {
		return
	}

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, msgBadJSON)
		return
	}

	// Venue and stock/symbol may be omitted from the body; when present
	// they must agree with the URL. "stock" is an alias of "symbol".
	if req.Venue == "" {
		req.Venue = venue
	}
	if req.Symbol == "" && req.Stock == "" {
		req.Symbol = symbol
	}
	if req.Stock != "" {
		req.Symbol = req.Stock
	}
	if req.Venue != venue || req.Symbol != symbol {
		respondError(w, http.StatusBadRequest, msgURLMismatch)
		return
	}

	if req.Account == "" || req.Direction == "" || req.OrderType == "" {
		respondError(w, http.StatusBadRequest, msgMissingField)
		return
	}
	if req.Price < 0 || req.Price > math.MaxInt32 {
		respondError(w, http.StatusBadRequest, msgBadPrice)
		return
	}
	if req.Qty < 1 || req.Qty > math.MaxInt32 {
		respondError(w, http.StatusBadRequest, msgBadQty)
		return
	}
	if !exchange.ValidName(req.Account) {
		respondError(w, http.StatusBadRequest, msgBadAccountName)
		return
	}

	side, ok := book.ParseDirection(req.Direction)
	if !ok {
		respondError(w, http.StatusBadRequest, msgBadDirection)
		return
	}
	orderType, ok := book.ParseOrderType(req.OrderType)
	if !ok {
		respondError(w, http.StatusBadRequest, msgBadOrderType)
		return
	}

	if !s.authorize(w, r, req.Account) {
		return
	}

	e, err := s.registry.GetOrCreate(venue, symbol)
	if err != nil {
		respondError(w, http.StatusBadRequest, msgBookLimit)
		return
	}

	// Intern the account as late as possible so early rejections don't
	// consume id space.
	accountID, err := s.accounts.ID(req.Account)
	if err != nil {
		respondError(w, http.StatusBadRequest, msgTooManyAccts)
		return
	}

	snap, err := e.Place(book.OrderSpec{
		Account:   req.Account,
		AccountID: accountID,
		Side:      side,
		Type:      orderType,
		Price:     int32(req.Price),
		Qty:       int32(req.Qty),
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// orderTarget resolves the book and order id shared by status and cancel,
// and authorizes the request against the order's owning account.
func (s *Server) orderTarget(w http.ResponseWriter, r *http.Request) (*engine.Engine, int32, bool) {
	venue, symbol, ok := bookNames(w, r)
	if !ok {
		return nil, 0, false
	}
	e, ok := s.lookupBook(w, venue, symbol)
	if !ok {
		return nil, 0, false
	}

	id64, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, msgBadOrderID)
		return nil, 0, false
	}
	id := int32(id64)

	owner, err := e.AccountOf(id)
	if err != nil {
		if errors.Is(err, book.ErrNoSuchOrder) {
			respondError(w, http.StatusBadRequest, msgUnknownOrder)
		} else {
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return nil, 0, false
	}
	if !s.authorize(w, r, owner) {
		return nil, 0, false
	}
	return e, id, true
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	e, id, ok := s.orderTarget(w, r)
	if !ok {
		return
	}
	snap, err := e.Status(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	e, id, ok := s.orderTarget(w, r)
	if !ok {
		return
	}
	snap, err := e.Cancel(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleStatusAll(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.Extras {
		respondError(w, http.StatusBadRequest, msgDisabled)
		return
	}
	venue, symbol, ok := bookNames(w, r)
	if !ok {
		return
	}
	account := mux.Vars(r)["account"]
	if !exchange.ValidName(account) {
		respondError(w, http.StatusBadRequest, msgBadAccountName)
		return
	}
	if !s.authorize(w, r, account) {
		return
	}
	e, ok := s.lookupBook(w, venue, symbol)
	if !ok {
		return
	}
	accountID, err := s.accounts.ID(account)
	if err != nil {
		respondError(w, http.StatusBadRequest, msgTooManyAccts)
		return
	}
	orders, err := e.StatusAll(accountID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, ordersResponse{OK: true, Venue: venue, Orders: orders})
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.Extras {
		respondError(w, http.StatusBadRequest, msgDisabled)
		return
	}
	venue, symbol, ok := bookNames(w, r)
	if !ok {
		return
	}
	e, ok := s.lookupBook(w, venue, symbol)
	if !ok {
		return
	}
	positions, err := e.Positions()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, positionsResponse{OK: true, Venue: venue, Symbol: symbol, Positions: positions})
}

func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.Extras {
		respondError(w, http.StatusBadRequest, msgDisabled)
		return
	}
	venue, symbol, ok := bookNames(w, r)
	if !ok {
		return
	}
	e, ok := s.lookupBook(w, venue, symbol)
	if !ok {
		return
	}
	stats, err := e.Stats()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, debugResponse{OK: true, Venue: venue, Symbol: symbol, Stats: stats})
}
