package kitchen

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/appetiteclub/lifecycle/internal/lifecycle"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const MaxBodyBytes = 1 << 20

type Handler struct {
	service *Service
	logger  aqm.Logger
	config  *aqm.Config
	tlm     *telemetry.HTTP
}

func NewHandler(service *Service, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		service: service,
		logger:  logger,
		config:  config,
		tlm:     telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.ListOrders)
		r.Post("/", h.PlaceOrder)
		r.Get("/{id}", h.GetOrder)
		r.Patch("/{id}/status", h.UpdateOrderStatus)
		r.Patch("/{id}/cancel", h.CancelOrder)
	})

	r.Route("/tickets", func(r chi.Router) {
		r.Get("/", h.ListTickets)
		r.Get("/overdue", h.ListOverdueTickets)
		r.Get("/{id}", h.GetTicket)
		r.Patch("/{id}/items/{itemID}", h.UpdateItemStatus)
	})

	r.Route("/reservations", func(r chi.Router) {
		r.Post("/", h.CreateReservation)
		r.Get("/{id}", h.GetReservation)
		r.Patch("/{id}/status", h.UpdateReservationStatus)
		r.Get("/{id}/next", h.NextReservationStatuses)
	})
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))
}

type lineItemRequest struct {
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Notes      string          `json:"notes"`
}

type placeOrderRequest struct {
	TableNumber         string            `json:"table_number"`
	ServerName          string            `json:"server_name"`
	GuestCount          int               `json:"guest_count"`
	SpecialInstructions string            `json:"special_instructions"`
	Items               []lineItemRequest `json:"items"`
}

func (req placeOrderRequest) toOrder() (lifecycle.Order, error) {
	order := lifecycle.Order{
		TableNumber:         req.TableNumber,
		ServerName:          req.ServerName,
		GuestCount:          req.GuestCount,
		SpecialInstructions: req.SpecialInstructions,
	}
	for _, li := range req.Items {
		menuID, err := uuid.Parse(li.MenuItemID)
		if err != nil {
			return lifecycle.Order{}, fmt.Errorf("menu item id %q: %w", li.MenuItemID, err)
		}
		order.Items = append(order.Items, lifecycle.LineItem{
			MenuItemID: menuID,
			Name:       li.Name,
			Quantity:   li.Quantity,
			UnitPrice:  li.UnitPrice,
			Notes:      li.Notes,
		})
	}
	return order, nil
}

type statusRequest struct {
	Status string `json:"status"`
	Chef   string `json:"chef"`
}

type reservationRequest struct {
	CustomerName string    `json:"customer_name"`
	ReservedFor  time.Time `json:"reserved_for"`
	PartySize    int       `json:"party_size"`
	TableNumber  string    `json:"table_number"`
	Notes        string    `json:"notes"`
}

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.PlaceOrder")
	defer finish()
	log := h.log(r)

	var req placeOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	order, err := req.toOrder()
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid menu item ID")
		return
	}

	res, err := h.service.PlaceOrder(r.Context(), order)
	if err != nil {
		respondServiceError(w, log, "cannot place order", err)
		return
	}

	aqm.Respond(w, http.StatusCreated, map[string]interface{}{
		"order":    res.Order,
		"ticket":   res.KitchenOrder,
		"warnings": errorStrings(res.Warnings),
	}, nil)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListOrders")
	defer finish()
	log := h.log(r)

	q := r.URL.Query()
	filter := OrderFilter{}
	if status := q.Get("status"); status != "" {
		filter.Status = &status
	}
	if table := q.Get("table"); table != "" {
		filter.TableNumber = &table
	}
	if archived, err := strconv.ParseBool(q.Get("archived")); err == nil {
		filter.IncludeArchived = archived
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}

	orders, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		log.Errorf("cannot list orders: %v", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not list orders")
		return
	}

	aqm.Respond(w, http.StatusOK, map[string]interface{}{
		"orders": orders,
	}, nil)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetOrder")
	defer finish()
	log := h.log(r)

	id, ok := parseID(w, r, "id", "Invalid order ID")
	if !ok {
		return
	}

	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		respondServiceError(w, log, "cannot get order", err)
		return
	}

	aqm.Respond(w, http.StatusOK, order, nil)
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateOrderStatus")
	defer finish()
	log := h.log(r)

	id, ok := parseID(w, r, "id", "Invalid order ID")
	if !ok {
		return
	}
	var req statusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Status == "" {
		aqm.RespondError(w, http.StatusBadRequest, "Status is required")
		return
	}

	order, err := h.service.TransitionOrder(r.Context(), id, req.Status)
	if err != nil {
		respondServiceError(w, log, "cannot update order status", err)
		return
	}

	aqm.Respond(w, http.StatusOK, order, nil)
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CancelOrder")
	defer finish()
	log := h.log(r)

	id, ok := parseID(w, r, "id", "Invalid order ID")
	if !ok {
		return
	}

	order, err := h.service.CancelOrder(r.Context(), id)
	if err != nil {
		respondServiceError(w, log, "cannot cancel order", err)
		return
	}

	aqm.Respond(w, http.StatusOK, order, nil)
}

func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListTickets")
	defer finish()
	log := h.log(r)

	q := r.URL.Query()
	tickets, err := h.service.ListTickets(r.Context(), q.Get("station"), q.Get("status"))
	if err != nil {
		log.Errorf("cannot list tickets: %v", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not list tickets")
		return
	}

	aqm.Respond(w, http.StatusOK, map[string]interface{}{
		"tickets": tickets,
	}, nil)
}

func (h *Handler) ListOverdueTickets(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListOverdueTickets")
	defer finish()
	log := h.log(r)

	tickets, err := h.service.OverdueTickets(r.Context())
	if err != nil {
		log.Errorf("cannot list overdue tickets: %v", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not list overdue tickets")
		return
	}

	aqm.Respond(w, http.StatusOK, map[string]interface{}{
		"tickets": tickets,
	}, nil)
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetTicket")
	defer finish()
	log := h.log(r)

	id, ok := parseID(w, r, "id", "Invalid ticket ID")
	if !ok {
		return
	}

	ticket, err := h.service.GetTicket(r.Context(), id)
	if err != nil {
		respondServiceError(w, log, "cannot find ticket", err)
		return
	}

	aqm.Respond(w, http.StatusOK, ticket, nil)
}

func (h *Handler) UpdateItemStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateItemStatus")
	defer finish()
	log := h.log(r)

	ticketID, ok := parseID(w, r, "id", "Invalid ticket ID")
	if !ok {
		return
	}
	itemID, ok := parseID(w, r, "itemID", "Invalid item ID")
	if !ok {
		return
	}
	var req statusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Status == "" {
		aqm.RespondError(w, http.StatusBadRequest, "Status is required")
		return
	}

	res, err := h.service.TransitionItem(r.Context(), ticketID, lifecycle.ItemTransition{
		ItemID: itemID,
		Status: req.Status,
		Chef:   req.Chef,
	})
	if err != nil {
		respondServiceError(w, log, "cannot update item status", err)
		return
	}

	body := map[string]interface{}{
		"ticket":        res.KitchenOrder,
		"order":         res.Order,
		"order_changed": res.OrderChanged,
		"notifications": res.Notifications,
	}
	if res.Partial() {
		body["cascade_error"] = res.CascadeErr.Error()
	}
	aqm.Respond(w, http.StatusOK, body, nil)
}

func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateReservation")
	defer finish()
	log := h.log(r)

	var req reservationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.service.CreateReservation(r.Context(), lifecycle.Reservation{
		CustomerName: req.CustomerName,
		ReservedFor:  req.ReservedFor,
		PartySize:    req.PartySize,
		TableNumber:  req.TableNumber,
		Notes:        req.Notes,
	})
	if err != nil {
		respondServiceError(w, log, "cannot create reservation", err)
		return
	}

	aqm.Respond(w, http.StatusCreated, res, nil)
}

func (h *Handler) GetReservation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetReservation")
	defer finish()
	log := h.log(r)

	id, ok := parseID(w, r, "id", "Invalid reservation ID")
	if !ok {
		return
	}

	res, err := h.service.GetReservation(r.Context(), id)
	if err != nil {
		respondServiceError(w, log, "cannot get reservation", err)
		return
	}

	aqm.Respond(w, http.StatusOK, res, nil)
}

func (h *Handler) UpdateReservationStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateReservationStatus")
	defer finish()
	log := h.log(r)

	id, ok := parseID(w, r, "id", "Invalid reservation ID")
	if !ok {
		return
	}
	var req statusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Status == "" {
		aqm.RespondError(w, http.StatusBadRequest, "Status is required")
		return
	}

	res, err := h.service.TransitionReservation(r.Context(), id, req.Status)
	if err != nil {
		respondServiceError(w, log, "cannot update reservation status", err)
		return
	}

	aqm.Respond(w, http.StatusOK, res, nil)
}

func (h *Handler) NextReservationStatuses(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.NextReservationStatuses")
	defer finish()
	log := h.log(r)

	id, ok := parseID(w, r, "id", "Invalid reservation ID")
	if !ok {
		return
	}

	next, err := h.service.NextReservationStatuses(r.Context(), id)
	if err != nil {
		respondServiceError(w, log, "cannot get reservation", err)
		return
	}

	aqm.Respond(w, http.StatusOK, map[string]interface{}{
		"statuses": next,
	}, nil)
}

func parseID(w http.ResponseWriter, r *http.Request, param, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, message)
		return uuid.Nil, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return false
	}
	if len(body) == 0 {
		return true
	}
	if err := json.Unmarshal(body, dst); err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return false
	}
	return true
}

// respondServiceError maps lifecycle errors to HTTP statuses.
func respondServiceError(w http.ResponseWriter, log aqm.Logger, msg string, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrInvalidTransition),
		errors.Is(err, lifecycle.ErrConcurrencyConflict),
		errors.Is(err, lifecycle.ErrAggregateRegression),
		errors.Is(err, lifecycle.ErrTicketMismatch):
		aqm.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, lifecycle.ErrEmptyOrder),
		errors.Is(err, lifecycle.ErrInvalidLineItem),
		errors.Is(err, ErrInvalidReservation):
		aqm.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, lifecycle.ErrNotFound),
		errors.Is(err, lifecycle.ErrItemNotFound):
		aqm.RespondError(w, http.StatusNotFound, err.Error())
	default:
		log.Errorf("%s: %v", msg, err)
		aqm.RespondError(w, http.StatusInternalServerError, "Internal error")
	}
}

func errorStrings(errs []error) []string {
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}
