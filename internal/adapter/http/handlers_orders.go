package adapthttp

import (
	"errors"
	"net/http"
	"sort"

	"bookstore/internal/domain"
)

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listOrders(w, r)
	case http.MethodPost:
		s.createOrder(w, r)
	default:
		writeFail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	}
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	orders, err := s.orders.Orders(r.Context(), identity.Subject)
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if orders == nil {
		orders = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "orders": orders})
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	var req struct {
		Type    string   `json:"type"`
		BookIDs []string `json:"bookIds"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request")
		return
	}

	kind := domain.OrderKind(req.Type)
	if !kind.Valid() {
		writeFail(w, http.StatusBadRequest, `Invalid type: must be either "acquire" or "release"`)
		return
	}

	orderID, err := s.orders.RecordTransaction(r.Context(), identity.Subject, kind, req.BookIDs)
	if err != nil {
		if le := domain.AsLedgerError(err); le != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"error":   le.Error(),
				"code":    le.Code,
				"itemIds": le.ItemIDs,
			})
			return
		}
		writeFail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "orderId": orderID})
}

func (s *Server) handleOrderDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeFail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	orderID, ok := pathID(r.URL.Path, "/user/orders/")
	if !ok {
		writeFail(w, http.StatusNotFound, "Order not found")
		return
	}

	identity := identityFrom(r.Context())
	order, err := s.orders.Order(r.Context(), identity.Subject, identity.Role, orderID)
	if errors.Is(err, domain.ErrOrderNotFound) {
		writeFail(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "order": order})
}

func (s *Server) handleOwnBooks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeFail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	identity := identityFrom(r.Context())
	owned, err := s.projector.OwnedItems(r.Context(), identity.Subject)
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	books := make([]string, 0, len(owned))
	for id := range owned {
		books = append(books, id)
	}
	sort.Strings(books)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "books": books})
}

func (s *Server) handleAdminOrderByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeFail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	orderID, ok := pathID(r.URL.Path, "/admin/orders/")
	if !ok {
		writeFail(w, http.StatusNotFound, "Order not found")
		return
	}

	err := s.orders.DeleteEvent(r.Context(), orderID)
	if errors.Is(err, domain.ErrOrderNotFound) {
		writeFail(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
