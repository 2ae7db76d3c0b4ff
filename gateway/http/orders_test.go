package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/migue1angel/event-manager-gateway/errors"
	"github.com/migue1angel/event-manager-gateway/gateway"
)

func envelope(t *testing.T, response any) []byte {
	t.Helper()

	raw, err := json.Marshal(map[string]any{
		"response":   response,
		"err":        nil,
		"isDisposed": true,
	})
	require.NoError(t, err)
	return raw
}

func envelopeError(t *testing.T, status int, message string) []byte {
	t.Helper()

	raw, err := json.Marshal(map[string]any{
		"err":        map[string]any{"status": status, "message": message},
		"isDisposed": true,
	})
	require.NoError(t, err)
	return raw
}

func decodeRPCError(t *testing.T, rec *httptest.ResponseRecorder) gateway.RPCError {
	t.Helper()

	var rpcErr gateway.RPCError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rpcErr))
	return rpcErr
}

const validOrderBody = `{"userId":"u-1","items":[{"ticketId":"t-1","quantity":2,"price":25.5}]}`

func TestCreateOrder_Success(t *testing.T) {
	transport := &stubRequester{reply: envelope(t, map[string]any{"id": "o-1", "status": "PENDING"})}
	g := newTestGateway(t, transport)

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(validOrderBody)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"o-1","status":"PENDING"}`, rec.Body.String())
	assert.Equal(t, string(gateway.SubjectCreateOrder), transport.gotSubject)
	assert.JSONEq(t, validOrderBody, string(transport.gotData))
}

func TestCreateOrder_InvalidBody(t *testing.T) {
	transport := &stubRequester{}
	g := newTestGateway(t, transport)

	cases := []struct {
		name string
		body string
	}{
		{"not json", "not json at all"},
		{"missing user", `{"items":[{"ticketId":"t-1","quantity":1,"price":1}]}`},
		{"empty items", `{"userId":"u-1","items":[]}`},
		{"zero quantity", `{"userId":"u-1","items":[{"ticketId":"t-1","quantity":0,"price":1}]}`},
		{"negative price", `{"userId":"u-1","items":[{"ticketId":"t-1","quantity":1,"price":-5}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(tc.body)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			rpcErr := decodeRPCError(t, rec)
			assert.Equal(t, http.StatusBadRequest, rpcErr.StatusCode)
			assert.Equal(t, "Bad Request", rpcErr.ErrorName)
		})
	}

	assert.Zero(t, transport.callCount, "invalid bodies must never reach the broker")
}

func TestCreateOrder_ValidationMessageNamesField(t *testing.T) {
	g := newTestGateway(t, &stubRequester{})

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders",
		strings.NewReader(`{"items":[{"ticketId":"t-1","quantity":1,"price":1}]}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rpcErr := decodeRPCError(t, rec)
	assert.Contains(t, rpcErr.Message, "userId", "violation detail must reach the client")
	assert.NotContains(t, rpcErr.Message, "Orders.validate", "internal context must not")
}

func TestCreateOrder_BackendErrorForwarded(t *testing.T) {
	transport := &stubRequester{reply: envelopeError(t, 400, "Ticket t-1 is sold out")}
	g := newTestGateway(t, transport)

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(validOrderBody)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rpcErr := decodeRPCError(t, rec)
	assert.Equal(t, "Ticket t-1 is sold out", rpcErr.Message)
	assert.Equal(t, "Bad Request", rpcErr.ErrorName)
}

func TestCreateOrder_TransportFailure(t *testing.T) {
	transport := &stubRequester{
		err: errors.WrapTransient(errors.ErrRequestTimeout, "Client", "Request", "await reply on createOrder"),
	}
	g := newTestGateway(t, transport)

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(validOrderBody)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rpcErr := decodeRPCError(t, rec)
	assert.Equal(t, "request timed out awaiting reply", rpcErr.Message)
}

func TestFindAllOrders_Success(t *testing.T) {
	transport := &stubRequester{reply: envelope(t, []map[string]any{{"id": "o-1"}, {"id": "o-2"}})}
	g := newTestGateway(t, transport)

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"o-1"},{"id":"o-2"}]`, rec.Body.String())
	assert.Equal(t, string(gateway.SubjectFindAllOrders), transport.gotSubject)
}

func TestFindAllOrders_FailureMasked(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"timeout", errors.WrapTransient(errors.ErrRequestTimeout, "Client", "Request", "await reply")},
		{"no connection", errors.WrapTransient(errors.ErrNoConnection, "Client", "Request", "send")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newTestGateway(t, &stubRequester{err: tc.err})

			rec := httptest.NewRecorder()
			g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			rpcErr := decodeRPCError(t, rec)
			assert.Equal(t, "Failed to fetch orders", rpcErr.Message)
			assert.Equal(t, "Internal Server Error", rpcErr.ErrorName)
		})
	}
}

func TestFindOrdersByUser_Success(t *testing.T) {
	transport := &stubRequester{reply: envelope(t, []map[string]any{{"id": "o-1", "userId": "u-7"}})}
	g := newTestGateway(t, transport)

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/user/u-7", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"u-7"}`, string(transport.gotData))
}

func TestFindOrdersByUser_FailurePropagated(t *testing.T) {
	cases := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "timeout becomes 504",
			err:         errors.WrapTransient(errors.ErrRequestTimeout, "Client", "Request", "await reply"),
			wantStatus:  http.StatusGatewayTimeout,
			wantMessage: "request timed out awaiting reply",
		},
		{
			name:        "no responders becomes 503",
			err:         errors.WrapTransient(errors.ErrNoResponders, "Client", "Request", "send"),
			wantStatus:  http.StatusServiceUnavailable,
			wantMessage: "no responders for subject",
		},
		{
			name:        "circuit open becomes 503",
			err:         errors.WrapTransient(errors.ErrCircuitOpen, "Client", "Request", "send"),
			wantStatus:  http.StatusServiceUnavailable,
			wantMessage: "circuit breaker open",
		},
		{
			name:        "backend error keeps its status",
			wantStatus:  http.StatusForbidden,
			wantMessage: "User u-7 is suspended",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			transport := &stubRequester{err: tc.err}
			if tc.err == nil {
				transport.reply = envelopeError(t, http.StatusForbidden, "User u-7 is suspended")
			}
			g := newTestGateway(t, transport)

			rec := httptest.NewRecorder()
			g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/user/u-7", nil))

			assert.Equal(t, tc.wantStatus, rec.Code)
			rpcErr := decodeRPCError(t, rec)
			assert.Equal(t, tc.wantStatus, rpcErr.StatusCode)
			assert.Equal(t, http.StatusText(tc.wantStatus), rpcErr.ErrorName)
			assert.Equal(t, tc.wantMessage, rpcErr.Message,
				"propagated messages carry the bare cause, not wrapping context")
		})
	}
}

func TestFindOneOrder_Success(t *testing.T) {
	transport := &stubRequester{reply: envelope(t, map[string]any{"id": "o-9", "status": "PAID"})}
	g := newTestGateway(t, transport)

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/o-9", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"statusCode":200,"data":{"id":"o-9","status":"PAID"}}`, rec.Body.String())
	assert.Equal(t, string(gateway.SubjectFindOneOrder), transport.gotSubject)
	assert.JSONEq(t, `{"id":"o-9"}`, string(transport.gotData))
}

func TestFindOneOrder_AnyFailureIs404(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		reply []byte
	}{
		{name: "backend not found", reply: mustMarshalEnvelopeError(404, "no such order")},
		{name: "backend internal error", reply: mustMarshalEnvelopeError(500, "database down")},
		{name: "timeout", err: errors.WrapTransient(errors.ErrRequestTimeout, "Client", "Request", "await reply")},
		{name: "broker unavailable", err: errors.WrapTransient(errors.ErrNoConnection, "Client", "Request", "send")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newTestGateway(t, &stubRequester{err: tc.err, reply: tc.reply})

			rec := httptest.NewRecorder()
			g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/o-42", nil))

			assert.Equal(t, http.StatusNotFound, rec.Code)
			rpcErr := decodeRPCError(t, rec)
			assert.Equal(t, "Order with ID o-42 not found", rpcErr.Message)
			assert.Equal(t, "Not Found", rpcErr.ErrorName)
		})
	}
}

func TestGenerateTickets_BinaryPassthrough(t *testing.T) {
	pdf := append([]byte("%PDF-1.4\n"), 0x00, 0xFF, 0x1B, 0x7F)
	transport := &stubRequester{reply: pdf}
	g := newTestGateway(t, transport)

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/generate-tickets/o-3", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename=ticket.pdf`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, pdf, rec.Body.Bytes(), "PDF bytes must pass through unmodified")
}

func TestGenerateTickets_FailurePropagated(t *testing.T) {
	g := newTestGateway(t, &stubRequester{
		err: errors.WrapTransient(errors.ErrRequestTimeout, "Client", "Request", "await reply"),
	})

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/generate-tickets/o-3", nil))

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestUpdateOrder_Success(t *testing.T) {
	transport := &stubRequester{reply: envelope(t, map[string]any{"id": "o-5", "status": "PAID"})}
	g := newTestGateway(t, transport)

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/orders/o-5", strings.NewReader(`{"status":"PAID"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"statusCode":200,"data":{"id":"o-5","status":"PAID"}}`, rec.Body.String())
	assert.Equal(t, string(gateway.SubjectUpdateOrder), transport.gotSubject)
	assert.JSONEq(t, `{"id":"o-5","status":"PAID"}`, string(transport.gotData),
		"order id from the path must travel inside the payload")
}

func TestUpdateOrder_InvalidStatus(t *testing.T) {
	transport := &stubRequester{}
	g := newTestGateway(t, transport)

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/orders/o-5", strings.NewReader(`{"status":"SHIPPED"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, transport.callCount)
}

func TestUpdateOrder_DispatchFailureGeneric(t *testing.T) {
	g := newTestGateway(t, &stubRequester{
		err: errors.WrapTransient(errors.ErrNoConnection, "Client", "Request", "send"),
	})

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/orders/o-5", strings.NewReader(`{"status":"PAID"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rpcErr := decodeRPCError(t, rec)
	assert.Equal(t, "Failed to update order", rpcErr.Message, "transport detail must not leak")
}

func TestRemoveOrder_Success(t *testing.T) {
	transport := &stubRequester{reply: envelope(t, map[string]any{"id": "o-8", "status": "CANCELLED"})}
	g := newTestGateway(t, transport)

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/orders/o-8", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"statusCode":200,"data":{"id":"o-8","status":"CANCELLED"}}`, rec.Body.String())
	assert.Equal(t, string(gateway.SubjectRemoveOrder), transport.gotSubject)
}

func TestRemoveOrder_FailureIs404(t *testing.T) {
	g := newTestGateway(t, &stubRequester{
		err: errors.WrapTransient(errors.ErrRequestTimeout, "Client", "Request", "await reply"),
	})

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/orders/o-8", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	rpcErr := decodeRPCError(t, rec)
	assert.Equal(t, "Order with ID o-8 not found", rpcErr.Message)
}

func mustMarshalEnvelopeError(status int, message string) []byte {
	raw, _ := json.Marshal(map[string]any{
		"err":        map[string]any{"status": status, "message": message},
		"isDisposed": true,
	})
	return raw
}
