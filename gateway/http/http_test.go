package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/migue1angel/event-manager-gateway/errors"
	"github.com/migue1angel/event-manager-gateway/gateway"
	"github.com/migue1angel/event-manager-gateway/natsclient"
)

// stubRequester records the dispatched call and returns a canned reply
type stubRequester struct {
	reply       []byte
	err         error
	gotSubject  string
	gotData     []byte
	callCount   int
	healthyFlag bool
}

func (s *stubRequester) Request(_ context.Context, subject string, data []byte) ([]byte, error) {
	s.callCount++
	s.gotSubject = subject
	s.gotData = data
	if s.err != nil {
		return nil, s.err
	}
	return s.reply, nil
}

func (s *stubRequester) IsHealthy() bool {
	return s.healthyFlag
}

func newTestGateway(t *testing.T, transport gateway.Requester) *Gateway {
	t.Helper()

	g, err := NewGateway(gateway.Config{Port: 8080}, transport)
	require.NoError(t, err)
	return g
}

func TestNewGateway_InvalidConfig(t *testing.T) {
	_, err := NewGateway(gateway.Config{Port: 0}, &stubRequester{})
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestNewGateway_NilTransport(t *testing.T) {
	_, err := NewGateway(gateway.Config{Port: 8080}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
}

func TestRequestID_Generated(t *testing.T) {
	g := newTestGateway(t, &stubRequester{reply: []byte(`[]`)})

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequestID_Propagated(t *testing.T) {
	g := newTestGateway(t, &stubRequester{reply: []byte(`[]`)})

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "trace-123", rec.Header().Get("X-Request-ID"))
}

func TestCORS_Preflight(t *testing.T) {
	g, err := NewGateway(gateway.Config{Port: 8080, EnableCORS: true}, &stubRequester{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/orders", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_DisabledByDefault(t *testing.T) {
	g := newTestGateway(t, &stubRequester{reply: []byte(`[]`)})

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealth_Healthy(t *testing.T) {
	g := newTestGateway(t, &stubRequester{healthyFlag: true})

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

// statusStubRequester additionally exposes a broker status snapshot
type statusStubRequester struct {
	stubRequester
	snapshot *natsclient.Status
}

func (s *statusStubRequester) GetStatus() *natsclient.Status {
	return s.snapshot
}

func TestHealth_BrokerSnapshot(t *testing.T) {
	transport := &statusStubRequester{
		stubRequester: stubRequester{healthyFlag: true},
		snapshot: &natsclient.Status{
			Status:       natsclient.StatusConnected,
			FailureCount: 2,
			RTT:          3 * time.Millisecond,
		},
	}
	g := newTestGateway(t, transport)

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"broker_status":"connected"`)
	assert.Contains(t, rec.Body.String(), `"broker_failures":2`)
	assert.Contains(t, rec.Body.String(), `"broker_rtt_ms":3`)
}

func TestHealth_BrokerDown(t *testing.T) {
	g := newTestGateway(t, &stubRequester{healthyFlag: false})

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
}

func TestBodySizeLimit(t *testing.T) {
	transport := &stubRequester{}
	g, err := NewGateway(gateway.Config{Port: 8080, MaxRequestSize: 64}, transport)
	require.NoError(t, err)

	oversized := strings.NewReader(`{"userId":"u1","items":[` + strings.Repeat(`{"ticketId":"t","quantity":1,"price":1},`, 50) + `]}`)
	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", oversized))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, transport.callCount, "oversized body must be rejected before dispatch")
}

func TestRouting_UserListBeatsSingleOrder(t *testing.T) {
	transport := &stubRequester{reply: []byte(`[]`)}
	g := newTestGateway(t, transport)

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/user/u-7", nil))

	assert.Equal(t, string(gateway.SubjectFindOrdersByUser), transport.gotSubject)
	assert.Equal(t, `{"id":"u-7"}`, string(bytes.TrimSpace(transport.gotData)))
}

func TestRouting_TicketPathBeatsSingleOrder(t *testing.T) {
	transport := &stubRequester{reply: []byte("%PDF-1.4 stub")}
	g := newTestGateway(t, transport)

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/generate-tickets/o-3", nil))

	assert.Equal(t, string(gateway.SubjectGenerateTickets), transport.gotSubject)
}
