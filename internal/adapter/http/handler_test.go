package httpadapter

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotdesk/internal/core/domain"
	"slotdesk/internal/core/port"
)

const testSecret = "test-secret"

type stubAvailability struct {
	view  port.OrderView
	slots []domain.Slot
	err   error
}

func (s *stubAvailability) ReserveCommitments(context.Context, domain.Actor, port.ReserveOrderInput) (port.OrderView, error) {
	return s.view, s.err
}
func (s *stubAvailability) BlockSlot(context.Context, domain.Actor, int64, string, *domain.Window) error {
	return s.err
}
func (s *stubAvailability) UnblockSlot(context.Context, domain.Actor, int64) error { return s.err }
func (s *stubAvailability) CreateSlot(context.Context, domain.Actor, domain.Slot) (domain.Slot, error) {
	return domain.Slot{}, s.err
}
func (s *stubAvailability) ListSlots(context.Context, *domain.Channel) ([]domain.Slot, error) {
	return s.slots, s.err
}

type stubOrders struct {
	view port.OrderView
	wo   domain.WorkOrder
	inv  domain.Invoice
	err  error
}

func (s *stubOrders) Quote(context.Context, domain.Actor, port.QuoteInput) (domain.WorkOrder, error) {
	return s.wo, s.err
}
func (s *stubOrders) Negotiate(context.Context, domain.Actor, int64, string) (domain.WorkOrder, error) {
	return s.wo, s.err
}
func (s *stubOrders) Accept(context.Context, domain.Actor, int64, string) (domain.WorkOrder, error) {
	return s.wo, s.err
}
func (s *stubOrders) ApprovePO(context.Context, domain.Actor, int64) (domain.Invoice, error) {
	return s.inv, s.err
}
func (s *stubOrders) Reject(context.Context, domain.Actor, int64, string) (domain.WorkOrder, error) {
	return s.wo, s.err
}
func (s *stubOrders) Get(context.Context, int64) (port.OrderView, error) {
	return s.view, s.err
}

type stubPayments struct {
	inv domain.Invoice
	err error
}

func (s *stubPayments) Pay(context.Context, domain.Actor, int64) (domain.Invoice, error) {
	return s.inv, s.err
}

type stubReleases struct {
	ro  domain.ReleaseOrder
	c   domain.Commitment
	err error
}

func (s *stubReleases) Approve(context.Context, domain.Actor, int64) (domain.ReleaseOrder, error) {
	return s.ro, s.err
}
func (s *stubReleases) Reject(context.Context, domain.Actor, int64, string) (domain.ReleaseOrder, error) {
	return s.ro, s.err
}
func (s *stubReleases) ReturnToClient(context.Context, domain.Actor, int64, string) (domain.ReleaseOrder, error) {
	return s.ro, s.err
}
func (s *stubReleases) UploadBanner(context.Context, domain.Actor, int64, string) (domain.Commitment, error) {
	return s.c, s.err
}
func (s *stubReleases) Resubmit(context.Context, domain.Actor, int64) (domain.ReleaseOrder, error) {
	return s.ro, s.err
}
func (s *stubReleases) Settle(context.Context, domain.Actor, int64) (domain.ReleaseOrder, error) {
	return s.ro, s.err
}

type stubDeploy struct {
	view  port.DeploymentView
	views []port.DeploymentView
	err   error
}

func (s *stubDeploy) Deploy(context.Context, domain.Actor, int64, string) (port.DeploymentView, error) {
	return s.view, s.err
}
func (s *stubDeploy) ListByWorkOrder(context.Context, int64, time.Time) ([]port.DeploymentView, error) {
	return s.views, s.err
}

type stubs struct {
	availability *stubAvailability
	orders       *stubOrders
	payments     *stubPayments
	releases     *stubReleases
	deploy       *stubDeploy
}

func newTestHandler() (*Handler, *stubs) {
	s := &stubs{
		availability: &stubAvailability{},
		orders:       &stubOrders{},
		payments:     &stubPayments{},
		releases:     &stubReleases{},
		deploy:       &stubDeploy{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(s.availability, s.orders, s.payments, s.releases, s.deploy, logger, testSecret)
	return h, s
}

func bearerToken(t *testing.T, secret string, role domain.Role) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ActorID: 1,
		Role:    string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func doRequest(t *testing.T, h *Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	h, _ := newTestHandler()

	t.Run("missing token", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/v1/slots", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"unauthorized"`)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/v1/slots", "not-a-jwt", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		token := bearerToken(t, "other-secret", domain.RoleClient)
		rec := doRequest(t, h, http.MethodGet, "/api/v1/slots", token, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token passes through", func(t *testing.T) {
		token := bearerToken(t, testSecret, domain.RoleClient)
		rec := doRequest(t, h, http.MethodGet, "/api/v1/slots", token, "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestDomainErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"conflict", domain.ErrSlotWindowConflict, http.StatusConflict, codeConflict},
		{"invalid transition", domain.ErrStaleStatus, http.StatusUnprocessableEntity, codeInvalidTransition},
		{"wrong role", domain.ErrWrongRole, http.StatusForbidden, codeForbidden},
		{"not found", domain.ErrSlotNotFound, http.StatusNotFound, codeNotFound},
		{"validation", domain.ErrInvalidWindow, http.StatusBadRequest, codeValidation},
		{"unclassified", io.ErrUnexpectedEOF, http.StatusInternalServerError, codeInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, s := newTestHandler()
			s.availability.err = tc.err
			token := bearerToken(t, testSecret, domain.RoleClient)

			rec := doRequest(t, h, http.MethodPost, "/api/v1/orders", token, `{"items":[]}`)
			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), `"code":"`+tc.wantCode+`"`)
		})
	}
}

func TestReserveRequestDecoding(t *testing.T) {
	token := bearerToken(t, testSecret, domain.RoleClient)

	t.Run("malformed body", func(t *testing.T) {
		h, _ := newTestHandler()
		rec := doRequest(t, h, http.MethodPost, "/api/v1/orders", token, `{"items":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"invalid_request_body"`)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		h, _ := newTestHandler()
		rec := doRequest(t, h, http.MethodPost, "/api/v1/orders", token, `{"items":[],"bogus":1}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("created order is echoed back", func(t *testing.T) {
		h, s := newTestHandler()
		slotID := int64(3)
		s.availability.view = port.OrderView{
			Order: domain.WorkOrder{ID: 7, ClientID: 1, Status: domain.WorkOrderDraft},
			Commitments: []domain.Commitment{{
				ID:      11,
				SlotID:  &slotID,
				Channel: domain.ChannelWebsite,
				Section: "website/sports",
				Price:   50_000,
			}},
		}

		body := `{"items":[{"slot_id":3,"start_date":"2026-01-05T00:00:00Z","end_date":"2026-01-10T00:00:00Z"}]}`
		rec := doRequest(t, h, http.MethodPost, "/api/v1/orders", token, body)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"draft"`)
		assert.Contains(t, rec.Body.String(), `"section":"website/sports"`)
	})
}

func TestInvalidIDParam(t *testing.T) {
	h, _ := newTestHandler()
	token := bearerToken(t, testSecret, domain.RoleManager)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/orders/abc", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/api/v1/release-orders/0/approve", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListSlotsChannelFilter(t *testing.T) {
	h, s := newTestHandler()
	s.availability.slots = []domain.Slot{{ID: 1, Channel: domain.ChannelMobile, Price: 30_000, Status: domain.SlotStatusAvailable}}
	token := bearerToken(t, testSecret, domain.RoleClient)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/slots?channel=mobile", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"channel":"mobile"`)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/slots?channel=radio", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
