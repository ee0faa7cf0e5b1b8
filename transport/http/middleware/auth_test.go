package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"hotelops/config"
	"hotelops/infras/jwt"
	jwtMocks "hotelops/infras/jwt/mocks"
	"hotelops/infras/otel/mocks"
	guestMocks "hotelops/internal/domains/guest/mocks"
	guestModel "hotelops/internal/domains/guest/model"
	"hotelops/permissions"
	"hotelops/shared"
	"hotelops/shared/constant"
	"hotelops/shared/password"
	"hotelops/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const operatorKey = "hk_live_operator"

type harness struct {
	router http.Handler
	jwt    *jwtMocks.MockJWT
	guest  *guestMocks.MockGuestService
	seen   *shared.Actor
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	ctrl := gomock.NewController(t)
	h := &harness{
		jwt:   jwtMocks.NewMockJWT(ctrl),
		guest: guestMocks.NewMockGuestService(ctrl),
		seen:  &shared.Actor{},
	}

	hash, err := password.Hash(operatorKey)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.App.APIKeyHash = hash

	perms := &permissions.PermissionData{Endpoints: []permissions.Permission{
		{Path: "/v1/health", Method: http.MethodGet, Skip: true},
		{Path: "/v1/bookings", Method: http.MethodGet, Permissions: []string{constant.RoleStaff, constant.RoleAdmin}},
		{Path: "/v1/bookings/{id}", Method: http.MethodGet, Permissions: []string{constant.RoleGuest, constant.RoleStaff, constant.RoleAdmin}},
	}}

	m := middleware.NewAuthRoleMiddleware(h.jwt, h.guest, mocks.NewOtel(), perms, cfg)

	ok := func(w http.ResponseWriter, r *http.Request) {
		*h.seen = shared.ActorFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}

	router := chi.NewRouter()
	router.Route("/v1", func(g chi.Router) {
		g.Use(m.APIKey)
		g.Use(m.Auth)
		g.Use(m.RBAC)
		g.Get("/health", ok)
		g.Get("/bookings", ok)
		g.Get("/bookings/{id}", ok)
	})

	h.router = router

	return h
}

func (h *harness) do(path string, headers map[string]string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	return rec.Code
}

func bearer(token string) map[string]string {
	return map[string]string{constant.RequestHeaderAuthorization: "Bearer " + token}
}

func TestAuth_SkippedRouteNeedsNoToken(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusNoContent, h.do("/v1/health", nil))
}

func TestAuth_MissingOrInvalidToken(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusUnauthorized, h.do("/v1/bookings/b-1", nil))

	h.jwt.EXPECT().Verify("expired").Return(nil, jwt.ErrExpiredToken)
	assert.Equal(t, http.StatusUnauthorized, h.do("/v1/bookings/b-1", bearer("expired")))
}

func TestAuth_PlacesCanonicalGuestInContext(t *testing.T) {
	h := newHarness(t)

	h.jwt.EXPECT().Verify("good").Return(&jwt.Claims{Email: "alice@example.com", Role: constant.RoleGuest}, nil)
	h.guest.EXPECT().EnsureFromClaims(gomock.Any(), "alice@example.com", constant.RoleGuest).
		Return(guestModel.Guest{ID: "guest-alice", Email: "alice@example.com", Role: guestModel.RoleGuest, Status: guestModel.StatusActive}, nil)

	assert.Equal(t, http.StatusNoContent, h.do("/v1/bookings/b-1", bearer("good")))
	assert.Equal(t, shared.Actor{ID: "guest-alice", Email: "alice@example.com", Role: constant.RoleGuest}, *h.seen)
}

func TestAuth_SuspendedAccountIsRejected(t *testing.T) {
	h := newHarness(t)

	h.jwt.EXPECT().Verify("good").Return(&jwt.Claims{Email: "carol@example.com", Role: constant.RoleGuest}, nil)
	h.guest.EXPECT().EnsureFromClaims(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(guestModel.Guest{ID: "guest-carol", Status: guestModel.StatusSuspended}, nil)

	assert.Equal(t, http.StatusForbidden, h.do("/v1/bookings/b-1", bearer("good")))
}

func TestRBAC_RoleNotAllowed(t *testing.T) {
	h := newHarness(t)

	h.jwt.EXPECT().Verify("good").Return(&jwt.Claims{Email: "alice@example.com", Role: constant.RoleGuest}, nil)
	h.guest.EXPECT().EnsureFromClaims(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(guestModel.Guest{ID: "guest-alice", Status: guestModel.StatusActive}, nil)

	assert.Equal(t, http.StatusForbidden, h.do("/v1/bookings", bearer("good")))
}

func TestAPIKey(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusNoContent, h.do("/v1/bookings", map[string]string{constant.RequestHeaderAPIKey: operatorKey}))
	assert.Equal(t, shared.SystemActor(), *h.seen)

	assert.Equal(t, http.StatusForbidden, h.do("/v1/bookings", map[string]string{constant.RequestHeaderAPIKey: "wrong"}))
}
