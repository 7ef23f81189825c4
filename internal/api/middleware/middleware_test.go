package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/ParishReservationService/pkg/logger"
	"github.com/m04kA/ParishReservationService/pkg/ptr"
)

const secret = "test-secret"

func identityHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r.Context())
		require.True(t, ok)
		w.Header().Set("X-User", strconv.FormatInt(userID, 10))
		if parishID, ok := GetParishID(r.Context()); ok {
			w.Header().Set("X-Parish", strconv.FormatInt(parishID, 10))
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func serve(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuth(t *testing.T) {
	auth := NewAuthenticator(secret, "parish-auth", time.Second)

	token, err := auth.Issue(7, ptr.Ptr(int64(3)), time.Hour)
	require.NoError(t, err)

	rec := serve(auth.Auth(identityHandler(t)), token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "7", rec.Header().Get("X-User"))
	assert.Equal(t, "3", rec.Header().Get("X-Parish"))

	userToken, err := auth.Issue(8, nil, time.Hour)
	require.NoError(t, err)
	rec = serve(auth.Auth(identityHandler(t)), userToken)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Parish"))
}

func TestAuth_Rejects(t *testing.T) {
	auth := NewAuthenticator(secret, "parish-auth", 0)

	expired, err := auth.Issue(7, nil, -time.Minute)
	require.NoError(t, err)

	otherKey, err := NewAuthenticator("another-secret", "parish-auth", 0).Issue(7, nil, time.Hour)
	require.NoError(t, err)

	otherIssuer, err := NewAuthenticator(secret, "someone-else", 0).Issue(7, nil, time.Hour)
	require.NoError(t, err)

	noUser, err := auth.Issue(0, nil, time.Hour)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: 7}).SignedString([]byte(secret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "missing", token: ""},
		{name: "garbage", token: "not-a-jwt"},
		{name: "expired", token: expired},
		{name: "wrong key", token: otherKey},
		{name: "wrong issuer", token: otherIssuer},
		{name: "no user", token: noUser},
		{name: "unexpected algorithm", token: hs512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(auth.Auth(identityHandler(t)), tt.token)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireParish(t *testing.T) {
	auth := NewAuthenticator(secret, "", 0)
	chain := auth.Auth(RequireParish(identityHandler(t)))

	userToken, err := auth.Issue(8, nil, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, serve(chain, userToken).Code)

	adminToken, err := auth.Issue(8, ptr.Ptr(int64(2)), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, serve(chain, adminToken).Code)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, incoming, seen)
}

type recordedRequest struct {
	method, route string
	status        int
}

type fakeMetrics struct{ calls []recordedRequest }

func (f *fakeMetrics) ObserveHTTPRequest(method, route string, status int, _ time.Duration) {
	f.calls = append(f.calls, recordedRequest{method: method, route: route, status: status})
}

func TestMetricsAndRecover(t *testing.T) {
	m := &fakeMetrics{}
	r := mux.NewRouter()
	r.Use(MetricsMiddleware(m), Recover(logger.NewNop()))
	r.HandleFunc("/reservations/{reservationId}", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	r.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reservations/42", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	require.Len(t, m.calls, 2)
	assert.Equal(t, recordedRequest{method: "GET", route: "/reservations/{reservationId}", status: 500}, m.calls[0])
	assert.Equal(t, recordedRequest{method: "GET", route: "/ok", status: 202}, m.calls[1])
}
