package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/SversusN/tinyapp/config"
	"github.com/SversusN/tinyapp/internal/entity"
	"github.com/SversusN/tinyapp/internal/handlers"
	"github.com/SversusN/tinyapp/internal/metrics"
	mw "github.com/SversusN/tinyapp/internal/middleware"
	"github.com/SversusN/tinyapp/internal/pkg/utils"
	"github.com/SversusN/tinyapp/internal/storage/primitivestorage"
	"github.com/SversusN/tinyapp/internal/storage/storage"
	"github.com/SversusN/tinyapp/internal/views"
)

type brokenStorage struct {
	*primitivestorage.MapStorage
}

func (brokenStorage) Ping(context.Context) error {
	return errors.New("storage is down")
}

type fixture struct {
	h    *handlers.Handlers
	s    storage.Storage
	auth *mw.AuthMW
	r    chi.Router
}

func newFixture(t *testing.T, s storage.Storage, subnet string) fixture {
	t.Helper()
	cfg := &config.Config{BaseURL: "http://localhost:8080", SecretKey: "k", HashCost: bcrypt.MinCost}
	ts, err := utils.GetCIDR(subnet)
	require.NoError(t, err)
	v, err := views.New()
	require.NoError(t, err)
	auth := mw.NewAuthMW(cfg.SecretKey, s, false, zap.NewNop())
	h := handlers.NewHandlers(cfg, s, auth, v, metrics.New(), zap.NewNop(), ts)

	r := chi.NewRouter()
	r.Use(auth.Identify)
	r.Get("/u/{shortURL}", h.HandlerRedirect)
	r.Get("/urls.json", h.HandlerURLsJSON)
	r.Get("/ping", h.HandlerDBPing)
	r.Get("/api/internal/stats", h.HandlerGetStats)
	r.With(auth.RequireUser).Get("/urls/{id}", h.HandlerShowURL)
	return fixture{h: h, s: s, auth: auth, r: r}
}

func (f fixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	f.r.ServeHTTP(w, req)
	return w
}

func TestHandlerGetStats(t *testing.T) {
	s := primitivestorage.NewStorage()
	require.NoError(t, storage.Seed(context.Background(), s))

	tests := []struct {
		name   string
		subnet string
		realIP string
		want   int
	}{
		{name: "no subnet configured", subnet: "", realIP: "10.0.0.1", want: http.StatusForbidden},
		{name: "ip outside subnet", subnet: "10.0.0.0/8", realIP: "192.168.1.1", want: http.StatusForbidden},
		{name: "no header", subnet: "10.0.0.0/8", realIP: "", want: http.StatusForbidden},
		{name: "trusted", subnet: "10.0.0.0/8", realIP: "10.1.2.3", want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, s, tt.subnet)
			req := httptest.NewRequest(http.MethodGet, "/api/internal/stats", nil)
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			w := f.do(t, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.JSONEq(t, `{"urls":2,"users":0,"visits":0}`, w.Body.String())
			}
		})
	}
}

func TestHandlerDBPing(t *testing.T) {
	ok := newFixture(t, primitivestorage.NewStorage(), "")
	w := ok.do(t, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	broken := newFixture(t, brokenStorage{primitivestorage.NewStorage()}, "")
	w = broken.do(t, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandlerURLsJSON(t *testing.T) {
	s := primitivestorage.NewStorage()
	ctx := context.Background()
	u, err := s.CreateUser(ctx, "a@example.com", "hash")
	require.NoError(t, err)
	l, err := s.CreateLink(ctx, "example.com", u.ID)
	require.NoError(t, err)
	_, err = s.RecordVisit(ctx, l.ShortCode, "v1", true)
	require.NoError(t, err)

	f := newFixture(t, s, "")
	w := f.do(t, httptest.NewRequest(http.MethodGet, "/urls.json", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]handlers.JSONLink
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, map[string]handlers.JSONLink{
		l.ShortCode: {LongURL: "http://example.com", OwnerID: u.ID, TotalVisits: 1, UniqueVisitors: 1},
	}, got)
	// пароли и пользователи не выгружаются
	assert.NotContains(t, w.Body.String(), "hash")
}

func TestHandlerRedirect(t *testing.T) {
	s := primitivestorage.NewStorage()
	require.NoError(t, storage.Seed(context.Background(), s))
	f := newFixture(t, s, "")

	t.Run("first visit gets visitor id", func(t *testing.T) {
		w := f.do(t, httptest.NewRequest(http.MethodGet, "/u/9sm5xK", nil))
		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "http://www.google.com", w.Header().Get("Location"))

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		sess, err := f.auth.ParseToken(cookies[0].Value)
		require.NoError(t, err)
		assert.NotEmpty(t, sess.VisitorID)
		assert.Empty(t, sess.UserID)

		visits, err := s.ListVisits(context.Background(), "9sm5xK")
		require.NoError(t, err)
		require.Len(t, visits, 1)
		assert.Equal(t, sess.VisitorID, visits[0].VisitorID)
	})

	t.Run("known visitor keeps id", func(t *testing.T) {
		token, err := f.auth.BuildNewToken(mw.Session{VisitorID: "known"})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/u/b2xVn2", nil)
		req.AddCookie(&http.Cookie{Name: mw.NameCookie, Value: token})
		w := f.do(t, req)
		require.Equal(t, http.StatusFound, w.Code)
		assert.Empty(t, w.Result().Cookies())

		link, err := s.GetLink(context.Background(), "b2xVn2")
		require.NoError(t, err)
		assert.Equal(t, 1, link.TotalVisits)
		assert.Equal(t, 0, link.UniqueVisitors)
	})

	t.Run("unknown code", func(t *testing.T) {
		w := f.do(t, httptest.NewRequest(http.MethodGet, "/u/absent", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Empty(t, w.Result().Cookies())
	})
}

func TestHandlerShowURLOwnership(t *testing.T) {
	s := primitivestorage.NewStorage()
	ctx := context.Background()
	owner, err := s.CreateUser(ctx, "owner@example.com", "h")
	require.NoError(t, err)
	other, err := s.CreateUser(ctx, "other@example.com", "h")
	require.NoError(t, err)
	l, err := s.CreateLink(ctx, "http://example.com", owner.ID)
	require.NoError(t, err)
	f := newFixture(t, s, "")

	tests := []struct {
		name string
		user entity.User
		code string
		want int
	}{
		{name: "owner", user: owner, code: l.ShortCode, want: http.StatusOK},
		{name: "stranger", user: other, code: l.ShortCode, want: http.StatusForbidden},
		{name: "missing", user: owner, code: "absent", want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := f.auth.BuildNewToken(mw.Session{UserID: tt.user.ID})
			require.NoError(t, err)
			req := httptest.NewRequest(http.MethodGet, "/urls/"+tt.code, nil)
			req.AddCookie(&http.Cookie{Name: mw.NameCookie, Value: token})
			w := f.do(t, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
