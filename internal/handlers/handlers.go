// Handlers пакет для функционирования http-обработчиков
package handlers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/SversusN/tinyapp/config"
	"github.com/SversusN/tinyapp/internal/entity"
	"github.com/SversusN/tinyapp/internal/internalerrors"
	"github.com/SversusN/tinyapp/internal/metrics"
	mw "github.com/SversusN/tinyapp/internal/middleware"
	"github.com/SversusN/tinyapp/internal/storage/storage"
	"github.com/SversusN/tinyapp/internal/views"
)

// Handlers тип для внедрения зависимости
type Handlers struct {
	cfg         *config.Config
	s           storage.Storage
	auth        *mw.AuthMW
	views       *views.Views
	metrics     *metrics.Metrics
	log         *zap.Logger
	validate    *validator.Validate
	trustSubnet *net.IPNet
}

// JSONLink элемент выгрузки /urls.json
type JSONLink struct {
	LongURL        string `json:"long_url"`
	OwnerID        string `json:"owner_id,omitempty"`
	TotalVisits    int    `json:"total_visits"`
	UniqueVisitors int    `json:"unique_visitors"`
}

type statsResponse struct {
	URLs   int `json:"urls"`   // количество сокращённых URL в сервисе
	Users  int `json:"users"`  // количество пользователей в сервисе
	Visits int `json:"visits"` // количество переходов
}

// NewHandlers инициализация объекта handlers
func NewHandlers(cfg *config.Config, s storage.Storage, auth *mw.AuthMW, v *views.Views,
	m *metrics.Metrics, log *zap.Logger, ts *net.IPNet) *Handlers {
	return &Handlers{
		cfg:         cfg,
		s:           s,
		auth:        auth,
		views:       v,
		metrics:     m,
		log:         log,
		validate:    validator.New(),
		trustSubnet: ts,
	}
}

// HandlerRoot живой пользователь идет к своим ссылкам, остальные на логин
func (h *Handlers) HandlerRoot(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.currentUser(r); ok {
		http.Redirect(w, r, "/urls", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, mw.LoginPath, http.StatusSeeOther)
}

// HandlerURLsJSON выгрузка всего справочника ссылок.
// Ключи map сериализуются отсортированными, поэтому ответ детерминирован.
func (h *Handlers) HandlerURLsJSON(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.s.Snapshot(r.Context())
	if err != nil {
		h.internalError(w, "snapshot", err)
		return
	}
	resp := make(map[string]JSONLink, len(snapshot))
	for code, l := range snapshot {
		resp[code] = JSONLink{
			LongURL:        l.LongURL,
			OwnerID:        l.OwnerID,
			TotalVisits:    l.TotalVisits,
			UniqueVisitors: l.UniqueVisitors,
		}
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// HandlerDBPing проверяет доступность хранилища
func (h *Handlers) HandlerDBPing(res http.ResponseWriter, req *http.Request) {
	pinger, ok := h.s.(storage.Pinger)
	if !ok {
		http.Error(res, "Storage can not be pinged", http.StatusBadRequest)
		return
	}
	res.Header().Set("Content-Type", "text/plain")
	if err := pinger.Ping(req.Context()); err != nil {
		h.log.Warn("storage ping failed", zap.Error(err))
		res.WriteHeader(http.StatusInternalServerError)
		_, _ = res.Write([]byte("BAD ping"))
		return
	}
	res.WriteHeader(http.StatusOK)
	_, _ = res.Write([]byte("OK ping"))
}

// HandlerGetStats статистика только для доверенной подсети
func (h *Handlers) HandlerGetStats(w http.ResponseWriter, r *http.Request) {
	if h.trustSubnet == nil {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	ip := net.ParseIP(r.Header.Get("X-Real-IP"))
	if ip == nil || !h.trustSubnet.Contains(ip) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	links, users, visits, err := h.s.Stats(r.Context())
	if err != nil {
		h.internalError(w, "stats", err)
		return
	}
	h.writeJSON(w, http.StatusOK, statsResponse{URLs: links, Users: users, Visits: visits})
}

// currentUser пользователь из сессии, если он еще существует
func (h *Handlers) currentUser(r *http.Request) (entity.User, bool) {
	s := mw.SessionFromCtx(r.Context())
	if s.UserID == "" {
		return entity.User{}, false
	}
	u, err := h.s.FindUserByID(r.Context(), s.UserID)
	if err != nil {
		if !errors.Is(err, internalerrors.ErrUserNotFound) {
			h.log.Warn("find current user", zap.Error(err))
		}
		return entity.User{}, false
	}
	return u, true
}

func (h *Handlers) render(w http.ResponseWriter, status int, page string, data views.Page) {
	if err := h.views.Render(w, status, page, data); err != nil {
		h.internalError(w, "render "+page, err)
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		h.internalError(w, "marshal json", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (h *Handlers) internalError(w http.ResponseWriter, op string, err error) {
	h.log.Error(op, zap.Error(err))
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
