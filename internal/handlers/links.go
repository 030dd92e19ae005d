package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/SversusN/tinyapp/internal/access"
	"github.com/SversusN/tinyapp/internal/entity"
	"github.com/SversusN/tinyapp/internal/internalerrors"
	mw "github.com/SversusN/tinyapp/internal/middleware"
	"github.com/SversusN/tinyapp/internal/pkg/utils"
	"github.com/SversusN/tinyapp/internal/views"
)

// LinkForm поле формы создания и изменения ссылки
type LinkForm struct {
	LongURL string `validate:"required"`
}

// HandlerNewURLPage форма создания ссылки
func (h *Handlers) HandlerNewURLPage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.gateUser(w, r)
	if !ok {
		return
	}
	h.render(w, http.StatusOK, views.PageNew, views.Page{User: &user})
}

// HandlerCreateURL новая ссылка текущего пользователя
func (h *Handlers) HandlerCreateURL(w http.ResponseWriter, r *http.Request) {
	user, ok := h.gateUser(w, r)
	if !ok {
		return
	}
	longURL, ok := h.parseLinkForm(w, r)
	if !ok {
		return
	}
	link, err := h.s.CreateLink(r.Context(), longURL, user.ID)
	switch {
	case errors.Is(err, internalerrors.ErrEmptyURL):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.internalError(w, "create link", err)
		return
	}
	h.metrics.LinksCreated.Inc()
	h.log.Debug("link created", zap.String("short_code", link.ShortCode), zap.String("user_id", user.ID))
	http.Redirect(w, r, "/urls", http.StatusSeeOther)
}

// HandlerListURLs ссылки текущего пользователя
func (h *Handlers) HandlerListURLs(w http.ResponseWriter, r *http.Request) {
	user, ok := h.gateUser(w, r)
	if !ok {
		return
	}
	links, err := h.s.ListLinksForOwner(r.Context(), user.ID)
	if err != nil {
		h.internalError(w, "list links", err)
		return
	}
	h.render(w, http.StatusOK, views.PageIndex, views.Page{User: &user, Links: links, BaseURL: h.cfg.BaseURL})
}

// HandlerShowURL карточка ссылки со счетчиками и журналом
func (h *Handlers) HandlerShowURL(w http.ResponseWriter, r *http.Request) {
	user, ok := h.gateUser(w, r)
	if !ok {
		return
	}
	link, ok := h.ownedLink(w, r, user)
	if !ok {
		return
	}
	visits, err := h.s.ListVisits(r.Context(), link.ShortCode)
	if err != nil {
		h.internalError(w, "list visits", err)
		return
	}
	h.render(w, http.StatusOK, views.PageShow, views.Page{User: &user, Link: link, Visits: visits, BaseURL: h.cfg.BaseURL})
}

// HandlerUpdateURL смена оригинальной ссылки владельцем
func (h *Handlers) HandlerUpdateURL(w http.ResponseWriter, r *http.Request) {
	user, ok := h.gateUser(w, r)
	if !ok {
		return
	}
	link, ok := h.ownedLink(w, r, user)
	if !ok {
		return
	}
	longURL, ok := h.parseLinkForm(w, r)
	if !ok {
		return
	}
	err := h.s.UpdateLink(r.Context(), link.ShortCode, user.ID, longURL)
	switch {
	case errors.Is(err, internalerrors.ErrNotFound):
		// успели удалить между проверкой и изменением
		http.Error(w, "Short URL not found", http.StatusNotFound)
		return
	case errors.Is(err, internalerrors.ErrEmptyURL):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.internalError(w, "update link", err)
		return
	}
	http.Redirect(w, r, "/urls", http.StatusSeeOther)
}

// HandlerDeleteURL удаление. Отсутствующая ссылка не ошибка, чужая - 403.
func (h *Handlers) HandlerDeleteURL(w http.ResponseWriter, r *http.Request) {
	user, ok := h.gateUser(w, r)
	if !ok {
		return
	}
	code := chi.URLParam(r, "id")
	link, err := h.s.GetLink(r.Context(), code)
	switch {
	case errors.Is(err, internalerrors.ErrNotFound):
	case err != nil:
		h.internalError(w, "get link", err)
		return
	default:
		if err := access.Authorize(user.ID, link); err != nil {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
	}
	if err := h.s.DeleteLink(r.Context(), code, user.ID); err != nil {
		h.internalError(w, "delete link", err)
		return
	}
	http.Redirect(w, r, "/urls", http.StatusSeeOther)
}

// HandlerRedirect переход по короткой ссылке с записью в журнал.
// Клиенту без ИД посетителя выдается новый, и он считается уникальным.
func (h *Handlers) HandlerRedirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "shortURL")
	s := mw.SessionFromCtx(r.Context())
	firstVisit := s.VisitorID == ""
	if firstVisit {
		s.VisitorID = utils.GenerateVisitorID()
	}
	link, err := h.s.RecordVisit(r.Context(), code, s.VisitorID, firstVisit)
	switch {
	case errors.Is(err, internalerrors.ErrNotFound):
		h.metrics.Redirects.WithLabelValues("not_found").Inc()
		http.Error(w, "Short URL not found", http.StatusNotFound)
		return
	case err != nil:
		h.internalError(w, "record visit", err)
		return
	}
	if firstVisit {
		if err := h.auth.SetSession(w, s); err != nil {
			// переход важнее счетчика, просто не запомним посетителя
			h.log.Warn("set visitor session", zap.Error(err))
		}
	}
	h.metrics.Redirects.WithLabelValues("found").Inc()
	http.Redirect(w, r, link.LongURL, http.StatusFound)
}

// gateUser пользователь, положенный в контекст гейтом RequireUser
func (h *Handlers) gateUser(w http.ResponseWriter, r *http.Request) (entity.User, bool) {
	user, err := mw.UserFromCtx(r.Context())
	if err != nil {
		http.Error(w, internalerrors.ErrUnauthenticated.Error(), http.StatusUnauthorized)
		return entity.User{}, false
	}
	return user, true
}

// ownedLink 404 если ссылки нет, 403 если она чужая
func (h *Handlers) ownedLink(w http.ResponseWriter, r *http.Request, user entity.User) (entity.Link, bool) {
	link, err := h.s.GetLink(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, internalerrors.ErrNotFound):
		http.Error(w, "Short URL not found", http.StatusNotFound)
		return entity.Link{}, false
	case err != nil:
		h.internalError(w, "get link", err)
		return entity.Link{}, false
	}
	if err := access.Authorize(user.ID, link); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return entity.Link{}, false
	}
	return link, true
}

func (h *Handlers) parseLinkForm(w http.ResponseWriter, r *http.Request) (string, bool) {
	form := LinkForm{LongURL: r.PostFormValue("longURL")}
	if err := h.validate.Struct(form); err != nil {
		http.Error(w, "longURL is required", http.StatusBadRequest)
		return "", false
	}
	return form.LongURL, true
}
