package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/SversusN/tinyapp/internal/internalerrors"
	mw "github.com/SversusN/tinyapp/internal/middleware"
	"github.com/SversusN/tinyapp/internal/views"
)

// LoginForm поля формы входа
type LoginForm struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// RegisterForm поля формы регистрации, подтверждение пароля необязательно
type RegisterForm struct {
	Email                string `validate:"required"`
	Password             string `validate:"required"`
	PasswordConfirmation string `validate:"omitempty,eqfield=Password"`
}

// HandlerLoginPage форма входа
func (h *Handlers) HandlerLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.currentUser(r); ok {
		http.Redirect(w, r, "/urls", http.StatusSeeOther)
		return
	}
	h.render(w, http.StatusOK, views.PageLogin, views.Page{})
}

// HandlerRegisterPage форма регистрации
func (h *Handlers) HandlerRegisterPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.currentUser(r); ok {
		http.Redirect(w, r, "/urls", http.StatusSeeOther)
		return
	}
	h.render(w, http.StatusOK, views.PageRegister, views.Page{})
}

// HandlerLogin проверка пароля. Хеш сравнивается вне блокировки хранилища.
func (h *Handlers) HandlerLogin(w http.ResponseWriter, r *http.Request) {
	form := LoginForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	if err := h.validate.Struct(form); err != nil {
		h.metrics.Logins.WithLabelValues("failed").Inc()
		http.Error(w, internalerrors.ErrBadCredentials.Error(), http.StatusForbidden)
		return
	}
	user, err := h.s.FindUserByEmail(r.Context(), form.Email)
	switch {
	case errors.Is(err, internalerrors.ErrUserNotFound):
		h.metrics.Logins.WithLabelValues("failed").Inc()
		http.Error(w, internalerrors.ErrBadCredentials.Error(), http.StatusForbidden)
		return
	case err != nil:
		h.internalError(w, "find user by email", err)
		return
	}
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(form.Password))
	switch {
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		h.metrics.Logins.WithLabelValues("failed").Inc()
		http.Error(w, internalerrors.ErrBadCredentials.Error(), http.StatusForbidden)
		return
	case err != nil:
		h.internalError(w, "compare password hash", err)
		return
	}
	s := mw.SessionFromCtx(r.Context())
	s.UserID = user.ID
	if err := h.auth.SetSession(w, s); err != nil {
		h.internalError(w, "set session", err)
		return
	}
	h.metrics.Logins.WithLabelValues("ok").Inc()
	h.log.Info("user logged in", zap.String("user_id", user.ID))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandlerRegister создание пользователя и сразу вход
func (h *Handlers) HandlerRegister(w http.ResponseWriter, r *http.Request) {
	form := RegisterForm{
		Email:                r.PostFormValue("email"),
		Password:             r.PostFormValue("password"),
		PasswordConfirmation: r.PostFormValue("password_confirmation"),
	}
	if err := h.validate.Struct(form); err != nil {
		h.metrics.Registrations.WithLabelValues("invalid").Inc()
		http.Error(w, "Email and password are required and must match confirmation", http.StatusBadRequest)
		return
	}
	// дешевая проверка до дорогого хеширования, окончательно решает CreateUser
	if _, err := h.s.FindUserByEmail(r.Context(), form.Email); err == nil {
		h.metrics.Registrations.WithLabelValues("duplicate").Inc()
		http.Error(w, internalerrors.ErrEmailTaken.Error(), http.StatusBadRequest)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), h.cfg.HashCost)
	if err != nil {
		h.internalError(w, "hash password", err)
		return
	}
	user, err := h.s.CreateUser(r.Context(), form.Email, string(hash))
	switch {
	case errors.Is(err, internalerrors.ErrEmailTaken):
		h.metrics.Registrations.WithLabelValues("duplicate").Inc()
		http.Error(w, internalerrors.ErrEmailTaken.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, internalerrors.ErrEmptyCredentials):
		h.metrics.Registrations.WithLabelValues("invalid").Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.internalError(w, "create user", err)
		return
	}
	s := mw.SessionFromCtx(r.Context())
	s.UserID = user.ID
	if err := h.auth.SetSession(w, s); err != nil {
		h.internalError(w, "set session", err)
		return
	}
	h.metrics.Registrations.WithLabelValues("ok").Inc()
	h.log.Info("user registered", zap.String("user_id", user.ID))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandlerLogout сессия стирается полностью
func (h *Handlers) HandlerLogout(w http.ResponseWriter, r *http.Request) {
	h.auth.ClearSession(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
