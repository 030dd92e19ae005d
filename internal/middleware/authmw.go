package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/SversusN/tinyapp/internal/entity"
	"github.com/SversusN/tinyapp/internal/internalerrors"
	"github.com/SversusN/tinyapp/internal/pkg/utils"
)

const (
	TokenExp   = time.Hour * 24 //Время жизни токена
	NameCookie = "session"      // наименование куки в запросе
	LoginPath  = "/login"       // куда отправлять при протухшей сессии

	CtxSession ctxKey = "session" // данные сессии из куки
	CtxUser    ctxKey = "user"    // пользователь, найденный в хранилище
)

type ctxKey string

// Claims тип для указания UserID и VisitorID
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id,omitempty"`
	VisitorID string `json:"visitor_id,omitempty"`
}

// Session то, что клиент хранит у себя. Серверной записи нет,
// пользователь заново проверяется по хранилищу на каждом запросе.
type Session struct {
	UserID    string
	VisitorID string
}

// UserFinder нужен гейту для проверки, что пользователь еще существует
type UserFinder interface {
	FindUserByID(ctx context.Context, id string) (entity.User, error)
}

// AuthMW структура middleware авторизации
type AuthMW struct {
	secret []byte
	users  UserFinder
	secure bool
	log    *zap.Logger
}

// NewAuthMW конструктор объекта авторизации
func NewAuthMW(secret string, users UserFinder, secure bool, log *zap.Logger) *AuthMW {
	return &AuthMW{secret: []byte(secret), users: users, secure: secure, log: log}
}

// BuildNewToken функция генерации токена
func (a *AuthMW) BuildNewToken(s Session) (string, error) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenExp)),
	},
		UserID:    s.UserID,
		VisitorID: s.VisitorID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	stringToken, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}
	return stringToken, nil
}

// ParseToken получение сессии из токена
func (a *AuthMW) ParseToken(tokenString string) (Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return a.secret, nil
		})
	if err != nil {
		return Session{}, fmt.Errorf("error parsing token: %w", err)
	}
	if !token.Valid {
		return Session{}, errors.New("invalid token")
	}
	return Session{UserID: claims.UserID, VisitorID: claims.VisitorID}, nil
}

// SetSession выдает клиенту подписанную куку
func (a *AuthMW) SetSession(w http.ResponseWriter, s Session) error {
	token, err := a.BuildNewToken(s)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     NameCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(TokenExp),
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearSession стирает куку целиком, вместе с ИД посетителя
func (a *AuthMW) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     NameCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Identify читает куку на каждом запросе и кладет сессию в контекст.
// Битый или просроченный токен считается отсутствующим.
func (a *AuthMW) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(NameCookie)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		s, err := a.ParseToken(cookie.Value)
		if err != nil {
			a.log.Debug("drop bad session cookie", zap.Error(err))
			a.ClearSession(w)
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), CtxSession, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser гейт для /urls*: нужен живой пользователь.
// Если пользователя уже нет, сессия сбрасывается и клиент уходит на /login.
func (a *AuthMW) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := SessionFromCtx(r.Context())
		if s.UserID == "" {
			http.Error(w, "Please log in first", http.StatusUnauthorized)
			return
		}
		user, err := a.users.FindUserByID(r.Context(), s.UserID)
		switch {
		case errors.Is(err, internalerrors.ErrUserNotFound):
			a.ClearSession(w)
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		case err != nil:
			a.log.Error("find session user", zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		ctx := context.WithValue(r.Context(), CtxUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromCtx сессия запроса, пустая если куки нет
func SessionFromCtx(ctx context.Context) Session {
	s, err := utils.ValueFromCtx[Session](ctx, CtxSession)
	if err != nil {
		return Session{}
	}
	return s
}

// UserFromCtx пользователь, положенный гейтом RequireUser
func UserFromCtx(ctx context.Context) (entity.User, error) {
	return utils.ValueFromCtx[entity.User](ctx, CtxUser)
}
