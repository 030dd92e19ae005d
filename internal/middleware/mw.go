package middleware

import (
	"net/http"
	"strings"
)

// MethodOverrideField скрытое поле HTML формы с настоящим методом
const MethodOverrideField = "_method"

// MethodOverride HTML формы умеют только GET и POST,
// поэтому PUT и DELETE приходят POST-ом с полем _method.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			method := strings.ToUpper(r.PostFormValue(MethodOverrideField))
			switch method {
			case http.MethodPut, http.MethodPatch, http.MethodDelete:
				r.Method = method
			}
		}
		next.ServeHTTP(w, r)
	})
}
