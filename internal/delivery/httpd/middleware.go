package httpd

import (
	"context"
	"net/http"

	"github.com/HoangThiencm/autoreport/internal/models"
)

type contextKey string

const schoolContextKey contextKey = "current_school"

// SchoolAuth resolves the X-API-Key header to a school and stores it on the
// request context. A missing or unknown key is not an error here: public
// endpoints stay reachable, and handlers that need a school call
// currentSchool themselves.
func (h *Handler) SchoolAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		school, err := h.schoolService.Authenticate(r.Context(), apiKey)
		if err != nil || school == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), schoolContextKey, school)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func currentSchool(r *http.Request) *models.School {
	school, _ := r.Context().Value(schoolContextKey).(*models.School)
	return school
}
