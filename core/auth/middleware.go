package auth

import (
	"crypto/subtle"
	"html/template"
	"net/http"
	"strings"

	"github.com/gorilla/securecookie"
)

const (
	apiKeyCookieName = "api_key"
)

// Guard protects the web shell with a single shared API key.
type Guard struct {
	apiKey        string
	cookieHandler *securecookie.SecureCookie
}

func NewGuard(apiKey string) *Guard {
	return &Guard{
		apiKey: apiKey,
		cookieHandler: securecookie.New(
			securecookie.GenerateRandomKey(64),
			securecookie.GenerateRandomKey(32),
		),
	}
}

// Enabled reports whether an API key is configured.
func (g *Guard) Enabled() bool {
	return g.apiKey != ""
}

func (g *Guard) ValidateAPIKey(apiKey string) bool {
	return subtle.ConstantTimeCompare([]byte(apiKey), []byte(g.apiKey)) == 1
}

func (g *Guard) SetAPICookie(w http.ResponseWriter, r *http.Request, apiKey string) {
	value := map[string]string{
		"api_key": apiKey,
	}
	encoded, err := g.cookieHandler.Encode(apiKeyCookieName, value)
	if err != nil {
		return
	}

	cookie := &http.Cookie{
		Name:     apiKeyCookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   3600 * 24 * 7, // 7 days
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	}
	http.SetCookie(w, cookie)
}

func (g *Guard) GetAPICookie(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(apiKeyCookieName)
	if err != nil {
		return "", false
	}

	value := make(map[string]string)
	err = g.cookieHandler.Decode(apiKeyCookieName, cookie.Value, &value)
	if err != nil {
		return "", false
	}

	apiKey, exists := value["api_key"]
	return apiKey, exists
}

func (g *Guard) Middleware(tmpl *template.Template, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		// Skip authentication for static assets and health check
		if strings.HasPrefix(r.URL.Path, "/assets/") || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		if r.URL.Path == "/auth" && r.Method == http.MethodPost {
			apiKey := r.FormValue("api_key")
			if g.ValidateAPIKey(apiKey) {
				g.SetAPICookie(w, r, apiKey)
			}
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		apiKey, exists := g.GetAPICookie(r)
		if !exists || !g.ValidateAPIKey(apiKey) {
			w.WriteHeader(http.StatusUnauthorized)
			tmpl.ExecuteTemplate(w, "login.go.html", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}
