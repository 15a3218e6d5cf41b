package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
)

// AnonymousUser is used when no API keys are configured.
const AnonymousUser = "anonymous"

// New creates bearer token middleware. A nil map accepts any token, which
// matches OpenAI-compatible inference servers run with a placeholder key.
func New(apiKeyToUserName map[string]string, next http.Handler) *Auth {
	return &Auth{
		Next:             next,
		APIKeyToUserName: apiKeyToUserName,
	}
}

type Auth struct {
	Next             http.Handler
	APIKeyToUserName map[string]string
}

// LoadFromFile reads a JSON object of API key to user name. An empty name
// returns a nil map.
func LoadFromFile(name string) (apiKeyToUserName map[string]string, err error) {
	if name == "" {
		return nil, nil
	}
	f, err := os.OpenFile(name, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m := make(map[string]string)
	if err = json.NewDecoder(f).Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

type userContextKey int

const userKey userContextKey = 0

func GetUser(r *http.Request) (user string, ok bool) {
	user, ok = r.Context().Value(userKey).(string)
	return
}

func (a *Auth) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	user, ok := a.lookup(key)
	if !ok {
		w.Header().Set("WWW-Authenticate", "Bearer")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	r = r.WithContext(context.WithValue(r.Context(), userKey, user))
	a.Next.ServeHTTP(w, r)
}

func (a *Auth) lookup(key string) (user string, ok bool) {
	if key == "" {
		return "", false
	}
	if a.APIKeyToUserName == nil {
		return AnonymousUser, true
	}
	user, ok = a.APIKeyToUserName[key]
	return user, ok
}
