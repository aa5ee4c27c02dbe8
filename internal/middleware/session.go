package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// SessionData is the state kept in the signed session cookie.
type SessionData struct {
	ID        string    `json:"id"`
	Locale    string    `json:"locale,omitempty"`
	Flash     []string  `json:"flash,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	dirty bool
}

// MarkDirty schedules the cookie to be rewritten.
func (s *SessionData) MarkDirty() {
	s.dirty = true
	s.UpdatedAt = time.Now().UTC()
}

// AddFlash queues a one-shot notice, identified by its i18n key, for the next page.
func (s *SessionData) AddFlash(key string) {
	for _, f := range s.Flash {
		if f == key {
			return
		}
	}
	s.Flash = append(s.Flash, key)
	s.MarkDirty()
}

// PopFlash returns and clears the queued notices.
func (s *SessionData) PopFlash() []string {
	if len(s.Flash) == 0 {
		return nil
	}
	out := s.Flash
	s.Flash = nil
	s.MarkDirty()
	return out
}

// SessionOptions configures Sessions.
type SessionOptions struct {
	CookieName string
	Secret     []byte
	Secure     bool
	TTL        time.Duration
}

// Sessions reads and writes the HMAC-signed session cookie.
type Sessions struct {
	opts SessionOptions
}

// NewSessions returns a session manager. Empty names and TTLs get defaults.
func NewSessions(opts SessionOptions) *Sessions {
	if opts.CookieName == "" {
		opts.CookieName = "macho_session"
	}
	if opts.TTL <= 0 {
		opts.TTL = 30 * 24 * time.Hour
	}
	return &Sessions{opts: opts}
}

// Middleware loads the session into the request context and persists it, when
// changed, just before the response header is written.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sd, fromCookie := s.read(r)
		if sd.ID == "" {
			now := time.Now().UTC()
			sd = &SessionData{ID: ulid.Make().String(), CreatedAt: now, UpdatedAt: now, dirty: true}
		}
		persist := func(w http.ResponseWriter) {
			if sd.dirty || !fromCookie {
				s.write(w, sd)
			}
		}
		hw := &hookWriter{ResponseWriter: w, before: persist}
		next.ServeHTTP(hw, r.WithContext(context.WithValue(r.Context(), ctxKeySession, sd)))
		if !hw.wrote {
			persist(w)
		}
	})
}

// GetSession returns the request's session. Outside the middleware it returns a
// detached empty session.
func GetSession(r *http.Request) *SessionData {
	if sd, ok := r.Context().Value(ctxKeySession).(*SessionData); ok && sd != nil {
		return sd
	}
	return &SessionData{}
}

func (s *Sessions) read(r *http.Request) (*SessionData, bool) {
	c, err := r.Cookie(s.opts.CookieName)
	if err != nil || c.Value == "" {
		return &SessionData{}, false
	}
	payloadPart, sigPart, ok := strings.Cut(c.Value, ".")
	if !ok {
		return &SessionData{}, false
	}
	payload, err := base64.RawURLEncoding.DecodeString(payloadPart)
	if err != nil {
		return &SessionData{}, false
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigPart)
	if err != nil || !hmac.Equal(sig, s.sign(payload)) {
		return &SessionData{}, false
	}
	var sd SessionData
	if err := json.Unmarshal(payload, &sd); err != nil {
		return &SessionData{}, false
	}
	if _, err := ulid.ParseStrict(sd.ID); err != nil {
		return &SessionData{}, false
	}
	return &sd, true
}

func (s *Sessions) write(w http.ResponseWriter, sd *SessionData) {
	payload, err := json.Marshal(sd)
	if err != nil {
		return
	}
	value := base64.RawURLEncoding.EncodeToString(payload) + "." + base64.RawURLEncoding.EncodeToString(s.sign(payload))
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.opts.TTL / time.Second),
	})
	sd.dirty = false
}

func (s *Sessions) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, s.opts.Secret)
	mac.Write(payload)
	return mac.Sum(nil)
}
