package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

const (
	defaultCookieName = "recipe_hub_session"
	defaultCookiePath = "/"
	defaultLifetime   = 12 * time.Hour
)

// Data is the per-browser state kept outside the synchronized document: the
// remembered document identifier, the subscription acknowledgement, and the
// admin login flag.
type Data struct {
	GistID     string    `json:"gistId,omitempty"`
	Subscribed bool      `json:"subscribed,omitempty"`
	LoggedIn   bool      `json:"loggedIn,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Store abstracts session persistence so handlers depend on get/set semantics
// rather than on cookie mechanics.
type Store interface {
	Get(r *http.Request) Data
	Save(w http.ResponseWriter, data Data)
	Clear(w http.ResponseWriter)
}

// Config controls cookie encoding and lifecycle limits for the session manager.
type Config struct {
	CookieName   string
	HashKey      []byte
	BlockKey     []byte
	CookiePath   string
	CookieSecure bool
	Lifetime     time.Duration
	Now          func() time.Time
}

// Manager persists session state via signed (and optionally encrypted)
// cookies.
type Manager struct {
	cfg   Config
	codec *securecookie.SecureCookie
	now   func() time.Time
}

var _ Store = (*Manager)(nil)

// NewManager constructs a Manager using the provided configuration.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.HashKey) == 0 {
		return nil, fmt.Errorf("session: hash key is required")
	}
	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookieName
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = defaultCookiePath
	}
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = defaultLifetime
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	codec := securecookie.New(cfg.HashKey, cfg.BlockKey)
	codec.MaxAge(int(cfg.Lifetime / time.Second))

	return &Manager{
		cfg:   cfg,
		codec: codec,
		now:   func() time.Time { return now().UTC() },
	}, nil
}

// Get decodes the session cookie. A missing, invalid or expired cookie yields
// a zero-value session rather than an error: the bridge degrades to defaults.
func (m *Manager) Get(r *http.Request) Data {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil {
		return Data{}
	}

	var data Data
	if err := m.codec.Decode(m.cfg.CookieName, cookie.Value, &data); err != nil {
		return Data{}
	}
	if !data.CreatedAt.IsZero() && m.now().After(data.CreatedAt.Add(m.cfg.Lifetime)) {
		return Data{}
	}
	return data
}

// Save encodes the session state into the response cookie.
func (m *Manager) Save(w http.ResponseWriter, data Data) {
	if data.CreatedAt.IsZero() {
		data.CreatedAt = m.now()
	}

	encoded, err := m.codec.Encode(m.cfg.CookieName, data)
	if err != nil {
		// Encoding only fails on codec misconfiguration; drop the write.
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    encoded,
		Path:     m.cfg.CookiePath,
		MaxAge:   int(m.cfg.Lifetime / time.Second),
		HttpOnly: true,
		Secure:   m.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     m.cfg.CookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
