// Package session persists the device's signed-in identity. The gateway
// takes the session as an explicit token source, so no component reads
// authentication state from anywhere ambient.
package session

import (
	"encoding/json/v2"
	"fmt"
	"log/slog"
)

const sessionKey = "session:current"

// KV is the raw persistence the manager runs on.
type KV interface {
	Read(key string) ([]byte, bool, error)
	Write(key string, value []byte) error
}

// Session is the persisted device identity.
type Session struct {
	Token   string `json:"token"`
	OwnerID string `json:"owner_id"`
}

// Manager loads and stores the device session.
type Manager struct {
	kv     KV
	logger *slog.Logger
}

// NewManager creates a session manager over the given persistence.
func NewManager(kv KV, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{kv: kv, logger: logger.With("component", "session")}
}

// Current returns the persisted session. The second return reports whether
// a session exists; corrupt data reads as signed out.
func (m *Manager) Current() (Session, bool) {
	data, ok, err := m.kv.Read(sessionKey)
	if err != nil {
		m.logger.Warn("session read failed", "error", err)
		return Session{}, false
	}
	if !ok {
		return Session{}, false
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		m.logger.Warn("session data corrupt", "error", err)
		return Session{}, false
	}
	if sess.Token == "" || sess.OwnerID == "" {
		return Session{}, false
	}
	return sess, true
}

// Save persists a signed-in session.
func (m *Manager) Save(token, ownerID string) error {
	data, err := json.Marshal(Session{Token: token, OwnerID: ownerID})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := m.kv.Write(sessionKey, data); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// Clear signs the device out. Clearing an absent session is fine.
func (m *Manager) Clear() error {
	if err := m.kv.Write(sessionKey, []byte("{}")); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Token returns the bearer token for authenticated backend calls, or ""
// when signed out.
func (m *Manager) Token() string {
	sess, ok := m.Current()
	if !ok {
		return ""
	}
	return sess.Token
}

// OwnerID returns the signed-in owner's ID, or "" when signed out.
func (m *Manager) OwnerID() string {
	sess, ok := m.Current()
	if !ok {
		return ""
	}
	return sess.OwnerID
}
