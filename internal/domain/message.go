package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Roles permitidos para un mensaje de conversación.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// MaxMessageLength acota el contenido de un mensaje persistido.
const MaxMessageLength = 4000

// Message es un turno de conversación. Content nunca es vacío ni supera
// MaxMessageLength una vez validado; ID se deriva determinísticamente del
// contenido cuando no viene dado.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	ParentID  string    `json:"parent_id,omitempty"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Normalize recorta campos, fija timestamp y deriva el ID si falta.
// No valida: ver Validate.
func (m *Message) Normalize() {
	m.ID = strings.TrimSpace(m.ID)
	m.SessionID = strings.TrimSpace(m.SessionID)
	m.ParentID = strings.TrimSpace(m.ParentID)
	m.Role = strings.TrimSpace(strings.ToLower(m.Role))
	m.Content = strings.TrimSpace(m.Content)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.ID == "" {
		m.ID = DeriveMessageID(m.Role, m.Content, m.CreatedAt)
	}
}

// DeriveMessageID genera un identificador estable para el mismo rol,
// contenido y timestamp.
func DeriveMessageID(role, content string, at time.Time) string {
	seed := fmt.Sprintf("%s|%s|%d", role, content, at.UnixNano())
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String()
}

// Validate devuelve un ValidationError si el mensaje está malformado.
func (m Message) Validate() error {
	if strings.TrimSpace(m.Content) == "" {
		return ValidationError("message content must not be empty")
	}
	if len(m.Content) > MaxMessageLength {
		return ValidationError("message content exceeds %d characters", MaxMessageLength)
	}
	switch m.Role {
	case RoleUser, RoleAssistant, RoleSystem, RoleTool:
		return nil
	default:
		return ValidationError("invalid message role: %q", m.Role)
	}
}
