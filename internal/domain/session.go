package domain

import "time"

// Estados del ciclo de vida de una sesión. Ended es terminal.
const (
	SessionActive = "active"
	SessionEnded  = "ended"
)

// Session es un contexto conversacional acotado. MessageCount nunca
// decrece mientras la sesión está activa; la durabilidad de los mensajes
// vive en el message store, no acá.
type Session struct {
	ID           string            `json:"id"`
	Status       string            `json:"status"`
	StartedAt    time.Time         `json:"started_at"`
	LastActivity time.Time         `json:"last_activity"`
	EndedAt      *time.Time        `json:"ended_at,omitempty"`
	MessageCount int               `json:"message_count"`
	Context      map[string]string `json:"context,omitempty"`
}

// Active indica si la sesión sigue aceptando escrituras.
func (s Session) Active() bool {
	return s.Status == SessionActive
}

// Clone devuelve una copia profunda para exponer snapshots sin compartir
// el mapa de contexto interno.
func (s Session) Clone() Session {
	out := s
	if s.Context != nil {
		out.Context = make(map[string]string, len(s.Context))
		for k, v := range s.Context {
			out.Context[k] = v
		}
	}
	if s.EndedAt != nil {
		ended := *s.EndedAt
		out.EndedAt = &ended
	}
	return out
}
