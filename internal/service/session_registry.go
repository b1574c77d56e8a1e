package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"concierge-llm/internal/domain"
	"concierge-llm/internal/outcome"
	"concierge-llm/internal/repository"
)

// SessionRegistry es la máquina de estados del ciclo de vida conversacional.
// La tabla de sesiones vive en memoria; la durabilidad de los mensajes se
// delega por completo al MessageRepository.
//
// El mutex protege la tabla, no las sesiones individuales: escrituras
// concurrentes sobre la MISMA sesión deben serializarlas los llamadores.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	active   int

	messages repository.MessageRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewSessionRegistry(messages repository.MessageRepository, logger *zap.Logger) *SessionRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRegistry{
		sessions: make(map[string]*domain.Session),
		messages: messages,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// StartConversation registra una sesión nueva en estado active. Si el
// contexto trae "system_message", ese mensaje se persiste de inmediato y
// cuenta en message_count; un fallo de persistencia aborta el alta.
func (r *SessionRegistry) StartConversation(ctx context.Context, sessionContext map[string]string) outcome.Outcome[domain.Session, error] {
	now := r.now()
	session := domain.Session{
		ID:           uuid.NewString(),
		Status:       domain.SessionActive,
		StartedAt:    now,
		LastActivity: now,
	}
	if len(sessionContext) > 0 {
		session.Context = make(map[string]string, len(sessionContext))
		for k, v := range sessionContext {
			session.Context[k] = v
		}
	}

	if systemText := strings.TrimSpace(sessionContext["system_message"]); systemText != "" {
		msg := domain.Message{
			SessionID: session.ID,
			Content:   systemText,
			Role:      domain.RoleSystem,
			CreatedAt: now,
		}
		msg.Normalize()
		if err := msg.Validate(); err != nil {
			return outcome.Failure[domain.Session, error](err)
		}
		if err := r.messages.Save(ctx, msg); err != nil {
			return outcome.Failure[domain.Session, error](
				domain.CollaboratorError("persist initial system message", err))
		}
		session.MessageCount = 1
	}

	r.mu.Lock()
	r.sessions[session.ID] = &session
	r.active++
	r.mu.Unlock()

	r.logger.Info("conversation started", zap.String("session_id", session.ID))
	return outcome.Success[domain.Session, error](session.Clone())
}

// SaveConversation persiste los mensajes secuencialmente, cortando en el
// primer fallo del store: a diferencia del aggregate tolerante del
// orquestador, acá la persistencia es dependencia dura. Con sessionID en
// blanco se inicia una sesión implícita. Solo tras persistir todo se
// actualizan message_count y last_activity.
func (r *SessionRegistry) SaveConversation(ctx context.Context, messages []domain.Message, sessionID string) outcome.Outcome[domain.Session, error] {
	if len(messages) == 0 {
		return outcome.Failure[domain.Session, error](
			domain.ValidationError("message list must not be empty"))
	}

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		started := r.StartConversation(ctx, nil)
		if started.IsError() {
			return started
		}
		sessionID = started.Value().ID
	}

	r.mu.RLock()
	session, ok := r.sessions[sessionID]
	var activeNow bool
	if ok {
		activeNow = session.Active()
	}
	r.mu.RUnlock()

	if !ok {
		return outcome.Failure[domain.Session, error](
			domain.NotFoundError("session %s not found", sessionID))
	}
	if !activeNow {
		return outcome.Failure[domain.Session, error](
			domain.ValidationError("session %s already ended", sessionID))
	}

	prepared := make([]domain.Message, len(messages))
	for i, msg := range messages {
		msg.SessionID = sessionID
		msg.Normalize()
		if err := msg.Validate(); err != nil {
			return outcome.Failure[domain.Session, error](
				domain.ValidationError("message %d malformed: %v", i, err))
		}
		prepared[i] = msg
	}

	for i, msg := range prepared {
		if err := r.messages.Save(ctx, msg); err != nil {
			r.logger.Warn("message persistence failed",
				zap.String("session_id", sessionID), zap.Int("index", i), zap.Error(err))
			return outcome.Failure[domain.Session, error](
				domain.CollaboratorError(fmt.Sprintf("persist message %d", i), err))
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok = r.sessions[sessionID]
	if !ok {
		return outcome.Failure[domain.Session, error](
			domain.NotFoundError("session %s not found", sessionID))
	}
	// La sesión pudo terminar mientras persistíamos sin lock (sweep o End
	// concurrente): una sesión terminal no se muta.
	if !session.Active() {
		return outcome.Failure[domain.Session, error](
			domain.ValidationError("session %s ended during save", sessionID))
	}
	session.MessageCount += len(prepared)
	session.LastActivity = r.now()
	return outcome.Success[domain.Session, error](session.Clone())
}

// GetHistory delega en el message store. Un historial vacío es éxito con
// secuencia vacía, nunca error.
func (r *SessionRegistry) GetHistory(ctx context.Context, sessionID string, limit int) outcome.Outcome[[]domain.Message, error] {
	if strings.TrimSpace(sessionID) == "" {
		return outcome.Failure[[]domain.Message, error](
			domain.ValidationError("session id must not be blank"))
	}

	history, err := r.messages.GetByThread(ctx, sessionID, limit)
	if err != nil {
		return outcome.Failure[[]domain.Message, error](
			domain.CollaboratorError("load history", err))
	}
	if history == nil {
		history = []domain.Message{}
	}
	return outcome.Success[[]domain.Message, error](history)
}

// EndConversation marca la sesión como ended (estado terminal).
func (r *SessionRegistry) EndConversation(ctx context.Context, sessionID string) outcome.Outcome[domain.Session, error] {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return outcome.Failure[domain.Session, error](
			domain.NotFoundError("session %s not found", sessionID))
	}
	if !session.Active() {
		return outcome.Failure[domain.Session, error](
			domain.ValidationError("session %s already ended", sessionID))
	}

	ended := r.now()
	session.Status = domain.SessionEnded
	session.EndedAt = &ended
	r.active--

	r.logger.Info("conversation ended", zap.String("session_id", sessionID))
	return outcome.Success[domain.Session, error](session.Clone())
}

// CleanupInactive termina toda sesión activa cuya last_activity sea anterior
// a now - hoursThreshold y devuelve cuántas terminó.
func (r *SessionRegistry) CleanupInactive(ctx context.Context, hoursThreshold int) outcome.Outcome[int, error] {
	if hoursThreshold <= 0 {
		return outcome.Failure[int, error](
			domain.ValidationError("hours threshold must be positive, got %d", hoursThreshold))
	}

	cutoff := r.now().Add(-time.Duration(hoursThreshold) * time.Hour)

	r.mu.Lock()
	defer r.mu.Unlock()

	endedCount := 0
	for _, session := range r.sessions {
		if !session.Active() || !session.LastActivity.Before(cutoff) {
			continue
		}
		ended := r.now()
		session.Status = domain.SessionEnded
		session.EndedAt = &ended
		r.active--
		endedCount++
	}

	if endedCount > 0 {
		r.logger.Info("inactive sessions swept",
			zap.Int("ended", endedCount), zap.Int("hours_threshold", hoursThreshold))
	}
	return outcome.Success[int, error](endedCount)
}

// GetSessionInfo devuelve un snapshot de la sesión.
func (r *SessionRegistry) GetSessionInfo(sessionID string) outcome.Outcome[domain.Session, error] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return outcome.Failure[domain.Session, error](
			domain.NotFoundError("session %s not found", sessionID))
	}
	return outcome.Success[domain.Session, error](session.Clone())
}

// ActiveSessions devuelve el contador vivo de sesiones activas.
// Invariante: siempre coincide con la cantidad de sesiones status=active.
func (r *SessionRegistry) ActiveSessions() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}
