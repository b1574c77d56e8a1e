package domain

import (
	"errors"
	"fmt"
)

// ErrorKind clasifica los fallos esperados del núcleo.
type ErrorKind int

const (
	ErrKindValidation ErrorKind = iota + 1
	ErrKindNotFound
	ErrKindCollaborator
	ErrKindParse
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindValidation:
		return "validation"
	case ErrKindNotFound:
		return "not_found"
	case ErrKindCollaborator:
		return "collaborator"
	case ErrKindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Error es el error tipado del núcleo. Compatible con errors.As/Is para que
// los llamadores puedan ramificar por Kind sin inspeccionar strings.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// ValidationError señala input con forma, largo o formato inválido.
func ValidationError(format string, args ...any) *Error {
	return &Error{Kind: ErrKindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError señala una entidad o sesión desconocida.
func NotFoundError(format string, args ...any) *Error {
	return &Error{Kind: ErrKindNotFound, Message: fmt.Sprintf(format, args...)}
}

// CollaboratorError envuelve el fallo de una llamada downstream.
func CollaboratorError(message string, cause error) *Error {
	return &Error{Kind: ErrKindCollaborator, Message: message, cause: cause}
}

// ParseError señala una respuesta estructurada imposible de parsear.
// Siempre se recupera localmente; nunca debe cruzar el borde del servicio.
func ParseError(message string, cause error) *Error {
	return &Error{Kind: ErrKindParse, Message: message, cause: cause}
}

// KindOf devuelve el ErrorKind de err, o 0 si no es un *Error del núcleo.
func KindOf(err error) ErrorKind {
	var coreErr *Error
	if errors.As(err, &coreErr) {
		return coreErr.Kind
	}
	return 0
}
