package pipeline

import (
	"context"

	"concierge-llm/internal/outcome"
)

// Step es un paso asíncrono T -> U que suspende en ctx. Los combinadores no
// agregan suspensión propia: solo secuencian pasos ya suspendibles.
type Step[T, U, E any] func(context.Context, T) outcome.Outcome[U, E]

// Then compone dos Steps en secuencia estricta. Si el primero devuelve
// error, el segundo nunca se invoca.
//
// Los panics dentro de un Step NO se recuperan aquí: cada operación hoja es
// responsable de convertir sus fallos en Outcome de error.
func Then[T, U, V, E any](first Step[T, U, E], next Step[U, V, E]) Step[T, V, E] {
	return func(ctx context.Context, input T) outcome.Outcome[V, E] {
		out := first(ctx, input)
		if out.IsError() {
			return outcome.Failure[V, E](out.Err())
		}
		return next(ctx, out.Value())
	}
}

// Lift envuelve una función que devuelve un valor plano como Step que
// siempre tiene éxito.
func Lift[T, U, E any](f func(context.Context, T) U) Step[T, U, E] {
	return func(ctx context.Context, input T) outcome.Outcome[U, E] {
		return outcome.Success[U, E](f(ctx, input))
	}
}

// FromFunc envuelve una función Go convencional (valor, error) como Step,
// mapeando el error devuelto al carril de error.
func FromFunc[T, U any](f func(context.Context, T) (U, error)) Step[T, U, error] {
	return func(ctx context.Context, input T) outcome.Outcome[U, error] {
		value, err := f(ctx, input)
		if err != nil {
			return outcome.Failure[U, error](err)
		}
		return outcome.Success[U, error](value)
	}
}
