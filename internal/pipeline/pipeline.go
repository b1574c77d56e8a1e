package pipeline

import "concierge-llm/internal/outcome"

// Stage es un paso síncrono de validación o transformación sobre T.
type Stage[T, E any] func(T) outcome.Outcome[T, E]

// Validate construye un Stage que deja pasar el input cuando pred se cumple
// y devuelve errValue cuando no.
func Validate[T, E any](pred func(T) bool, errValue E) Stage[T, E] {
	return func(input T) outcome.Outcome[T, E] {
		if pred(input) {
			return outcome.Success[T, E](input)
		}
		return outcome.Failure[T, E](errValue)
	}
}

// Chain pliega el input a través de los stages en orden vía Bind.
// El primer stage que devuelva error corta la ejecución de los siguientes.
func Chain[T, E any](stages ...Stage[T, E]) Stage[T, E] {
	return func(input T) outcome.Outcome[T, E] {
		out := outcome.Success[T, E](input)
		for _, stage := range stages {
			out = outcome.Bind(out, stage)
		}
		return out
	}
}
