package outcome

// Outcome representa exactamente uno de dos estados: éxito con valor o error.
// Inmutable una vez construido; el estado se fija en el constructor.
type Outcome[T, E any] struct {
	value T
	err   E
	ok    bool
}

// Success construye un Outcome en estado de éxito.
func Success[T, E any](value T) Outcome[T, E] {
	return Outcome[T, E]{value: value, ok: true}
}

// Failure construye un Outcome en estado de error.
func Failure[T, E any](err E) Outcome[T, E] {
	return Outcome[T, E]{err: err}
}

// IsSuccess indica si el Outcome está en estado de éxito.
func (o Outcome[T, E]) IsSuccess() bool {
	return o.ok
}

// IsError indica si el Outcome está en estado de error.
// Siempre es el complemento exacto de IsSuccess.
func (o Outcome[T, E]) IsError() bool {
	return !o.ok
}

// Value devuelve el valor de éxito; es el cero de T si el Outcome es error.
func (o Outcome[T, E]) Value() T {
	return o.value
}

// Err devuelve el valor de error; es el cero de E si el Outcome es éxito.
func (o Outcome[T, E]) Err() E {
	return o.err
}

// Map transforma solo el valor de éxito. Sobre un error, f nunca se invoca
// y el error se propaga sin cambios.
func Map[T, U, E any](o Outcome[T, E], f func(T) U) Outcome[U, E] {
	if o.IsError() {
		return Failure[U, E](o.err)
	}
	return Success[U, E](f(o.value))
}

// Bind encadena una función que devuelve otro Outcome. Sobre un error
// existente, f nunca se invoca: este es el corto-circuito railway.
func Bind[T, U, E any](o Outcome[T, E], f func(T) Outcome[U, E]) Outcome[U, E] {
	if o.IsError() {
		return Failure[U, E](o.err)
	}
	return f(o.value)
}

// MapError transforma solo el valor de error. Sobre un éxito, f nunca se
// invoca y el valor se propaga sin cambios.
func MapError[T, E, F any](o Outcome[T, E], f func(E) F) Outcome[T, F] {
	if o.IsSuccess() {
		return Success[T, F](o.value)
	}
	return Failure[T, F](f(o.err))
}
