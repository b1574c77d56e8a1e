package domain

// Aggregate es la respuesta combinada de los colaboradores de dominio.
// Un fallo local de campo se registra bajo "<campo>_error" sin abortar el
// resto de la respuesta.
type Aggregate map[string]any

// Set registra el valor exitoso de un campo.
func (a Aggregate) Set(field string, value any) {
	a[field] = value
}

// SetError registra el fallo local de un campo como mensaje legible.
func (a Aggregate) SetError(field string, err error) {
	a[field+"_error"] = err.Error()
}

// HasError indica si el campo quedó degradado.
func (a Aggregate) HasError(field string) bool {
	_, ok := a[field+"_error"]
	return ok
}

// HealthReport resume el estado de los colaboradores registrados.
// Healthy es true solo si todos los colaboradores respondieron el probe.
type HealthReport struct {
	Healthy       bool            `json:"healthy"`
	Collaborators map[string]bool `json:"collaborators"`
}
