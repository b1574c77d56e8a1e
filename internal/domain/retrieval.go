package domain

import "strings"

// DefaultRetrievalQuery se usa cuando ni el modelo ni el fallback producen
// un query utilizable.
const DefaultRetrievalQuery = "general conversation context"

// RetrievalDecision es el veredicto del modelo sobre qué buscar antes de
// responder. Se construye desde un parse estructurado o desde el fallback
// determinístico; Query() nunca devuelve vacío.
type RetrievalDecision struct {
	MainTopic         string `json:"main_topic"`
	InformationNeeded string `json:"information_needed"`
	VectorQuery       string `json:"vector_query"`
	Reasoning         string `json:"reasoning"`
}

// Query selecciona el texto final de búsqueda por prioridad:
// vector_query > main_topic > information_needed > default fijo.
func (d RetrievalDecision) Query() string {
	for _, candidate := range []string{d.VectorQuery, d.MainTopic, d.InformationNeeded} {
		if q := strings.TrimSpace(candidate); q != "" {
			return q
		}
	}
	return DefaultRetrievalQuery
}

// ScoredChunk es el read model de un resultado de búsqueda semántica.
// Score es opcional: un store que no rankea lo deja en nil.
type ScoredChunk struct {
	Text   string   `json:"text"`
	Score  *float64 `json:"score,omitempty"`
	Source string   `json:"source"`
}
