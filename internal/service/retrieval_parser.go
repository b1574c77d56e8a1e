package service

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"concierge-llm/internal/domain"
)

// fallbackQueryMaxLength acota el prefijo del texto crudo usado como query
// cuando el parse estructurado falla.
const fallbackQueryMaxLength = 160

const fallbackReasoning = "extracted from text"

// DecisionParser centraliza la limpieza y el parseo de la respuesta del LLM
// hacia una RetrievalDecision.
type DecisionParser struct{}

// DefaultDecisionParser permite uso directo sin instanciar.
var DefaultDecisionParser = DecisionParser{}

// ParseDecisionSafe intenta el parse estructurado y, si el JSON no sale,
// cae al fallback determinístico. Nunca falla: toda respuesta del modelo
// produce una decisión (posiblemente degradada).
func (DecisionParser) ParseDecisionSafe(raw string) domain.RetrievalDecision {
	cleaned := cleanModelJSONResponse(raw)

	jsonObj := extractFirstJSONObject(cleaned)
	if jsonObj == "" {
		jsonObj = extractFirstJSONObject(raw)
	}

	tryUnmarshal := func(candidate string) (domain.RetrievalDecision, bool) {
		var tmp struct {
			MainTopic         string `json:"main_topic"`
			InformationNeeded string `json:"information_needed"`
			VectorQuery       string `json:"vector_query"`
			Reasoning         string `json:"reasoning"`
		}
		if err := json.Unmarshal([]byte(candidate), &tmp); err != nil {
			return domain.RetrievalDecision{}, false
		}
		decision := domain.RetrievalDecision{
			MainTopic:         strings.TrimSpace(tmp.MainTopic),
			InformationNeeded: strings.TrimSpace(tmp.InformationNeeded),
			VectorQuery:       strings.TrimSpace(tmp.VectorQuery),
			Reasoning:         strings.TrimSpace(tmp.Reasoning),
		}
		if decision.MainTopic == "" && decision.InformationNeeded == "" && decision.VectorQuery == "" {
			return domain.RetrievalDecision{}, false
		}
		return decision, true
	}

	if jsonObj != "" {
		if decision, ok := tryUnmarshal(jsonObj); ok {
			return decision
		}
	}
	if decision, ok := tryUnmarshal(cleaned); ok {
		return decision
	}

	if vq, ok := extractVectorQueryByRegex(cleaned); ok {
		return domain.RetrievalDecision{VectorQuery: vq, Reasoning: fallbackReasoning}
	}
	if vq, ok := extractVectorQueryByRegex(raw); ok {
		return domain.RetrievalDecision{VectorQuery: vq, Reasoning: fallbackReasoning}
	}

	return fallbackDecision(cleaned)
}

// fallbackDecision trunca el texto crudo a un prefijo acotado como query.
// Si incluso eso queda vacío, Query() resolverá al literal por defecto.
func fallbackDecision(cleaned string) domain.RetrievalDecision {
	text := strings.TrimSpace(cleaned)
	if len(text) > fallbackQueryMaxLength {
		cut := text[:fallbackQueryMaxLength]
		// El corte por bytes puede partir una runa multibyte.
		for len(cut) > 0 && !utf8.ValidString(cut) {
			cut = cut[:len(cut)-1]
		}
		if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
			cut = cut[:idx]
		}
		text = cut
	}
	return domain.RetrievalDecision{
		VectorQuery: text,
		Reasoning:   fallbackReasoning,
	}
}

// cleanModelJSONResponse quita fences ```json ... ``` y BOM, dejando el
// contenido usable.
func cleanModelJSONResponse(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	s = strings.TrimPrefix(s, "\uFEFF")

	reStart := regexp.MustCompile("(?is)^\\s*```(?:json)?\\s*")
	reEnd := regexp.MustCompile("(?is)\\s*```\\s*$")
	s = reStart.ReplaceAllString(s, "")
	s = reEnd.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// extractVectorQueryByRegex rescata el valor de "vector_query" aunque el
// JSON alrededor esté sucio.
func extractVectorQueryByRegex(s string) (string, bool) {
	re := regexp.MustCompile(`(?is)"vector_query"\s*:\s*"((?:\\.|[^"\\])*)"`)
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return "", false
	}

	unq, err := strconv.Unquote(`"` + m[1] + `"`)
	if err != nil {
		unq = m[1]
	}
	unq = strings.TrimSpace(unq)
	if unq == "" {
		return "", false
	}
	return unq, true
}

// extractFirstJSONObject devuelve el primer objeto JSON balanceado del
// input, respetando strings y escapes.
func extractFirstJSONObject(input string) string {
	start := strings.IndexByte(input, '{')
	if start == -1 {
		return ""
	}

	inString := false
	escape := false
	depth := 0

	for i := start; i < len(input); i++ {
		ch := input[i]

		if inString {
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
			if depth < 0 {
				return ""
			}
		}
	}

	return ""
}
