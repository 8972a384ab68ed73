// Package options serves the choices offered by searchable dropdowns.
package options

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// EmptyMessage is shown when a search matches nothing.
const EmptyMessage = "Nenhuma opção encontrada"

// Option is one dropdown entry.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var states = []Option{
	{"AC", "Acre"},
	{"AL", "Alagoas"},
	{"AP", "Amapá"},
	{"AM", "Amazonas"},
	{"BA", "Bahia"},
	{"CE", "Ceará"},
	{"DF", "Distrito Federal"},
	{"ES", "Espírito Santo"},
	{"GO", "Goiás"},
	{"MA", "Maranhão"},
	{"MT", "Mato Grosso"},
	{"MS", "Mato Grosso do Sul"},
	{"MG", "Minas Gerais"},
	{"PA", "Pará"},
	{"PB", "Paraíba"},
	{"PR", "Paraná"},
	{"PE", "Pernambuco"},
	{"PI", "Piauí"},
	{"RJ", "Rio de Janeiro"},
	{"RN", "Rio Grande do Norte"},
	{"RS", "Rio Grande do Sul"},
	{"RO", "Rondônia"},
	{"RR", "Roraima"},
	{"SC", "Santa Catarina"},
	{"SP", "São Paulo"},
	{"SE", "Sergipe"},
	{"TO", "Tocantins"},
}

// States returns the 27 federative units in display order.
func States() []Option {
	out := make([]Option, len(states))
	copy(out, states)
	return out
}

// StateCodes returns the two-letter federative unit codes.
func StateCodes() []string {
	codes := make([]string, len(states))
	for i, s := range states {
		codes[i] = s.Value
	}
	return codes
}

// Filter returns the options whose label or value contains query, ignoring
// case and accents. An empty query returns every option.
func Filter(opts []Option, query string) []Option {
	q := fold(strings.TrimSpace(query))
	if q == "" {
		return append([]Option(nil), opts...)
	}

	out := make([]Option, 0, len(opts))
	for _, o := range opts {
		if strings.Contains(fold(o.Label), q) || strings.Contains(fold(o.Value), q) {
			out = append(out, o)
		}
	}
	return out
}

// fold lower-cases s and strips combining marks ("São" -> "sao").
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}
