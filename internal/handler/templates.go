package handler

import (
	"html/template"
	"time"

	"github.com/dukerupert/ferrovelho/internal/options"
)

// TemplateFuncs returns the functions available to every template.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"year": func() int {
			return time.Now().Year()
		},
		// get reads a key from a string map, tolerating a nil map.
		"get": func(m map[string]string, key string) string {
			return m[key]
		},
		"states": options.States,
		"field":  NewField,
	}
}

// MaskCNPJ formats 14 digits as 00.000.000/0000-00. Other input is
// returned unchanged.
func MaskCNPJ(s string) string {
	return applyMask(s, "##.###.###/####-##")
}

// MaskCPF formats 11 digits as 000.000.000-00.
func MaskCPF(s string) string {
	return applyMask(s, "###.###.###-##")
}

// MaskCEP formats 8 digits as 00000-000.
func MaskCEP(s string) string {
	return applyMask(s, "#####-###")
}

// MaskPhone formats 10 or 11 digits as (00) 0000-0000 or (00) 00000-0000.
func MaskPhone(s string) string {
	switch len(s) {
	case 10:
		return applyMask(s, "(##) ####-####")
	case 11:
		return applyMask(s, "(##) #####-####")
	default:
		return s
	}
}

func applyMask(digits, mask string) string {
	n := 0
	for _, c := range mask {
		if c == '#' {
			n++
		}
	}
	if len(digits) != n {
		return digits
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return digits
		}
	}

	out := make([]byte, 0, len(mask))
	i := 0
	for _, c := range []byte(mask) {
		if c == '#' {
			out = append(out, digits[i])
			i++
			continue
		}
		out = append(out, c)
	}
	return string(out)
}
