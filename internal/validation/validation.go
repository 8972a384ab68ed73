// Package validation evaluates form values against a declarative schema and
// reports one human-readable message per failing field.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dukerupert/ferrovelho/internal/domain"
	"github.com/go-playground/validator/v10"
)

// Kind identifies the check a Rule performs.
type Kind string

const (
	KindRequired    Kind = "required"
	KindMinLen      Kind = "min_len"
	KindLen         Kind = "len"
	KindPattern     Kind = "pattern"
	KindDigits      Kind = "digits"
	KindEmail       Kind = "email"
	KindEqualsField Kind = "equals_field"
	KindOneOf       Kind = "one_of"
)

// Rule is a single check applied to one field.
type Rule struct {
	Kind    Kind
	Message string

	// N is the length for KindMinLen and KindLen, and the minimum digit count for KindDigits.
	N int
	// Max is the maximum digit count for KindDigits.
	Max int
	// Pattern is the expression a KindPattern value must match.
	Pattern *regexp.Regexp
	// Other names the field a KindEqualsField value must equal.
	Other string
	// Values lists the accepted KindOneOf values. They must not contain spaces.
	Values []string
}

// Field binds a field name to its rules. Rules are checked in order and the
// first failure is the one reported for the field.
type Field struct {
	Name  string
	Rules []Rule
}

// Schema is an ordered list of fields.
type Schema struct {
	Name   string
	Fields []Field
}

// FieldNames returns the declared field names in order.
func (s Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Has reports whether the schema declares the named field.
func (s Schema) Has(name string) bool {
	for _, f := range s.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// FieldErrors maps field names to error messages. It is rebuilt on every
// validation pass, never merged.
type FieldErrors map[string]string

// OK reports whether no field failed.
func (fe FieldErrors) OK() bool {
	return len(fe) == 0
}

// Err returns a *domain.ValidationError for a non-empty map and nil otherwise.
func (fe FieldErrors) Err(op string) error {
	if fe.OK() {
		return nil
	}
	fields := make(map[string]string, len(fe))
	for k, v := range fe {
		fields[k] = v
	}
	return &domain.ValidationError{Op: op, Fields: fields}
}

// Rule constructors.

func Required(msg string) Rule { return Rule{Kind: KindRequired, Message: msg} }

func MinLen(n int, msg string) Rule { return Rule{Kind: KindMinLen, N: n, Message: msg} }

func Len(n int, msg string) Rule { return Rule{Kind: KindLen, N: n, Message: msg} }

func Pattern(re *regexp.Regexp, msg string) Rule {
	return Rule{Kind: KindPattern, Pattern: re, Message: msg}
}

// Digits requires between min and max ASCII digits and nothing else.
func Digits(min, max int, msg string) Rule {
	return Rule{Kind: KindDigits, N: min, Max: max, Message: msg}
}

func Email(msg string) Rule { return Rule{Kind: KindEmail, Message: msg} }

func EqualsField(other, msg string) Rule {
	return Rule{Kind: KindEqualsField, Other: other, Message: msg}
}

// OneOf accepts only the listed values, compared exactly.
func OneOf(values []string, msg string) Rule {
	return Rule{Kind: KindOneOf, Values: values, Message: msg}
}

// Validator runs schemas. It is safe for concurrent use.
type Validator struct {
	engine *validator.Validate
}

// New creates a Validator.
func New() *Validator {
	return &Validator{engine: validator.New(validator.WithRequiredStructEnabled())}
}

var defaultValidator = New()

// Validate evaluates schema against values with the package default Validator.
func Validate(values map[string]string, schema Schema) FieldErrors {
	return defaultValidator.Validate(values, schema)
}

// Validate evaluates every rule of every declared field. Missing values are
// treated as empty strings. The returned map is empty when all rules pass.
func (v *Validator) Validate(values map[string]string, schema Schema) FieldErrors {
	errs := make(FieldErrors)
	for _, field := range schema.Fields {
		value := values[field.Name]
		for _, rule := range field.Rules {
			if !v.check(rule, value, values) {
				errs[field.Name] = rule.Message
				break
			}
		}
	}
	return errs
}

func (v *Validator) check(rule Rule, value string, values map[string]string) bool {
	switch rule.Kind {
	case KindRequired:
		return strings.TrimSpace(value) != ""
	case KindMinLen:
		return v.engine.Var(value, fmt.Sprintf("min=%d", rule.N)) == nil
	case KindLen:
		return v.engine.Var(value, fmt.Sprintf("len=%d", rule.N)) == nil
	case KindDigits:
		tag := fmt.Sprintf("number,min=%d,max=%d", rule.N, rule.Max)
		return v.engine.Var(value, tag) == nil
	case KindEmail:
		return v.engine.Var(value, "required,email") == nil
	case KindEqualsField:
		return v.engine.VarWithValue(value, values[rule.Other], "eqfield") == nil
	case KindOneOf:
		return len(rule.Values) > 0 && v.engine.Var(value, "oneof="+strings.Join(rule.Values, " ")) == nil
	case KindPattern:
		return rule.Pattern != nil && rule.Pattern.MatchString(value)
	default:
		return false
	}
}
