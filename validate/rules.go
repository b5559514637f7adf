package validate

import "fmt"

// Rule pairs a predicate with the message reported when it fails.
type Rule struct {
	Message string
	Valid   func(value string) bool
}

func Required() Rule {
	return Rule{Message: "is required", Valid: IsRequired}
}

func Email() Rule {
	return Rule{Message: "must be a valid email address", Valid: IsValidEmail}
}

func StudentID() Rule {
	return Rule{Message: "must be two uppercase letters followed by six digits", Valid: IsValidStudentID}
}

func Phone() Rule {
	return Rule{Message: "must be a phone number starting with 0 or +84 followed by nine digits", Valid: IsValidPhone}
}

func URL() Rule {
	return Rule{Message: "must be an absolute URL", Valid: IsValidURL}
}

func Min(n int) Rule {
	return Rule{
		Message: fmt.Sprintf("must be at least %d characters", n),
		Valid:   func(value string) bool { return MinLength(value, n) },
	}
}

func Max(n int) Rule {
	return Rule{
		Message: fmt.Sprintf("must be at most %d characters", n),
		Valid:   func(value string) bool { return MaxLength(value, n) },
	}
}

// Check runs every rule and returns the messages of the ones that failed, in order.
func Check(value string, rules ...Rule) []string {
	var failed []string
	for _, rule := range rules {
		if !rule.Valid(value) {
			failed = append(failed, rule.Message)
		}
	}

	return failed
}

// Fields maps a field name to its value and rules, and collects failures per field.
type Fields map[string]FieldRules

type FieldRules struct {
	Value string
	Rules []Rule
}

func (f Fields) Errors() map[string][]string {
	result := map[string][]string{}
	for name, field := range f {
		if failed := Check(field.Value, field.Rules...); len(failed) > 0 {
			result[name] = failed
		}
	}

	return result
}
