package crm

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	// International form (optional +, 10-15 digits) or US form (3-3-4 with optional - or space).
	phoneInternational = regexp.MustCompile(`^\+?\d{10,15}$`)
	phoneUS            = regexp.MustCompile(`^\d{3}[-\s]?\d{3}[-\s]?\d{4}$`)

	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

func ValidPhone(phone string) bool {
	return phoneInternational.MatchString(phone) || phoneUS.MatchString(phone)
}

func ValidEmail(email string) bool {
	if strings.TrimSpace(email) == "" {
		return false
	}
	return validatorInstance().Var(email, "required,email") == nil
}

// ValidationErrors is returned by model hooks; keys are column names.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := v.Fields()
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the offending field names in a stable order.
func (v ValidationErrors) Fields() []string {
	out := make([]string, 0, len(v))
	for f := range v {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
