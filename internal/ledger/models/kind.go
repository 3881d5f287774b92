package models

import (
	"math"
	"strings"

	dErrors "coinquest/pkg/domain-errors"
)

// Kind says whether money comes in or goes out. Categories and
// transactions share it.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

func (k Kind) IsValid() bool {
	return k == KindIncome || k == KindExpense
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind accepts "income" or "expense" in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "type must be one of income, expense")
	}
	return k, nil
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MaxAmount is the exclusive ceiling of a NUMERIC(14,2) amount column.
const MaxAmount = 1e12

// PositiveAmount rounds v and requires the rounded value to lie in
// (0, MaxAmount).
func PositiveAmount(v float64, what string) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, dErrors.New(dErrors.CodeInvariantViolation, what+" must be positive")
	}
	r := Round2(v)
	if r <= 0 {
		return 0, dErrors.New(dErrors.CodeInvariantViolation, what+" must be positive")
	}
	if r >= MaxAmount {
		return 0, dErrors.New(dErrors.CodeInvariantViolation, what+" must be less than 1000000000000")
	}
	return r, nil
}

func optionalText(s *string, field string, max int) (*string, error) {
	if s == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil, nil
	}
	if len(trimmed) > max {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, field+" is too long")
	}
	return &trimmed, nil
}

func requiredName(name, field string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", dErrors.New(dErrors.CodeInvariantViolation, field+" is required")
	}
	if len(name) > maxNameLength {
		return "", dErrors.New(dErrors.CodeInvariantViolation, field+" must be at most 100 characters")
	}
	return name, nil
}

const (
	maxNameLength  = 100
	maxShortText   = 255
	maxLongText    = 2000
	maxColorLength = 32
)

func containsFold(s *string, sub string) bool {
	if s == nil {
		return false
	}
	return strings.Contains(strings.ToLower(*s), strings.ToLower(sub))
}
