package validation

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeEmail приводит email к каноническому виду: NFKC, без пробелов
// по краям, со свёрткой регистра. "  Ann@Example.COM " → "ann@example.com".
func NormalizeEmail(email string) string {
	// cases.Caser хранит состояние, поэтому создаётся на каждый вызов.
	return cases.Fold().String(norm.NFKC.String(strings.TrimSpace(email)))
}

// NormalizeName приводит имя к NFKC и схлопывает пробельные последовательности.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(name)), " ")
}
