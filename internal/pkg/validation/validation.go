package validation

import (
	"regexp"
	"strings"
	"time"

	"coinfolio-backend/internal/pkg/apperrors"
	"coinfolio-backend/internal/pkg/constants"

	"github.com/shopspring/decimal"
)

// External report references look like R1024.
var externalRefRe = regexp.MustCompile(`^R\d+$`)

func IsValidExternalRef(ref string) bool {
	return externalRefRe.MatchString(ref)
}

// ParseDateTime accepts "yyyy-MM-dd HH:mm:ss" or "yyyy-MM-dd HH:mm" in loc.
func ParseDateTime(field, s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{constants.DateTimeLayout, constants.DateTimeShortLayout} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.Validation("invalid %s %q, expected yyyy-MM-dd HH:mm[:ss]", field, s)
}

// ParseAmount parses a decimal amount field.
func ParseAmount(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, apperrors.Validation("invalid %s %q", field, s)
	}
	return d, nil
}
