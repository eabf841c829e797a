package auth

import (
	"strings"

	"github.com/wysehawk/casedesk/internal/dirconfig"
)

// AllowlistSource supplies the OU allow-list for a filter context.
type AllowlistSource interface {
	AllowedOUs(fctx dirconfig.FilterContext) []string
}

// OUFilter restricts directory logins to principals whose distinguished name
// contains an allow-listed organizational unit. Operator and customer logins
// use independent allow-lists.
type OUFilter struct {
	source AllowlistSource
}

// NewOUFilter creates a filter over the given allow-list source.
func NewOUFilter(source AllowlistSource) *OUFilter {
	return &OUFilter{source: source}
}

// Allowed reports whether the extracted OU set passes the allow-list for the
// given context.
//
// An empty allow-list permits every OU set. This fail-open behavior is the
// recorded product decision: an operator who has not configured a list has
// not restricted access. Otherwise the set passes when any extracted OU
// contains any allow-listed substring, case-sensitively.
func (f *OUFilter) Allowed(ous []string, fctx dirconfig.FilterContext) bool {
	allowed := f.source.AllowedOUs(fctx)
	if len(allowed) == 0 {
		return true
	}

	for _, ou := range ous {
		for _, want := range allowed {
			if strings.Contains(ou, want) {
				return true
			}
		}
	}

	return false
}
