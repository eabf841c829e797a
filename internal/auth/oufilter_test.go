package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wysehawk/casedesk/internal/dirconfig"
)

type fakeAllowlist struct {
	operator []string
	customer []string
}

func (f fakeAllowlist) AllowedOUs(fctx dirconfig.FilterContext) []string {
	if fctx == dirconfig.ContextCustomer {
		return f.customer
	}

	return f.operator
}

func TestOUFilterAllowed(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		ous     []string
		want    bool
	}{
		{
			name:    "empty allow-list permits everything",
			allowed: nil,
			ous:     []string{"RandomOU"},
			want:    true,
		},
		{
			name:    "empty allow-list permits empty set",
			allowed: nil,
			ous:     nil,
			want:    true,
		},
		{
			name:    "exact match",
			allowed: []string{"SalesOU"},
			ous:     []string{"SalesOU"},
			want:    true,
		},
		{
			name:    "substring match",
			allowed: []string{"Sales"},
			ous:     []string{"EMEA-SalesOU"},
			want:    true,
		},
		{
			name:    "case sensitive",
			allowed: []string{"SalesOU"},
			ous:     []string{"salesou"},
			want:    false,
		},
		{
			name:    "no overlap",
			allowed: []string{"SalesOU"},
			ous:     []string{"EngineeringOU"},
			want:    false,
		},
		{
			name:    "no extracted OUs against non-empty list",
			allowed: []string{"SalesOU"},
			ous:     nil,
			want:    false,
		},
		{
			name:    "any of many",
			allowed: []string{"SalesOU", "SupportOU"},
			ous:     []string{"EngineeringOU", "SupportOU"},
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewOUFilter(fakeAllowlist{operator: tt.allowed})
			assert.Equal(t, tt.want, f.Allowed(tt.ous, dirconfig.ContextOperator))
		})
	}
}

func TestOUFilterContextIndependence(t *testing.T) {
	f := NewOUFilter(fakeAllowlist{
		operator: []string{"StaffOU"},
		customer: []string{"CustomerOU"},
	})

	assert.True(t, f.Allowed([]string{"StaffOU"}, dirconfig.ContextOperator))
	assert.False(t, f.Allowed([]string{"StaffOU"}, dirconfig.ContextCustomer))
	assert.True(t, f.Allowed([]string{"CustomerOU"}, dirconfig.ContextCustomer))
}
