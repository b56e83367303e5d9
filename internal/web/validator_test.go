package web

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tejusbharadwaj/turbinewatch/internal/orchestrator"
)

func TestRequestValidator_Filters(t *testing.T) {
	validator := NewRequestValidator()

	tests := []struct {
		name    string
		req     FilterRequest
		want    orchestrator.Filters
		wantErr bool
	}{
		{
			name: "all farms means unfiltered",
			req:  FilterRequest{Farm: "All Farms", Region: " West "},
			want: orchestrator.Filters{Region: "West"},
		},
		{
			name: "status is case-insensitive",
			req:  FilterRequest{Status: "offline"},
			want: orchestrator.Filters{Status: "OFFLINE"},
		},
		{
			name: "period passes through",
			req:  FilterRequest{Farm: "North Ridge", PeriodDays: 7},
			want: orchestrator.Filters{Farm: "North Ridge", PeriodDays: 7},
		},
		{
			name:    "unknown status",
			req:     FilterRequest{Status: "EXPLODED"},
			wantErr: true,
		},
		{
			name:    "negative period",
			req:     FilterRequest{PeriodDays: -3},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validator.Filters(tt.req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
