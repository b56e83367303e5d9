package web

import (
	"fmt"
	"strings"

	"github.com/tejusbharadwaj/turbinewatch/internal/models"
	"github.com/tejusbharadwaj/turbinewatch/internal/orchestrator"
)

// FilterRequest is the body of PUT /api/views/:view/filters.
type FilterRequest struct {
	Farm       string `json:"farm"`
	Region     string `json:"region"`
	Status     string `json:"status"`
	PeriodDays int    `json:"periodDays"`
}

type RequestValidator struct {
	validStatuses map[string]bool
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{
		validStatuses: map[string]bool{
			string(models.StatusActive):      true,
			string(models.StatusInactive):    true,
			string(models.StatusOffline):     true,
			string(models.StatusMaintenance): true,
		},
	}
}

// Filters normalises a filter request. "All Farms" and blank values mean
// no constraint; status is matched case-insensitively.
func (v *RequestValidator) Filters(req FilterRequest) (orchestrator.Filters, error) {
	f := orchestrator.Filters{
		Farm:       strings.TrimSpace(req.Farm),
		Region:     strings.TrimSpace(req.Region),
		Status:     strings.ToUpper(strings.TrimSpace(req.Status)),
		PeriodDays: req.PeriodDays,
	}
	if strings.EqualFold(f.Farm, models.AllFarms) {
		f.Farm = ""
	}
	if f.Status != "" && !v.validStatuses[f.Status] {
		return orchestrator.Filters{}, fmt.Errorf("invalid status: %s", req.Status)
	}
	if f.PeriodDays < 0 {
		return orchestrator.Filters{}, fmt.Errorf("invalid period: %d", f.PeriodDays)
	}
	return f, nil
}
