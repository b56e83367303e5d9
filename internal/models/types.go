package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// TurbineStatus is the lifecycle status reported by the backend.
type TurbineStatus string

const (
	StatusActive      TurbineStatus = "ACTIVE"
	StatusInactive    TurbineStatus = "INACTIVE"
	StatusOffline     TurbineStatus = "OFFLINE"
	StatusMaintenance TurbineStatus = "MAINTENANCE"
)

// Down reports whether the turbine is not producing, regardless of alerts.
func (s TurbineStatus) Down() bool {
	return s == StatusInactive || s == StatusOffline || s == StatusMaintenance
}

// Severity of a health alert.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Escalated is true for CRITICAL and HIGH.
func (s Severity) Escalated() bool {
	return s == SeverityCritical || s == SeverityHigh
}

// AlertStatus is ACTIVE until an operator resolves the alert.
type AlertStatus string

const (
	AlertActive   AlertStatus = "ACTIVE"
	AlertResolved AlertStatus = "RESOLVED"
)

// AllFarms is the farm label the backend uses for fleet-wide daily rows.
const AllFarms = "All Farms"

// Timestamp decodes the backend's zone-less ISO date-times as well as RFC3339.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format("2006-01-02T15:04:05"))
}

// ParseTimestamp accepts every layout the backend has been seen to emit.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", raw)
}

// Farm groups turbines sharing a region and location.
type Farm struct {
	ID       int64  `json:"id,omitempty"`
	Name     string `json:"name"`
	Region   string `json:"region"`
	Location string `json:"location"`
}

// Turbine is a read-only snapshot of a backend turbine.
type Turbine struct {
	ID            int64         `json:"id,omitempty"`
	TurbineID     string        `json:"turbineId"`
	Name          string        `json:"name"`
	Farm          *Farm         `json:"farm,omitempty"`
	RatedPower    float64       `json:"ratedPower"`
	Status        TurbineStatus `json:"status"`
	InstalledDate Timestamp     `json:"installedDate"`
	LastUpdated   Timestamp     `json:"lastUpdated"`
}

// FarmID returns the owning farm's id, if the reference was populated.
func (t Turbine) FarmID() (int64, bool) {
	if t.Farm == nil || t.Farm.ID == 0 {
		return 0, false
	}
	return t.Farm.ID, true
}

// StatusClass is the CSS class the view layer uses for a status badge.
func StatusClass(status string) string {
	return "status-" + strings.ToLower(status)
}

// HealthAlert is an anomaly raised server-side against a turbine.
type HealthAlert struct {
	ID         int64       `json:"id,omitempty"`
	Turbine    *Turbine    `json:"turbine,omitempty"`
	AlertTime  Timestamp   `json:"alertTime"`
	AlertType  string      `json:"alertType"`
	Severity   Severity    `json:"severity"`
	Message    string      `json:"message"`
	Status     AlertStatus `json:"status"`
	ResolvedAt Timestamp   `json:"resolvedAt"`
}

// TurbineRef returns the referenced turbine id. Alerts may arrive without one.
func (a HealthAlert) TurbineRef() (int64, bool) {
	if a.Turbine == nil || a.Turbine.ID == 0 {
		return 0, false
	}
	return a.Turbine.ID, true
}

// DailyMetric is a pre-aggregated daily row for one farm or "All Farms".
type DailyMetric struct {
	Date            string  `json:"date"`
	Farm            string  `json:"farm"`
	TotalGeneration float64 `json:"totalGeneration"`
	AvgEfficiency   float64 `json:"avgEfficiency"`
	OperatingHours  float64 `json:"operatingHours"`
	MaxPower        float64 `json:"maxPower"`
}

// GraphPoint is one day of the generation/efficiency chart.
type GraphPoint struct {
	Date       string  `json:"date"`
	Generation float64 `json:"generation"`
	Efficiency float64 `json:"efficiency"`
}

// ErrUnexpectedShape is returned when a collection response is neither a
// JSON array nor a page envelope.
var ErrUnexpectedShape = errors.New("unexpected response shape")

// PageMeta describes the window a paged response covers.
type PageMeta struct {
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// PageCount is ceil(total/size), or 0 when size is not positive.
func PageCount(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

// Consistent reports whether TotalPages matches the element count.
func (m PageMeta) Consistent() bool {
	if m.Size <= 0 {
		return true
	}
	return m.TotalPages == PageCount(m.TotalElements, m.Size)
}

// ListingKind tags which shape the backend answered with.
type ListingKind int

const (
	KindCollection ListingKind = iota
	KindPage
)

func (k ListingKind) String() string {
	if k == KindPage {
		return "page"
	}
	return "collection"
}

// Listing is either a plain collection or a page of a larger one. The
// shape is decided once, when the body is decoded.
type Listing[T any] struct {
	Kind  ListingKind
	Items []T
	Meta  PageMeta
}

// Collection wraps a plain sequence.
func Collection[T any](items []T) Listing[T] {
	return Listing[T]{Kind: KindCollection, Items: items}
}

// Paged wraps a page envelope. TotalPages is recomputed from the element
// count and size, so it always equals ceil(TotalElements/Size).
func Paged[T any](items []T, meta PageMeta) Listing[T] {
	if meta.Size > 0 {
		meta.TotalPages = PageCount(meta.TotalElements, meta.Size)
	}
	return Listing[T]{Kind: KindPage, Items: items, Meta: meta}
}

// Paged returns the page metadata when the listing is a page.
func (l Listing[T]) Paged() (PageMeta, bool) {
	return l.Meta, l.Kind == KindPage
}

// Total is the absolute element count behind the listing.
func (l Listing[T]) Total() int64 {
	if l.Kind == KindPage {
		return l.Meta.TotalElements
	}
	return int64(len(l.Items))
}

type pageEnvelope[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// DecodeListing discriminates the two response shapes structurally: an
// array is a collection, an object carrying both content and totalElements
// is a page. Anything else is ErrUnexpectedShape.
func DecodeListing[T any](body []byte) (Listing[T], error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Collection[T](nil), nil
	}

	switch trimmed[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Listing[T]{}, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
		return Collection(items), nil
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return Listing[T]{}, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
		_, hasContent := fields["content"]
		_, hasTotal := fields["totalElements"]
		if !hasContent || !hasTotal {
			return Listing[T]{}, fmt.Errorf("%w: object without content/totalElements", ErrUnexpectedShape)
		}
		var env pageEnvelope[T]
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return Listing[T]{}, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
		return Paged(env.Content, PageMeta{
			Page:          env.Page,
			Size:          env.Size,
			TotalElements: env.TotalElements,
			TotalPages:    env.TotalPages,
		}), nil
	default:
		return Listing[T]{}, ErrUnexpectedShape
	}
}
