// Package pricing computes quote totals for development work.
//
//	total = hours × rate × complexity × urgency + hosting + maintenance
//
// Compute never fails: negative inputs count as zero and unknown levels
// as a multiplier of 1. Validate reports those same inputs so callers
// can refuse them before anything is persisted.
package pricing

import (
	"github.com/CodingDyl/virtec-crm/validation"
)

type Complexity string

const (
	Low    Complexity = "Low"
	Medium Complexity = "Medium"
	High   Complexity = "High"
)

func (c Complexity) Multiplier() float64 {
	switch c {
	case Medium:
		return 1.5
	case High:
		return 2
	}
	return 1
}

func (c Complexity) Valid() bool { return c == Low || c == Medium || c == High }

type Urgency string

const (
	Standard    Urgency = "Standard"
	Rush        Urgency = "Rush"
	ExtremeRush Urgency = "Extreme Rush"
)

func (u Urgency) Multiplier() float64 {
	switch u {
	case Rush:
		return 1.2
	case ExtremeRush:
		return 1.4
	}
	return 1
}

func (u Urgency) Valid() bool { return u == Standard || u == Rush || u == ExtremeRush }

// Defaults used when a request leaves the level or rate empty.
const (
	DefaultComplexity = Medium
	DefaultUrgency    = Standard
	DefaultHourlyRate = 300.0
)

type Request struct {
	EstimatedHours  float64    `json:"estimated_hours"`
	// HourlyRate is nil when the caller left it out. An explicit 0 is kept.
	HourlyRate      *float64   `json:"hourly_rate,omitempty"`
	Complexity      Complexity `json:"complexity"`
	Urgency         Urgency    `json:"urgency"`
	HostingCost     float64    `json:"hosting_cost"`
	MaintenanceCost float64    `json:"maintenance_cost"`
	Features        []string   `json:"features,omitempty"`
}

// Rate returns a pointer for Request.HourlyRate.
func Rate(v float64) *float64 { return &v }

func (r Request) rate() float64 {
	if r.HourlyRate == nil {
		return 0
	}
	return *r.HourlyRate
}

// WithDefaults fills empty levels and an absent rate.
func (r Request) WithDefaults(hourlyRate float64) Request {
	if r.Complexity == "" {
		r.Complexity = DefaultComplexity
	}
	if r.Urgency == "" {
		r.Urgency = DefaultUrgency
	}
	if r.HourlyRate == nil {
		if hourlyRate <= 0 {
			hourlyRate = DefaultHourlyRate
		}
		r.HourlyRate = Rate(hourlyRate)
	}
	return r
}

// Breakdown itemizes a total for display on the quote document.
type Breakdown struct {
	EstimatedHours       float64 `json:"estimated_hours"`
	HourlyRate           float64 `json:"hourly_rate"`
	ComplexityMultiplier float64 `json:"complexity_multiplier"`
	UrgencyMultiplier    float64 `json:"urgency_multiplier"`
	Labour               float64 `json:"labour"`
	HostingCost          float64 `json:"hosting_cost"`
	MaintenanceCost      float64 `json:"maintenance_cost"`
	Total                float64 `json:"total"`
}

func clamp(v float64) float64 {
	if v < 0 || v != v { // NaN
		return 0
	}
	return v
}

// Itemize computes the breakdown with clamped inputs.
func Itemize(r Request) Breakdown {
	b := Breakdown{
		EstimatedHours:       clamp(r.EstimatedHours),
		HourlyRate:           clamp(r.rate()),
		ComplexityMultiplier: r.Complexity.Multiplier(),
		UrgencyMultiplier:    r.Urgency.Multiplier(),
		HostingCost:          clamp(r.HostingCost),
		MaintenanceCost:      clamp(r.MaintenanceCost),
	}
	b.Labour = b.EstimatedHours * b.HourlyRate * b.ComplexityMultiplier * b.UrgencyMultiplier
	b.Total = b.Labour + b.HostingCost + b.MaintenanceCost
	return b
}

// Compute returns the non-negative total for r.
func Compute(r Request) float64 { return Itemize(r).Total }

// Validate reports negative amounts, unknown levels and unknown features.
func Validate(r Request) validation.Violations {
	v := validation.Violations{}
	validation.NonNegativeFloat("estimated_hours", r.EstimatedHours, v)
	validation.NonNegativeFloat("hourly_rate", r.rate(), v)
	validation.NonNegativeFloat("hosting_cost", r.HostingCost, v)
	validation.NonNegativeFloat("maintenance_cost", r.MaintenanceCost, v)
	if !r.Complexity.Valid() {
		v["complexity"] = "invalid_choice"
	}
	if !r.Urgency.Valid() {
		v["urgency"] = "invalid_choice"
	}
	for _, f := range r.Features {
		if _, ok := LookupFeature(f); !ok {
			v["features"] = "unknown_feature"
			break
		}
	}
	return v
}
