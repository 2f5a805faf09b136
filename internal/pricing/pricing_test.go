package pricing

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want float64
	}{
		{"medium standard", Request{EstimatedHours: 10, HourlyRate: Rate(300), Complexity: Medium, Urgency: Standard}, 4500},
		{"high extreme rush with add-ons", Request{EstimatedHours: 10, HourlyRate: Rate(300), Complexity: High, Urgency: ExtremeRush, HostingCost: 500, MaintenanceCost: 200}, 9100},
		{"low rush", Request{EstimatedHours: 5, HourlyRate: Rate(200), Complexity: Low, Urgency: Rush}, 1200},
		{"zero hours keeps add-ons", Request{Complexity: High, Urgency: Rush, HostingCost: 150}, 150},
		{"negative inputs clamp", Request{EstimatedHours: -10, HourlyRate: Rate(300), Complexity: High, Urgency: Rush, HostingCost: -50, MaintenanceCost: 20}, 20},
		{"unknown levels count as one", Request{EstimatedHours: 2, HourlyRate: Rate(100), Complexity: "Huge", Urgency: "Yesterday"}, 200},
		{"NaN hours clamp", Request{EstimatedHours: math.NaN(), HourlyRate: Rate(100), Complexity: Low, Urgency: Standard}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Compute(tt.req), 1e-9)
		})
	}
}

func TestComputeNeverNegative(t *testing.T) {
	values := []float64{-1000, -1, 0, 0.5, 1, 37.25, 1e6}
	for _, h := range values {
		for _, rate := range values {
			for _, c := range []Complexity{Low, Medium, High} {
				for _, u := range []Urgency{Standard, Rush, ExtremeRush} {
					got := Compute(Request{EstimatedHours: h, HourlyRate: Rate(rate), Complexity: c, Urgency: u, HostingCost: h, MaintenanceCost: rate})
					require.GreaterOrEqual(t, got, 0.0, "h=%v rate=%v %s %s", h, rate, c, u)
				}
			}
		}
	}
}

func TestItemize(t *testing.T) {
	b := Itemize(Request{EstimatedHours: 10, HourlyRate: Rate(300), Complexity: High, Urgency: ExtremeRush, HostingCost: 500, MaintenanceCost: 200})
	assert.Equal(t, 2.0, b.ComplexityMultiplier)
	assert.Equal(t, 1.4, b.UrgencyMultiplier)
	assert.InDelta(t, 8400, b.Labour, 1e-9)
	assert.InDelta(t, b.Labour+b.HostingCost+b.MaintenanceCost, b.Total, 1e-9)
}

func TestValidate(t *testing.T) {
	ok := Request{EstimatedHours: 10, HourlyRate: Rate(300), Complexity: Medium, Urgency: Standard, Features: []string{"CDN", "SSL Certificate"}}
	assert.True(t, Validate(ok).Empty())

	bad := Request{EstimatedHours: -1, HourlyRate: Rate(-5), Complexity: "Epic", Urgency: "", HostingCost: -1, MaintenanceCost: -2, Features: []string{"Blockchain"}}
	v := Validate(bad)
	assert.Equal(t, "must_not_be_negative", v["estimated_hours"])
	assert.Equal(t, "must_not_be_negative", v["hourly_rate"])
	assert.Equal(t, "must_not_be_negative", v["hosting_cost"])
	assert.Equal(t, "must_not_be_negative", v["maintenance_cost"])
	assert.Equal(t, "invalid_choice", v["complexity"])
	assert.Equal(t, "invalid_choice", v["urgency"])
	assert.Equal(t, "unknown_feature", v["features"])
}

func TestWithDefaults(t *testing.T) {
	r := Request{EstimatedHours: 4}.WithDefaults(0)
	assert.Equal(t, Medium, r.Complexity)
	assert.Equal(t, Standard, r.Urgency)
	require.NotNil(t, r.HourlyRate)
	assert.Equal(t, DefaultHourlyRate, *r.HourlyRate)

	r = Request{HourlyRate: Rate(450), Complexity: Low}.WithDefaults(350)
	assert.Equal(t, 450.0, *r.HourlyRate)
	assert.Equal(t, Low, r.Complexity)

	assert.Equal(t, 350.0, *Request{}.WithDefaults(350).HourlyRate)

	free := Request{EstimatedHours: 10, HourlyRate: Rate(0), HostingCost: 500}.WithDefaults(350)
	assert.Equal(t, 0.0, *free.HourlyRate, "explicit zero rate is kept")
	assert.Equal(t, 500.0, Compute(free))
}

func TestRequestJSONRate(t *testing.T) {
	var absent, zero Request
	require.NoError(t, json.Unmarshal([]byte(`{"estimated_hours":2}`), &absent))
	require.NoError(t, json.Unmarshal([]byte(`{"estimated_hours":2,"hourly_rate":0}`), &zero))
	assert.Nil(t, absent.HourlyRate)
	require.NotNil(t, zero.HourlyRate)
	assert.Equal(t, 300.0, *absent.WithDefaults(300).HourlyRate)
	assert.Equal(t, 0.0, *zero.WithDefaults(300).HourlyRate)
}

func TestFeatures(t *testing.T) {
	fs := Features()
	require.Len(t, fs, 18)
	fs[0].Name = "mutated"
	_, ok := LookupFeature("Responsive Design")
	assert.True(t, ok, "catalog must not be affected by callers")
	_, ok = LookupFeature("mutated")
	assert.False(t, ok)
}
