package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FieldValue is a numeric reading from a source payload. Devices emit
// values both as JSON numbers and as quoted numeric strings
// ("val":"100"), so it accepts either form.
type FieldValue float64

func (v *FieldValue) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*v = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("field value %s is not numeric: %v", string(data), err)
	}
	*v = FieldValue(f)
	return nil
}

// FieldEntry is one atomic reading from the inverter gateway: a short
// field code tagging what was measured, plus its value.
type FieldEntry struct {
	Code  string     `json:"fld"`
	Value FieldValue `json:"val"`
}

// RecordLive is the raw response of the gateway's /api/record/live
// endpoint: one flat entry array per inverter.
type RecordLive struct {
	Inverter [][]FieldEntry `json:"inverter"`
}

// CellReading is one physical cell's state at poll time. Irradiation is
// nil when the source reported fewer irradiation entries than cells.
type CellReading struct {
	Power       float64  `json:"power"`
	Current     float64  `json:"current"`
	Voltage     float64  `json:"voltage"`
	YieldDay    float64  `json:"yield_day"`
	YieldTotal  float64  `json:"yield_total"`
	Irradiation *float64 `json:"irradiation,omitempty"`
}

// InverterReading is one inverter's decoded state. Yield fields hold
// the raw gateway values in watt-hours; conversion to kWh happens once,
// at aggregation.
type InverterReading struct {
	Cells       []CellReading `json:"cells"`
	Power       float64       `json:"power"`
	YieldDay    float64       `json:"yield_day"`
	YieldTotal  float64       `json:"yield_total"`
	PowerFactor float64       `json:"power_factor"`
}

// InstallationSnapshot is one poll cycle's aggregated result. Yield
// sums are in kWh. Never mutated after construction.
type InstallationSnapshot struct {
	Timestamp     time.Time         `json:"timestamp"`
	Inverters     []InverterReading `json:"inverters"`
	PowerSum      float64           `json:"power_sum"`
	YieldDaySum   float64           `json:"yield_day_sum"`
	YieldTotalSum float64           `json:"yield_total_sum"`
}

// MeterSnapshot is one poll cycle's power meter reading. Its lifecycle
// is independent of the installation snapshot: the meter fetch may fail
// while the inverter fetch succeeds.
type MeterSnapshot struct {
	Timestamp time.Time `json:"timestamp"`
	TotalOut  float64   `json:"total_out"`
	TotalIn   float64   `json:"total_in"`
	PowerIn   float64   `json:"power_in"`
	MeterID   string    `json:"meter_number"`
}
