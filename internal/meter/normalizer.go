// Package meter normalizes the power meter's status payload.
package meter

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/solacq/solacq/internal/models"
)

type statusResponse struct {
	StatusSNS map[string]json.RawMessage `json:"StatusSNS"`
}

// sensorFields mirrors the inner sensor object. Pointers distinguish
// "absent" from zero so defaulting is explicit.
type sensorFields struct {
	TotalOut    *float64 `json:"Total_out"`
	TotalIn     *float64 `json:"Total_in"`
	PowerIn     *float64 `json:"Power_in"`
	MeterNumber *string  `json:"Meter_Number"`
}

func (s sensorFields) empty() bool {
	return s.TotalOut == nil && s.TotalIn == nil && s.PowerIn == nil && s.MeterNumber == nil
}

// Normalize extracts a meter snapshot from a raw Status 10 response.
//
// The sensor readings live in an inner object of StatusSNS whose key is
// not guaranteed (it may be the empty string or a named sensor id), so
// the inner objects are scanned for the known fields. Missing fields
// default to zero or the empty string; a sparse payload never fails the
// normalization. Only an unparseable payload is an error.
func Normalize(raw []byte, ts time.Time) (models.MeterSnapshot, error) {
	var status statusResponse
	if err := json.Unmarshal(raw, &status); err != nil {
		return models.MeterSnapshot{}, fmt.Errorf("failed to decode meter status: %v", err)
	}

	snap := models.MeterSnapshot{Timestamp: ts}
	for _, inner := range status.StatusSNS {
		var sensor sensorFields
		// Non-object members like the Time string are not the sensor.
		if err := json.Unmarshal(inner, &sensor); err != nil || sensor.empty() {
			continue
		}
		if sensor.TotalOut != nil {
			snap.TotalOut = *sensor.TotalOut
		}
		if sensor.TotalIn != nil {
			snap.TotalIn = *sensor.TotalIn
		}
		if sensor.PowerIn != nil {
			snap.PowerIn = *sensor.PowerIn
		}
		if sensor.MeterNumber != nil {
			snap.MeterID = *sensor.MeterNumber
		}
		break
	}
	return snap, nil
}
