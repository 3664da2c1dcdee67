package meter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ts = time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

func TestNormalize(t *testing.T) {
	raw := []byte(`{
		"StatusSNS": {
			"Time": "2026-08-23T12:00:00",
			"MT175": {
				"Total_out": 1234.5,
				"Total_in": 678.9,
				"Power_in": 250,
				"Meter_Number": "1ESY1234567890"
			}
		}
	}`)

	snap, err := Normalize(raw, ts)
	require.NoError(t, err)

	assert.Equal(t, ts, snap.Timestamp)
	assert.Equal(t, 1234.5, snap.TotalOut)
	assert.Equal(t, 678.9, snap.TotalIn)
	assert.Equal(t, 250.0, snap.PowerIn)
	assert.Equal(t, "1ESY1234567890", snap.MeterID)
}

// Some firmware builds key the sensor object with the empty string.
func TestNormalizeEmptyKey(t *testing.T) {
	raw := []byte(`{
		"StatusSNS": {
			"": {"Total_out": 10, "Total_in": 20, "Power_in": 30, "Meter_Number": "M1"}
		}
	}`)

	snap, err := Normalize(raw, ts)
	require.NoError(t, err)
	assert.Equal(t, 10.0, snap.TotalOut)
	assert.Equal(t, "M1", snap.MeterID)
}

func TestNormalizeMissingFields(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "missing meter number",
			raw:  `{"StatusSNS": {"SM": {"Total_out": 1, "Total_in": 2, "Power_in": 3}}}`,
		},
		{
			name: "power only",
			raw:  `{"StatusSNS": {"SM": {"Power_in": 3}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := Normalize([]byte(tt.raw), ts)
			require.NoError(t, err)
			assert.Equal(t, 3.0, snap.PowerIn)
			assert.Equal(t, "", snap.MeterID)
		})
	}
}

// A fetched but field-less payload still normalizes to defaults; it is
// distinct from a payload that was never fetched.
func TestNormalizeSparsePayload(t *testing.T) {
	snap, err := Normalize([]byte(`{"StatusSNS": {"Time": "2026-08-23T12:00:00"}}`), ts)
	require.NoError(t, err)
	assert.Equal(t, 0.0, snap.TotalOut)
	assert.Equal(t, 0.0, snap.TotalIn)
	assert.Equal(t, 0.0, snap.PowerIn)
	assert.Equal(t, "", snap.MeterID)
}

func TestNormalizeInvalidJSON(t *testing.T) {
	_, err := Normalize([]byte(`not json`), ts)
	assert.Error(t, err)
}
