// Package dtu decodes the inverter gateway's field-coded record format.
//
// The gateway reports each inverter as a flat array of {fld, val}
// entries. Repeated field codes are positional: one entry per physical
// cell, and for most codes a trailing entry carrying the inverter-level
// total. That convention is centralized in the field classification
// table below rather than spread through positional logic.
package dtu

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/solacq/solacq/internal/models"
)

var (
	// ErrMalformedInverterData indicates a structural violation in one
	// inverter's entry array, e.g. disagreeing per-cell series lengths.
	ErrMalformedInverterData = errors.New("malformed inverter data")

	// ErrInverterIndexOutOfRange indicates a request for an inverter
	// beyond the number present in the payload.
	ErrInverterIndexOutOfRange = errors.New("inverter index out of range")
)

// Field codes emitted by the gateway.
const (
	FieldCellPower   = "P_DC"
	FieldCellVoltage = "U_DC"
	FieldCellCurrent = "I_DC"
	FieldYieldDay    = "YieldDay"
	FieldYieldTotal  = "YieldTotal"
	FieldIrradiation = "Irradiation"
	FieldACPower     = "P_AC"
	FieldPowerFactor = "PF_AC"
)

// fieldClass describes how a field code's entries map onto the inverter.
type fieldClass int

const (
	// perCellWithTotal: one entry per cell plus a trailing inverter total.
	perCellWithTotal fieldClass = iota
	// perCell: one entry per cell, no trailing total.
	perCell
	// inverterScalar: a single inverter-level value, last occurrence wins.
	inverterScalar
)

// fieldClasses is the classification table for every code the decoder
// understands. Unknown codes are ignored.
var fieldClasses = map[string]fieldClass{
	FieldCellPower:   perCellWithTotal,
	FieldCellVoltage: perCellWithTotal,
	FieldCellCurrent: perCellWithTotal,
	FieldYieldDay:    perCellWithTotal,
	FieldYieldTotal:  perCellWithTotal,
	FieldIrradiation: perCell,
	FieldACPower:     inverterScalar,
	FieldPowerFactor: inverterScalar,
}

// DecodeInverter parses one inverter's flat entry array into a
// structured reading. It is a pure function: no I/O, deterministic for
// a given input.
//
// The entry counts of the P_DC, U_DC and I_DC series must agree for
// every series the device reports; otherwise the inverter is malformed.
// Yield fields stay in raw watt-hours.
func DecodeInverter(entries []models.FieldEntry) (models.InverterReading, error) {
	groups := groupByCode(entries)

	if err := checkSeriesLengths(groups); err != nil {
		return models.InverterReading{}, err
	}

	power := cellSeries(groups, FieldCellPower)
	voltage := cellSeries(groups, FieldCellVoltage)
	current := cellSeries(groups, FieldCellCurrent)
	yieldDay := cellSeries(groups, FieldYieldDay)
	yieldTotal := cellSeries(groups, FieldYieldTotal)
	irradiation := groups[FieldIrradiation]

	cells := make([]models.CellReading, len(power))
	for i := range cells {
		cells[i] = models.CellReading{Power: power[i]}
		if i < len(voltage) {
			cells[i].Voltage = voltage[i]
		}
		if i < len(current) {
			cells[i].Current = current[i]
		}
		if i < len(yieldDay) {
			cells[i].YieldDay = yieldDay[i]
		}
		if i < len(yieldTotal) {
			cells[i].YieldTotal = yieldTotal[i]
		}
		// Irradiation may be reported for fewer cells than exist; the
		// shortfall stays unset rather than failing the decode.
		if i < len(irradiation) {
			v := irradiation[i]
			cells[i].Irradiation = &v
		}
	}

	return models.InverterReading{
		Cells:       cells,
		Power:       lastValue(groups, FieldACPower),
		YieldDay:    lastValue(groups, FieldYieldDay),
		YieldTotal:  lastValue(groups, FieldYieldTotal),
		PowerFactor: lastValue(groups, FieldPowerFactor),
	}, nil
}

// DecodeInverterAt decodes the inverter at index i of the payload.
func DecodeInverterAt(rec models.RecordLive, i int) (models.InverterReading, error) {
	entries, err := InverterAt(rec, i)
	if err != nil {
		return models.InverterReading{}, err
	}
	return DecodeInverter(entries)
}

// InverterAt returns the raw entry array for inverter i.
func InverterAt(rec models.RecordLive, i int) ([]models.FieldEntry, error) {
	if i < 0 || i >= len(rec.Inverter) {
		return nil, fmt.Errorf("%w: %d of %d", ErrInverterIndexOutOfRange, i, len(rec.Inverter))
	}
	return rec.Inverter[i], nil
}

// NumInverters reports how many inverters the payload describes.
func NumInverters(rec models.RecordLive) int {
	return len(rec.Inverter)
}

// DecodeAll decodes every inverter in the payload. A malformed inverter
// is logged together with its raw entries and dropped; the remaining
// inverters still decode, so one bad inverter never aborts a cycle.
func DecodeAll(rec models.RecordLive, logger logrus.FieldLogger) []models.InverterReading {
	readings := make([]models.InverterReading, 0, len(rec.Inverter))
	for i, entries := range rec.Inverter {
		reading, err := DecodeInverter(entries)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"inverter": i,
				"raw":      entries,
			}).WithError(err).Error("Dropping malformed inverter data")
			continue
		}
		readings = append(readings, reading)
	}
	return readings
}

// groupByCode splits the flat entry array into per-code value series,
// preserving arrival order within each code.
func groupByCode(entries []models.FieldEntry) map[string][]float64 {
	groups := make(map[string][]float64)
	for _, e := range entries {
		groups[e.Code] = append(groups[e.Code], float64(e.Value))
	}
	return groups
}

// checkSeriesLengths enforces the per-cell invariant: the P_DC, U_DC
// and I_DC entry counts must agree. A series some device variant does
// not report at all is exempt; only present series can disagree.
func checkSeriesLengths(groups map[string][]float64) error {
	p := len(groups[FieldCellPower])
	u := len(groups[FieldCellVoltage])
	i := len(groups[FieldCellCurrent])
	want := -1
	for _, n := range []int{p, u, i} {
		if n == 0 {
			continue
		}
		if want == -1 {
			want = n
			continue
		}
		if n != want {
			return fmt.Errorf("%w: series lengths disagree P_DC=%d U_DC=%d I_DC=%d",
				ErrMalformedInverterData, p, u, i)
		}
	}
	return nil
}

// cellSeries returns the per-cell values for a perCellWithTotal code:
// every entry except the trailing inverter total.
func cellSeries(groups map[string][]float64, code string) []float64 {
	s := groups[code]
	if len(s) == 0 {
		return nil
	}
	return s[:len(s)-1]
}

// lastValue returns the last entry of a code group, which is the
// inverter-level value for both scalar codes and trailing-total codes.
func lastValue(groups map[string][]float64, code string) float64 {
	s := groups[code]
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}
