// Package ledger keeps the running unit and GPA totals.
//
// Amounts are fixed point: units in hundredths, grade points in tenths, so
// their product is in thousandths. Incremental updates therefore agree
// exactly with a full recompute.
package ledger

import (
	"degreetrack/internal/course"
	"degreetrack/internal/grade"
	"strconv"
)

const (
	// GPANotAvailable is reported before any course is recorded.
	GPANotAvailable = "N/A"
	// GPAInProgress is reported when courses exist but none carry GPA units.
	GPAInProgress = "IP"
)

// Entry is one course contribution.
type Entry struct {
	Grade       grade.Grade   `json:"grade"`
	Units       course.Amount `json:"units"`
	GPAEligible bool          `json:"gpa_eligible"`
}

// Totals are the derived ledger figures.
type Totals struct {
	GradePoints int64         `json:"grade_points_milli"`
	GPAUnits    course.Amount `json:"gpa_units"`
	Units       course.Amount `json:"units"`
	Courses     int           `json:"courses"`
}

// Recompute builds totals from scratch.
func Recompute(entries []Entry) Totals {
	var t Totals
	for _, e := range entries {
		t = t.ApplyDelta(1, e)
	}
	return t
}

// ApplyDelta adds (sign > 0) or removes (sign < 0) one entry.
func (t Totals) ApplyDelta(sign int, e Entry) Totals {
	s := int64(1)
	if sign < 0 {
		s = -1
	}
	t.Courses += int(s)
	if e.Grade.CountsUnits() {
		t.Units += course.Amount(s) * e.Units
	}
	if p, ok := e.Grade.Points(); ok && e.GPAEligible {
		t.GradePoints += s * p * int64(e.Units)
		t.GPAUnits += course.Amount(s) * e.Units
	}
	return t
}

// GradePointsValue returns grade points as a decimal.
func (t Totals) GradePointsValue() float64 { return float64(t.GradePoints) / 1000 }

// GPA renders the GPA to two decimals, rounding half up, or one of the
// sentinels.
func (t Totals) GPA() string {
	if t.Courses <= 0 {
		return GPANotAvailable
	}
	if t.GPAUnits <= 0 {
		return GPAInProgress
	}
	// points(milli) / units(centi) = gpa * 10; scale to hundredths.
	num := t.GradePoints * 10
	den := int64(t.GPAUnits)
	hundredths := (2*num + den) / (2 * den)
	return strconv.FormatInt(hundredths/100, 10) + "." + pad2(hundredths%100)
}

func pad2(v int64) string {
	if v < 10 {
		return "0" + strconv.FormatInt(v, 10)
	}
	return strconv.FormatInt(v, 10)
}
