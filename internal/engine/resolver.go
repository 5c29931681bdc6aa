package engine

import (
	"degreetrack/internal/course"
	"degreetrack/internal/grade"
	"degreetrack/internal/transcript"
)

// sweepStale drops every slot whose source keep rejects. Slots without a
// source are dropped too: they carry no information.
func sweepStale(slots map[string]Slot, keep func(Source) bool) int {
	n := 0
	for id, sl := range slots {
		if sl.Source == nil || !keep(*sl.Source) {
			delete(slots, id)
			n++
		}
	}
	return n
}

// liveKeep keeps checked exams and courses that still have a live input
// in any channel.
func liveKeep(in Inputs) func(Source) bool {
	live := make(map[course.Code]bool)
	for _, m := range in.Transient {
		live[m.Code] = true
	}
	for _, m := range in.Persistent {
		live[m.Code] = true
	}
	for _, row := range in.Transcript {
		live[course.Normalize(row.Code)] = true
	}
	return func(src Source) bool {
		switch src.Kind {
		case SourceExam:
			return in.Exams[src.Label]
		case SourceCourse:
			return live[src.Code]
		default:
			return false
		}
	}
}

// importKeep is the strict rule used when the transcript is replaced:
// only checked exams and persistent manual courses keep their slots, so
// transcript rows are placed afresh in file order.
func importKeep(in Inputs) func(Source) bool {
	pinned := make(map[course.Code]bool, len(in.Persistent))
	for _, m := range in.Persistent {
		pinned[m.Code] = true
	}
	return func(src Source) bool {
		switch src.Kind {
		case SourceExam:
			return in.Exams[src.Label]
		case SourceCourse:
			return pinned[src.Code]
		default:
			return false
		}
	}
}

// mergeImport replaces the transcript with rows. Rows with ungradable
// tokens (W, I, ...) are skipped. Manual entries for courses the
// transcript now covers are superseded and removed, and unit overrides
// without a manual entry are collected.
func mergeImport(in Inputs, rows []transcript.Row) (out Inputs, dropped []course.Code, skipped []string) {
	out = in.clone()
	rows = transcript.Clean(rows)

	covered := make(map[course.Code]bool, len(rows))
	kept := make([]transcript.Row, 0, len(rows))
	for _, row := range rows {
		if _, err := grade.Parse(row.Grade); err != nil {
			skipped = append(skipped, row.Code+" ("+row.Grade+")")
			continue
		}
		covered[course.Normalize(row.Code)] = true
		kept = append(kept, row)
	}
	out.Transcript = kept

	filter := func(list []ManualEntry) []ManualEntry {
		var res []ManualEntry
		for _, m := range list {
			if covered[m.Code] {
				dropped = append(dropped, m.Code)
				continue
			}
			res = append(res, m)
		}
		return res
	}
	out.Transient = filter(out.Transient)
	out.Persistent = filter(out.Persistent)

	manual := make(map[course.Code]bool, len(out.Transient)+len(out.Persistent))
	for _, m := range out.Transient {
		manual[m.Code] = true
	}
	for _, m := range out.Persistent {
		manual[m.Code] = true
	}
	for code := range out.UnitOverrides {
		if !manual[code] {
			delete(out.UnitOverrides, code)
		}
	}
	return out, dropped, skipped
}
