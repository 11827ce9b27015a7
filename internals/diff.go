package internals

// DiffReport is the result of comparing a filesystem enumeration against a
// HistoryIndex without hashing anything.
type DiffReport struct {
	New     []string // present on disk, never recorded by any generation
	Missing []string // recorded present by the last generation to mention them, absent from disk
}

// ComputeDiff compares presentFiles (from Walker.WalkNames) against
// history's record of every path ever seen.
func ComputeDiff(history *HistoryIndex, presentFiles []string) DiffReport {
	present := make(map[string]bool, len(presentFiles))
	for _, p := range presentFiles {
		present[p] = true
	}

	var report DiffReport
	for _, p := range presentFiles {
		if !history.IsKnown(p) {
			report.New = append(report.New, p)
		}
	}
	for _, p := range history.AllKnownPaths() {
		if !present[p] && history.IsLastKnownPresent(p) {
			report.Missing = append(report.Missing, p)
		}
	}
	return report
}
