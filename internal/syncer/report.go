package syncer

// Entry is one line of a batch report.
type Entry struct {
	VideoID string
	Name    string
	Detail  string
}

// Report aggregates the results of one import batch. Every track lands
// in exactly one bucket; nothing is silently swallowed.
type Report struct {
	Tagged  []Entry
	Junk    []Entry
	Skipped []Entry
	Failed  []Entry
}

// Total is the number of tracks the batch touched.
func (r *Report) Total() int {
	return len(r.Tagged) + len(r.Junk) + len(r.Skipped) + len(r.Failed)
}
