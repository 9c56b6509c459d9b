package domain

// BatchResult reports the outcome of a bulk create or delete. Only the
// projects that succeeded are carried; a failed item is simply absent.
type BatchResult struct {
	Requested int        `json:"requested"`
	Succeeded int        `json:"succeeded"`
	Projects  []*Project `json:"projects"`
}

// Partial reports whether the batch completed for only a strict subset
// of the requested items.
func (r *BatchResult) Partial() bool {
	return r.Succeeded < r.Requested
}
