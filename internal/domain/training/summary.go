package training

// Summary aggregates a customer's PT allocations for the detail view
type Summary struct {
	ActiveCount       int `json:"active_count"`
	SessionsRemaining int `json:"sessions_remaining"`
	CompletedCount    int `json:"completed_count"`
	CancelledCount    int `json:"cancelled_count"`
}

// Summarize counts allocations by status; only ACTIVE ones contribute remaining sessions
func Summarize(allocations []PtPackageAllocation) Summary {
	var s Summary
	for i := range allocations {
		switch allocations[i].Status {
		case AllocationStatusActive:
			s.ActiveCount++
			s.SessionsRemaining += allocations[i].SessionsRemaining
		case AllocationStatusCompleted:
			s.CompletedCount++
		case AllocationStatusCancelled:
			s.CancelledCount++
		}
	}
	return s
}
