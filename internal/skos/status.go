package skos

// Status is the editorial lifecycle state of a concept.
type Status string

const (
	StatusCandidate    Status = "candidate"
	StatusApproved     Status = "approved"
	StatusRedirected   Status = "redirected"
	StatusNotCompliant Status = "not_compliant"
	StatusRejected     Status = "rejected"
	StatusObsolete     Status = "obsolete"
	StatusDeleted      Status = "deleted"
)

// AvailableStatuses lists every concept status.
func AvailableStatuses() []Status {
	return []Status{
		StatusCandidate,
		StatusApproved,
		StatusRedirected,
		StatusNotCompliant,
		StatusRejected,
		StatusObsolete,
		StatusDeleted,
	}
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	for _, known := range AvailableStatuses() {
		if s == known {
			return true
		}
	}
	return false
}
