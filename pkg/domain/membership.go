package domain

// SavedJob is one row of a user's saved-jobs collection.
type SavedJob struct {
	ID     int64 `json:"id,omitempty"`
	UserID int64 `json:"userId,omitempty"`
	JobID  int64 `json:"jobId"`
}

// AppliedJob is one row of a user's applications.
type AppliedJob struct {
	ID        int64  `json:"id,omitempty"`
	UserID    int64  `json:"userId,omitempty"`
	JobID     int64  `json:"jobId"`
	AppliedAt string `json:"appliedAt,omitempty"`
}
