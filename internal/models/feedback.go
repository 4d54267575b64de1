package models

// FeedbackRequest is the body of POST /api/v1/feedback.
type FeedbackRequest struct {
	Action string `json:"action"`
	Index  *int   `json:"index"`
}

// FeedbackResult reports an accepted feedback event.
type FeedbackResult struct {
	ID     string `json:"id"`
	Action string `json:"action"`
	Index  int    `json:"index"`
	// AcceptedCount is the total number of feedback events accepted so far.
	AcceptedCount int `json:"accepted_count"`
	LikedCount    int `json:"liked_count"`
}
