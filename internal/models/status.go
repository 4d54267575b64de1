package models

// Status is a read-only snapshot of the engine.
type Status struct {
	ItemCount     int `json:"item_count"`
	Dimension     int `json:"dimension"`
	LikedCount    int `json:"liked_count"`
	SkippedCount  int `json:"skipped_count"`
	FeedbackCount int `json:"feedback_count"`

	DataSource     string `json:"data_source,omitempty"`
	SearchEnabled  bool   `json:"search_enabled"`
	DiskUsageBytes *int64 `json:"disk_usage_bytes,omitempty"`
}

// PreferenceResponse is the body of GET /api/v1/preference.
type PreferenceResponse struct {
	Dimension int       `json:"dimension"`
	Vector    []float32 `json:"vector"`
	// Signal is false when no likes have been recorded and the vector is all zeros.
	Signal bool `json:"signal"`
}
