// Package models defines the data shapes exchanged between the engine, HTTP API and CLI.
package models

// Item is a stored meme addressed by its index.
type Item struct {
	Index int    `json:"index"`
	Path  string `json:"path"`
}

// Recommendation is a ranked item with its cosine similarity to the preference vector.
type Recommendation struct {
	Index int     `json:"index"`
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

// RecommendResponse is the body of GET /api/v1/recommendations.
type RecommendResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
	Count           int              `json:"count"`
}

// SearchHit is an item matched by identifier keyword search.
type SearchHit struct {
	Index int     `json:"index"`
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

// SearchResponse is the body of GET /api/v1/search.
type SearchResponse struct {
	Query string      `json:"query"`
	Hits  []SearchHit `json:"hits"`
	Total int         `json:"total"`
}
