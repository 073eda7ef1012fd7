package models

// SearchResult is a single ranked chunk hit.
type SearchResult struct {
	Content  string  `json:"content"`
	Filename string  `json:"filename"`
	Score    float64 `json:"score"`
}

// AskResponse is the response for a full question-answering request.
// Answer is always present; on generation failure it holds a placeholder
// message while Sources still carry the retrieval results.
type AskResponse struct {
	Answer      string         `json:"answer"`
	Sources     []SearchResult `json:"sources"`
	QueryTimeMS int64          `json:"query_time_ms"`
	Fallback    bool           `json:"fallback,omitempty"`
}
