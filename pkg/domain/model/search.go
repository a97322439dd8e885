package model

// DefaultSimilarityThreshold is the minimum similarity a candidate must
// reach to appear in search results. Policy value, overridable via
// configuration.
const DefaultSimilarityThreshold = 0.5

// SearchCandidate is a raw similarity match produced by a repository
// backend: ticket fields joined by ticket ID plus the cosine distance
// between the stored vector and the query vector. Distance is in [0, 2]
// where 0 means identical direction.
type SearchCandidate struct {
	TicketID    int64
	Subject     string
	Description string
	Resolution  string
	Distance    float64
}

// SimilarTicket is a ranked search result with a similarity score in [0, 1].
type SimilarTicket struct {
	TicketID    int64   `json:"ticket_id"`
	Subject     string  `json:"ticket_subject"`
	Description string  `json:"ticket_description"`
	Resolution  string  `json:"ticket_resolution"`
	Similarity  float64 `json:"similarity_score"`
}

// SimilarityFromDistance converts a cosine distance in [0, 2] to a
// similarity score in [0, 1] via 1 - distance/2. The mapping is only valid
// for the cosine metric; every repository backend is required to report
// cosine distance. Out-of-range inputs clamp to the closed interval.
func SimilarityFromDistance(distance float64) float64 {
	s := 1 - distance/2
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
