package models

// EvidenceChunk is a retrieved snippet used to ground the planner's reply.
type EvidenceChunk struct {
	Source  string  `json:"source"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score,omitempty"`
}

// Document is a unit of text written into the retrieval index.
type Document struct {
	ID     string
	Text   string
	Source string
}
