package domain

import "time"

// ReferenceDocument is one corpus file registered with the model provider.
// Handle is the provider-issued reference reused across generation requests
// and never changes once obtained.
type ReferenceDocument struct {
	Filename   string    `json:"filename"`
	Handle     string    `json:"handle"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	Summary    string    `json:"summary,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func (d ReferenceDocument) HasHandle() bool {
	return d.Handle != ""
}

// ClinicRecord is one row of the clinic directory. Rows are read-only; the
// column set follows the scraped dataset.
type ClinicRecord struct {
	Category   string `json:"category"`
	Name       string `json:"name"`
	Location   string `json:"location"`
	EventTitle string `json:"event_title"`
	Price      string `json:"price"`
}

type CorpusStatus struct {
	Ready     bool     `json:"ready"`
	Documents int      `json:"documents"`
	Filenames []string `json:"filenames,omitempty"`
}
