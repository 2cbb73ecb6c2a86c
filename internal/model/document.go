package model

// Document identifies a contract document observed at a source. ID is stable
// across polling cycles (file name or remote path) and is the key the dedup
// ledger tracks.
type Document struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Link string `json:"link,omitempty"`
}
