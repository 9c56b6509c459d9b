package domain

// Repository represents a GitHub repository enriched for display.
// It is fetched from the external source on every listing request and
// never persisted; ProjectID is derived at read time from the store.
type Repository struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	ShortDescription string  `json:"shortDescription"`
	URL              string  `json:"url"`
	Owner            string  `json:"owner"`
	DefaultBranch    string  `json:"defaultBranch"`
	LongDescription  string  `json:"longDescription"`
	ProjectID        *string `json:"projectId"`
}
