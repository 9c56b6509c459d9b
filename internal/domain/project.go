package domain

import "time"

// Project is the persisted record generated from a repository snapshot.
// RepositoryID and Title are unique across all projects; both constraints
// are enforced by the storage schema, not by application code.
type Project struct {
	ID               string    `json:"id"`
	RepositoryID     int64     `json:"repositoryId"`
	Title            string    `json:"title"`
	ShortDescription string    `json:"shortDescription"`
	RepositoryURL    string    `json:"repositoryUrl"`
	LongDescription  string    `json:"longDescription"`
	CoverImage       *string   `json:"coverImage,omitempty"`
	CreatedBy        string    `json:"createdBy"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ProjectFields holds the caller-supplied fields for a new project.
// The store assigns ID and CreatedAt.
type ProjectFields struct {
	RepositoryID     int64
	Title            string
	ShortDescription string
	RepositoryURL    string
	LongDescription  string
	CreatedBy        string
}

// ProjectFilter selects projects in FindProjects. A zero filter matches
// everything. RepositoryIDs supports the batched linkage lookup used by
// the enriched listing.
type ProjectFilter struct {
	RepositoryID  *int64
	RepositoryIDs []int64
}

// FieldsFromRepository copies a repository snapshot into project fields.
// The repository name doubles as the project title.
func FieldsFromRepository(repo *Repository, createdBy string) ProjectFields {
	return ProjectFields{
		RepositoryID:     repo.ID,
		Title:            repo.Name,
		ShortDescription: repo.ShortDescription,
		RepositoryURL:    repo.URL,
		LongDescription:  repo.LongDescription,
		CreatedBy:        createdBy,
	}
}
