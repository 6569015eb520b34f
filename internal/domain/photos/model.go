package photos

import "time"

type Photo struct {
	ID         string
	CatID      string
	Key        string // clave en el blob store
	Path       string // lo que devolvió el blob store
	SortOrder  int
	UploadedBy string
	CreatedAt  time.Time
}
