package sqlite

import (
	"github.com/jmoiron/sqlx"

	"github.com/jokeeffe/pulse/internal/pulse"
)

// Ensure Repo implements the domain surface
var _ pulse.BuildRepo = (*Repo)(nil)

type Repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repo {
	return Repo{db: db}
}
