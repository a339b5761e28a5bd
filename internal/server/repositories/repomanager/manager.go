package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/personauth/internal/dbx"
	"github.com/dmitrijs2005/personauth/internal/server/repositories/persons"
)

// RepositoryManager vends repositories bound to a DBTX, so services can use
// the same repository against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Persons(db dbx.DBTX) persons.Repository
}
