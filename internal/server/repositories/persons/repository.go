// Package persons is the record store for Person accounts.
package persons

import (
	"context"

	"github.com/dmitrijs2005/personauth/internal/server/models"
)

// Repository abstracts the persons table. Lookups report
// common.ErrorNotFound when no row matches.
type Repository interface {
	FindAll(ctx context.Context) ([]models.Person, error)
	FindByID(ctx context.Context, id int64) (*models.Person, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id int64) (*models.Person, error)
	FindByLogin(ctx context.Context, login string) (*models.Person, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, p *models.Person) (*models.Person, error)
	Update(ctx context.Context, p *models.Person) error
	Delete(ctx context.Context, id int64) error
}
