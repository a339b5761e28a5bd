// Package services holds the account business logic on top of the
// repositories.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/personauth/internal/common"
	"github.com/dmitrijs2005/personauth/internal/dbx"
	"github.com/dmitrijs2005/personauth/internal/server/models"
	"github.com/dmitrijs2005/personauth/internal/server/repositories/repomanager"
)

// PersonService exposes CRUD and partial update over Person accounts.
// Passwords reaching it are expected to be hashed already.
type PersonService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewPersonService(db *sql.DB, m repomanager.RepositoryManager) *PersonService {
	return &PersonService{db: db, repomanager: m}
}

func (s *PersonService) FindAll(ctx context.Context) ([]models.Person, error) {
	persons, err := s.repomanager.Persons(s.db).FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("find all persons: %w", err)
	}
	return persons, nil
}

func (s *PersonService) FindByID(ctx context.Context, id int64) (*models.Person, error) {
	p, err := s.repomanager.Persons(s.db).FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find person %d: %w", id, err)
	}
	return p, nil
}

func (s *PersonService) FindByLogin(ctx context.Context, login string) (*models.Person, error) {
	p, err := s.repomanager.Persons(s.db).FindByLogin(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("find person by login: %w", err)
	}
	return p, nil
}

// Create stores p and returns it with the assigned id.
func (s *PersonService) Create(ctx context.Context, p *models.Person) (*models.Person, error) {
	created, err := s.repomanager.Persons(s.db).Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create person: %w", err)
	}
	return created, nil
}

// Update overwrites login and password of an existing person. It returns
// false without touching the store when p.ID is unknown.
func (s *PersonService) Update(ctx context.Context, p *models.Person) (bool, error) {
	var updated bool

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Persons(tx)

		exists, err := repo.ExistsByID(ctx, p.ID)
		if err != nil || !exists {
			return err
		}

		if err := repo.Update(ctx, p); err != nil {
			return err
		}
		updated = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("update person %d: %w", p.ID, err)
	}

	return updated, nil
}

// Delete removes the person with id. It returns false when id is unknown.
func (s *PersonService) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted bool

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Persons(tx)

		exists, err := repo.ExistsByID(ctx, id)
		if err != nil || !exists {
			return err
		}

		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete person %d: %w", id, err)
	}

	return deleted, nil
}

// PartialUpdate merges the supplied fields of patch onto the stored record
// and writes the result back. The row stays locked between read and write.
// It returns false when patch.ID is unknown.
func (s *PersonService) PartialUpdate(ctx context.Context, patch models.PersonPatch) (bool, error) {
	var updated bool

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Persons(tx)

		current, err := repo.FindByIDForUpdate(ctx, patch.ID)
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		patch.ApplyTo(current)

		if err := repo.Update(ctx, current); err != nil {
			return err
		}
		updated = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("partial update person %d: %w", patch.ID, err)
	}

	return updated, nil
}
