package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/dmitrijs2005/personauth/internal/common"
	"github.com/dmitrijs2005/personauth/internal/dbx"
	"github.com/dmitrijs2005/personauth/internal/server/models"
	"github.com/dmitrijs2005/personauth/internal/server/repositories/persons"
)

// memRepo is an in-memory persons.Repository. Errors set on it are returned
// by the matching method before any state change.
type memRepo struct {
	mu     sync.Mutex
	rows   map[int64]models.Person
	nextID int64

	findAllErr error
	findErr    error
	existsErr  error
	createErr  error
	updateErr  error
	deleteErr  error

	updateCalls int
	deleteCalls int
}

func newMemRepo(seed ...models.Person) *memRepo {
	r := &memRepo{rows: map[int64]models.Person{}}
	for _, p := range seed {
		r.rows[p.ID] = p
		if p.ID > r.nextID {
			r.nextID = p.ID
		}
	}
	return r
}

func (r *memRepo) FindAll(ctx context.Context) ([]models.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findAllErr != nil {
		return nil, r.findAllErr
	}
	out := make([]models.Person, 0, len(r.rows))
	for _, p := range r.rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRepo) FindByID(ctx context.Context, id int64) (*models.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	p, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &p, nil
}

func (r *memRepo) FindByIDForUpdate(ctx context.Context, id int64) (*models.Person, error) {
	return r.FindByID(ctx, id)
}

func (r *memRepo) FindByLogin(ctx context.Context, login string) (*models.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, p := range r.rows {
		if p.Login == login {
			return &p, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memRepo) ExistsByID(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.existsErr != nil {
		return false, r.existsErr
	}
	_, ok := r.rows[id]
	return ok, nil
}

func (r *memRepo) Create(ctx context.Context, p *models.Person) (*models.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	if r.loginTaken(p.Login, 0) {
		return nil, common.ErrLoginTaken
	}
	r.nextID++
	created := models.Person{ID: r.nextID, Login: p.Login, Password: p.Password}
	r.rows[created.ID] = created
	return &created, nil
}

func (r *memRepo) Update(ctx context.Context, p *models.Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateCalls++
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.rows[p.ID]; !ok {
		return common.ErrorNotFound
	}
	if r.loginTaken(p.Login, p.ID) {
		return common.ErrLoginTaken
	}
	r.rows[p.ID] = *p
	return nil
}

func (r *memRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteCalls++
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memRepo) loginTaken(login string, except int64) bool {
	for id, p := range r.rows {
		if id != except && p.Login == login {
			return true
		}
	}
	return false
}

type fakeRepoManager struct {
	repo *memRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Persons(db dbx.DBTX) persons.Repository     { return m.repo }
