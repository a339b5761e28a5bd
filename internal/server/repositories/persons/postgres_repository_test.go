package persons

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/personauth/internal/common"
	"github.com/dmitrijs2005/personauth/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("sql expectations: %v", err)
		}
		db.Close()
	})
	return NewPostgresRepository(db), mock
}

var dbErrRe = regexp.MustCompile(`db error: .*db down`)

const (
	selectAllQ  = `(?s)^SELECT\s+id,\s*login,\s*password\s+FROM\s+persons\s+ORDER\s+BY\s+id$`
	selectByIDQ = `(?s)^SELECT\s+id,\s*login,\s*password\s+FROM\s+persons\s+WHERE\s+id\s*=\s*\$1$`
	selectLockQ = `(?s)^SELECT\s+id,\s*login,\s*password\s+FROM\s+persons\s+WHERE\s+id\s*=\s*\$1\s+FOR\s+UPDATE$`
	selectLogQ  = `(?s)^SELECT\s+id,\s*login,\s*password\s+FROM\s+persons\s+WHERE\s+login\s*=\s*\$1$`
	existsQ     = `(?s)^SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+persons\s+WHERE\s+id\s*=\s*\$1\)$`
	insertQ     = `(?s)^INSERT\s+INTO\s+persons\s*\(login,\s*password\)\s*VALUES\s*\(\$1,\s*\$2\)\s*RETURNING\s+id$`
	updateQ     = `(?s)^UPDATE\s+persons\s+SET\s+login\s*=\s*\$2,\s*password\s*=\s*\$3\s+WHERE\s+id\s*=\s*\$1$`
	deleteQ     = `(?s)^DELETE\s+FROM\s+persons\s+WHERE\s+id\s*=\s*\$1$`
)

func personRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "login", "password"})
}

func TestFindAll(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectAllQ).WillReturnRows(personRows().
		AddRow(int64(1), "alice", "h1").
		AddRow(int64(2), "bob", "h2"))

	got, err := repo.FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll error: %v", err)
	}
	if len(got) != 2 || got[0].Login != "alice" || got[1].ID != 2 {
		t.Fatalf("unexpected persons: %+v", got)
	}
}

func TestFindAll_EmptyIsNonNil(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectAllQ).WillReturnRows(personRows())

	got, err := repo.FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", got)
	}
}

func TestFindAll_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectAllQ).WillReturnError(errors.New("db down"))

	_, err := repo.FindAll(context.Background())
	if err == nil || !dbErrRe.MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFindByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectByIDQ).WithArgs(int64(7)).
		WillReturnRows(personRows().AddRow(int64(7), "bob", "hash"))

	got, err := repo.FindByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	want := models.Person{ID: 7, Login: "bob", Password: "hash"}
	if *got != want {
		t.Fatalf("got %+v, want %+v", *got, want)
	}
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectByIDQ).WithArgs(int64(9999)).WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 9999)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestFindByIDForUpdate_LocksRow(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectLockQ).WithArgs(int64(3)).
		WillReturnRows(personRows().AddRow(int64(3), "carol", "hash"))

	got, err := repo.FindByIDForUpdate(context.Background(), 3)
	if err != nil || got.Login != "carol" {
		t.Fatalf("FindByIDForUpdate: got (%+v, %v)", got, err)
	}
}

func TestFindByLogin(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectLogQ).WithArgs("bob").
		WillReturnRows(personRows().AddRow(int64(1), "bob", "hash"))
	mock.ExpectQuery(selectLogQ).WithArgs("ghost").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(selectLogQ).WithArgs("x").WillReturnError(errors.New("db down"))

	got, err := repo.FindByLogin(context.Background(), "bob")
	if err != nil || got.ID != 1 {
		t.Fatalf("FindByLogin found: got (%+v, %v)", got, err)
	}

	if _, err := repo.FindByLogin(context.Background(), "ghost"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}

	if _, err := repo.FindByLogin(context.Background(), "x"); err == nil || !dbErrRe.MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestExistsByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(existsQ).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(existsQ).WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	if ok, err := repo.ExistsByID(context.Background(), 1); err != nil || !ok {
		t.Fatalf("ExistsByID(1) = (%v, %v)", ok, err)
	}
	if ok, err := repo.ExistsByID(context.Background(), 2); err != nil || ok {
		t.Fatalf("ExistsByID(2) = (%v, %v)", ok, err)
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQ).WithArgs("alice", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	got, err := repo.Create(context.Background(), &models.Person{Login: "alice", Password: "hash"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 42 || got.Login != "alice" {
		t.Fatalf("unexpected person: %+v", got)
	}
}

func TestCreate_DuplicateLogin(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "persons_login_key"}
	mock.ExpectQuery(insertQ).WithArgs("alice", "hash").WillReturnError(pgErr)

	_, err := repo.Create(context.Background(), &models.Person{Login: "alice", Password: "hash"})
	if !errors.Is(err, common.ErrLoginTaken) {
		t.Fatalf("want ErrLoginTaken, got %v", err)
	}
	var got *pgconn.PgError
	if !errors.As(err, &got) || got.ConstraintName != "persons_login_key" {
		t.Fatalf("driver error must stay in the chain, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQ).WithArgs("alice", "hash").WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Person{Login: "alice", Password: "hash"})
	if err == nil || !dbErrRe.MatchString(err.Error()) || errors.Is(err, common.ErrLoginTaken) {
		t.Fatalf("expected plain wrapped db error, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(updateQ).WithArgs(int64(1), "bob", "h").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(updateQ).WithArgs(int64(2), "bob", "h").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(updateQ).WithArgs(int64(3), "taken", "h").WillReturnError(&pgconn.PgError{Code: "23505"})

	if err := repo.Update(context.Background(), &models.Person{ID: 1, Login: "bob", Password: "h"}); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if err := repo.Update(context.Background(), &models.Person{ID: 2, Login: "bob", Password: "h"}); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound for zero rows, got %v", err)
	}
	if err := repo.Update(context.Background(), &models.Person{ID: 3, Login: "taken", Password: "h"}); !errors.Is(err, common.ErrLoginTaken) {
		t.Fatalf("want ErrLoginTaken, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(deleteQ).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(deleteQ).WithArgs(int64(9999)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(deleteQ).WithArgs(int64(5)).WillReturnError(errors.New("db down"))

	if err := repo.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := repo.Delete(context.Background(), 9999); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
	if err := repo.Delete(context.Background(), 5); err == nil || !dbErrRe.MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
