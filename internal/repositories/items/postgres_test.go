package items

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/vaughan-dsouza/storekeeper/internal/common"
	"github.com/vaughan-dsouza/storekeeper/internal/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(sqlx.NewDb(db, "sqlmock")), mock, db
}

var itemColumns = []string{"id", "store_id", "sku", "name", "quantity", "min_stock", "last_updated"}

var ts = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func widget() *models.Item {
	return &models.Item{StoreID: "s-1", SKU: "ABC_1", Name: "Widget", Quantity: 5, MinStock: 2, LastUpdated: ts}
}

func TestList_ScopedAndOrdered(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*store_id,\s*sku,\s*name,\s*quantity,\s*min_stock,\s*last_updated\s+FROM\s+items\s+WHERE\s+store_id\s*=\s*\$1\s+ORDER\s+BY\s+last_updated\s+DESC,\s*sku\s*$`
	rows := sqlmock.NewRows(itemColumns).
		AddRow(2, "s-1", "B_2", "Bolt", 1, 5, ts.Add(time.Minute)).
		AddRow(1, "s-1", "A_1", "Anchor", 9, 5, ts)
	mock.ExpectQuery(q).WithArgs("s-1").WillReturnRows(rows)

	got, err := repo.List(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].SKU != "B_2" || got[1].Quantity != 9 {
		t.Fatalf("unexpected items: %+v", got)
	}
}

func TestList_EmptyIsNotNil(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT.+FROM\s+items`).WithArgs("s-1").WillReturnRows(sqlmock.NewRows(itemColumns))

	got, err := repo.List(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", got)
	}
}

func TestListLowStock(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT.+FROM\s+items\s+WHERE\s+store_id\s*=\s*\$1\s+AND\s+quantity\s*<=\s*min_stock\s+ORDER\s+BY\s+quantity,\s*sku\s*$`
	mock.ExpectQuery(q).WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows(itemColumns).AddRow(1, "s-1", "A_1", "Anchor", 0, 5, ts))

	got, err := repo.ListLowStock(context.Background(), "s-1")
	if err != nil || len(got) != 1 || !got[0].LowStock() {
		t.Fatalf("ListLowStock = %+v, %v", got, err)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT.+FROM\s+items\s+WHERE\s+store_id\s*=\s*\$1\s+AND\s+sku\s*=\s*\$2\s*$`
	mock.ExpectQuery(q).WithArgs("s-2", "ABC_1").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "s-2", "ABC_1")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestGet_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT.+FROM\s+items\s+WHERE\s+store_id`).WithArgs("s-1", "ABC_1").
		WillReturnRows(sqlmock.NewRows(itemColumns).AddRow(7, "s-1", "ABC_1", "Widget", 5, 2, ts))

	got, err := repo.Get(context.Background(), "s-1", "ABC_1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.ID != 7 || got.Name != "Widget" || !got.LastUpdated.Equal(ts) {
		t.Fatalf("unexpected item: %+v", got)
	}
}

const insertQ = `(?s)^INSERT\s+INTO\s+items\s*\(store_id,\s*sku,\s*name,\s*quantity,\s*min_stock,\s*last_updated\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*RETURNING\s+id\s*$`

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WithArgs("s-1", "ABC_1", "Widget", 5, 2, ts).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	got, err := repo.Create(context.Background(), widget())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 11 {
		t.Fatalf("ID = %d, want 11", got.ID)
	}
}

func TestCreate_DuplicateSKU(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "items_store_sku_key"})

	_, err := repo.Create(context.Background(), widget())
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("want common.ErrConflict, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), widget())
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+items\s+SET\s+name\s*=\s*\$3,\s*quantity\s*=\s*\$4,\s*min_stock\s*=\s*\$5,\s*last_updated\s*=\s*\$6\s+WHERE\s+store_id\s*=\s*\$1\s+AND\s+sku\s*=\s*\$2\s+RETURNING\s+id\s*$`
	mock.ExpectQuery(q).
		WithArgs("s-1", "ABC_1", "Widget", 5, 2, ts).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(q).WillReturnError(sql.ErrNoRows)

	got, err := repo.Update(context.Background(), widget())
	if err != nil || got.ID != 7 {
		t.Fatalf("Update = %+v, %v", got, err)
	}

	if _, err := repo.Update(context.Background(), widget()); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+items\s+WHERE\s+store_id\s*=\s*\$1\s+AND\s+sku\s*=\s*\$2\s*$`
	mock.ExpectExec(q).WithArgs("s-1", "ABC_1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("s-1", "NOPE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q).WithArgs("s-1", "ERR").WillReturnError(errors.New("db err"))

	if err := repo.Delete(context.Background(), "s-1", "ABC_1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := repo.Delete(context.Background(), "s-1", "NOPE"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
	if err := repo.Delete(context.Background(), "s-1", "ERR"); err == nil || errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
