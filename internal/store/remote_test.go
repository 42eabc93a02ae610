package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"

	"github.com/spincity/backoffice/internal/models"
)

func setupRemoteMock(t *testing.T) (*Store, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	st := NewRemote(db, zap.NewNop())
	cleanup := func() { db.Close() }
	return st, mock, cleanup
}

func TestRemoteList_IDColumnIsAuthoritative(t *testing.T) {
	st, mock, cleanup := setupRemoteMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "data"}).
		AddRow("doc-1", `{"id":"stale","fullName":"Ama Mensah"}`).
		AddRow("doc-2", `{"fullName":"Kofi Boateng"}`)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, data FROM documents WHERE collection = $1`)).
		WithArgs(SlotContacts).
		WillReturnRows(rows)

	contacts, err := st.Contacts.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contacts) != 2 {
		t.Fatalf("expected 2 contacts, got %d", len(contacts))
	}
	if contacts[0].ID != "doc-1" || contacts[1].ID != "doc-2" {
		t.Errorf("ids not taken from the id column: %+v", contacts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestRemoteList_QueryErrorDegradesToEmpty(t *testing.T) {
	st, mock, cleanup := setupRemoteMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, data FROM documents WHERE collection = $1`)).
		WithArgs(SlotContacts).
		WillReturnError(errors.New("connection refused"))

	contacts, err := st.Contacts.List(context.Background())
	if err != nil {
		t.Fatalf("expected degraded read, got error: %v", err)
	}
	if len(contacts) != 0 {
		t.Errorf("expected empty list, got %d records", len(contacts))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestRemoteList_CorruptDocumentSkipped(t *testing.T) {
	st, mock, cleanup := setupRemoteMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "data"}).
		AddRow("doc-1", `{broken`).
		AddRow("doc-2", `{"vendorName":"GE Appliances"}`)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, data FROM documents WHERE collection = $1`)).
		WithArgs(SlotVendors).
		WillReturnRows(rows)

	vendors, err := st.Vendors.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vendors) != 1 || vendors[0].ID != "doc-2" {
		t.Errorf("expected only the intact document, got %+v", vendors)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestRemoteCreate_BackendAssignsID(t *testing.T) {
	st, mock, cleanup := setupRemoteMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO documents (collection, data) VALUES ($1, $2) RETURNING id`)).
		WithArgs(SlotSales, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("assigned-id"))

	created, err := st.Sales.Create(context.Background(), models.Sale{ItemID: "i1", BuyerName: "Yaw"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != "assigned-id" {
		t.Errorf("expected backend-assigned id, got %q", created.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestRemoteUpdate_UnknownIDIsNoOp(t *testing.T) {
	st, mock, cleanup := setupRemoteMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE documents SET data = $3 WHERE collection = $1 AND id = $2`)).
		WithArgs(SlotInventory, "no-such-id", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := st.Inventory.Update(context.Background(), models.InventoryItem{ID: "no-such-id"})
	if err != nil {
		t.Fatalf("expected silent no-op, got error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestRemoteDelete(t *testing.T) {
	st, mock, cleanup := setupRemoteMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM documents WHERE collection = $1 AND id = $2`)).
		WithArgs(SlotRepairs, "doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := st.Repairs.Delete(context.Background(), "doc-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestRemoteReplace_RunsInOneTransaction(t *testing.T) {
	st, mock, cleanup := setupRemoteMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM documents WHERE collection = $1`)).
		WithArgs(SlotUsers).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)`)).
		WithArgs(SlotUsers, "legacy-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO documents (collection, data) VALUES ($1, $2) RETURNING id`)).
		WithArgs(SlotUsers, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("fresh-id"))
	mock.ExpectCommit()

	users := []models.User{
		{ID: "legacy-1", Name: "Admin User"},
		{Name: "No ID Yet"},
	}
	if err := st.Users.Replace(context.Background(), users); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestRemoteKV_GetSeedsDefaultWhenAbsent(t *testing.T) {
	st, mock, cleanup := setupRemoteMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM settings WHERE key = $1`)).
		WithArgs(SlotAdminKey).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO settings (key, value) VALUES ($1, $2)`)).
		WithArgs(SlotAdminKey, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	value, err := st.KV.Get(context.Background(), SlotAdminKey, []byte(`"admin"`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(value) != `"admin"` {
		t.Errorf("expected default value, got %s", value)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestRemoteKV_GetUnwrapsStoredValue(t *testing.T) {
	st, mock, cleanup := setupRemoteMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM settings WHERE key = $1`)).
		WithArgs(SlotAppLogo).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`{"value":"data:image/png;base64,AAA"}`))

	value, err := st.KV.Get(context.Background(), SlotAppLogo, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(value) != `"data:image/png;base64,AAA"` {
		t.Errorf("unexpected value: %s", value)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
