package crm

import (
	"context"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/yungbote/crm-backend/internal/data/repos/testutil"
	types "github.com/yungbote/crm-backend/internal/domain"
	"github.com/yungbote/crm-backend/internal/platform/dbctx"
)

func strPtr(s string) *string { return &s }

func TestCustomerRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewCustomerRepo(db, testutil.Logger(t))

	created, err := repo.Create(dbc, []*types.Customer{
		{Name: "Alice", Email: "alice@example.com", Phone: strPtr("+12345678901")},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 || created[0].ID == uuid.Nil {
		t.Fatalf("Create: expected 1 customer with id, got %+v", created)
	}

	got, err := repo.GetByID(dbc, created[0].ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.Email != "alice@example.com" {
		t.Fatalf("GetByID: unexpected result: %+v", got)
	}

	missing, err := repo.GetByID(dbc, uuid.New())
	if err != nil {
		t.Fatalf("GetByID (missing): %v", err)
	}
	if missing != nil {
		t.Fatalf("GetByID (missing): expected nil, got %+v", missing)
	}

	byEmail, err := repo.GetByEmails(dbc, []string{"alice@example.com", "nobody@example.com"})
	if err != nil {
		t.Fatalf("GetByEmails: %v", err)
	}
	if len(byEmail) != 1 {
		t.Fatalf("GetByEmails: expected 1, got %d", len(byEmail))
	}

	exists, err := repo.EmailExists(dbc, "alice@example.com")
	if err != nil {
		t.Fatalf("EmailExists: %v", err)
	}
	if !exists {
		t.Fatalf("EmailExists: expected true")
	}

	count, err := repo.Count(dbc)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("Count: expected 1, got %d", count)
	}
}

func TestCustomerRepo_CreateIgnoringConflicts(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	testutil.SeedCustomer(t, ctx, tx, "Existing", "taken@example.com")
	repo := NewCustomerRepo(db, testutil.Logger(t))

	written, err := repo.CreateIgnoringConflicts(dbc, []*types.Customer{
		{Name: "New One", Email: "new1@example.com"},
		{Name: "Clash", Email: "taken@example.com"},
		{Name: "New Two", Email: "new2@example.com"},
	})
	if err != nil {
		t.Fatalf("CreateIgnoringConflicts: %v", err)
	}
	if len(written) != 2 {
		t.Fatalf("expected 2 written rows, got %d", len(written))
	}
	if written[0].Email != "new1@example.com" || written[1].Email != "new2@example.com" {
		t.Fatalf("unexpected rows or order: %s, %s", written[0].Email, written[1].Email)
	}

	count, err := repo.Count(dbc)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 customers, got %d", count)
	}
}

func TestCustomerRepo_List(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewCustomerRepo(db, testutil.Logger(t))
	if _, err := repo.Create(dbc, []*types.Customer{
		{Name: "Alice Smith", Email: "alice@example.com", Phone: strPtr("+12345678901")},
		{Name: "Bob Jones", Email: "bob@corp.test", Phone: strPtr("555-123-4567")},
		{Name: "Carol 100%", Email: "carol@example.com"},
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	byName, err := repo.List(dbc, CustomerFilter{Name: "SMITH"})
	if err != nil {
		t.Fatalf("List by name: %v", err)
	}
	if len(byName) != 1 || byName[0].Name != "Alice Smith" {
		t.Fatalf("List by name: unexpected %+v", byName)
	}

	byEmail, err := repo.List(dbc, CustomerFilter{Email: "example.com"})
	if err != nil {
		t.Fatalf("List by email: %v", err)
	}
	if len(byEmail) != 2 {
		t.Fatalf("List by email: expected 2, got %d", len(byEmail))
	}

	literal, err := repo.List(dbc, CustomerFilter{Name: "100%"})
	if err != nil {
		t.Fatalf("List literal percent: %v", err)
	}
	if len(literal) != 1 {
		t.Fatalf("List literal percent: expected 1, got %d", len(literal))
	}

	byPhone, err := repo.List(dbc, CustomerFilter{PhonePattern: regexp.MustCompile(`^\d{3}-`)})
	if err != nil {
		t.Fatalf("List by phone: %v", err)
	}
	if len(byPhone) != 1 || byPhone[0].Name != "Bob Jones" {
		t.Fatalf("List by phone: unexpected %+v", byPhone)
	}
}
