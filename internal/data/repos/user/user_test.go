package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/scandine-backend/internal/data/repos/testutil"
	types "github.com/yungbote/scandine-backend/internal/domain"
	"github.com/yungbote/scandine-backend/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	created, err := repo.Create(dbc, []*types.User{
		{Email: "  UserRepo@Example.com ", Password: "pw", Role: types.RoleOwner},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 || created[0].ID == uuid.Nil {
		t.Fatalf("Create: unexpected result: %+v", created)
	}
	if created[0].Email != "userrepo@example.com" {
		t.Fatalf("Create email normalization: got %q", created[0].Email)
	}

	gotByIDs, err := repo.GetByIDs(dbc, []uuid.UUID{created[0].ID})
	if err != nil || len(gotByIDs) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(gotByIDs))
	}

	got, err := repo.GetByEmail(dbc, "USERREPO@example.com")
	if err != nil || got == nil || got.ID != created[0].ID {
		t.Fatalf("GetByEmail: err=%v got=%+v", err, got)
	}
	missing, err := repo.GetByEmail(dbc, "nobody@example.com")
	if err != nil || missing != nil {
		t.Fatalf("GetByEmail(missing): err=%v got=%+v", err, missing)
	}

	exists, err := repo.EmailExists(dbc, "userrepo@example.com")
	if err != nil || !exists {
		t.Fatalf("EmailExists: err=%v exists=%v", err, exists)
	}

	until := time.Now().Add(2 * time.Minute).UTC()
	if err := repo.RecordFailedLogin(dbc, created[0].ID, 5, &until); err != nil {
		t.Fatalf("RecordFailedLogin: %v", err)
	}
	got, _ = repo.GetByEmail(dbc, "userrepo@example.com")
	if got.FailedAttempts != 5 || got.LockoutUntil == nil {
		t.Fatalf("after RecordFailedLogin: attempts=%d lockout=%v", got.FailedAttempts, got.LockoutUntil)
	}

	if err := repo.ResetLockout(dbc, created[0].ID); err != nil {
		t.Fatalf("ResetLockout: %v", err)
	}
	got, _ = repo.GetByEmail(dbc, "userrepo@example.com")
	if got.FailedAttempts != 0 || got.LockoutUntil != nil {
		t.Fatalf("after ResetLockout: attempts=%d lockout=%v", got.FailedAttempts, got.LockoutUntil)
	}

	if err := repo.UpdatePassword(dbc, created[0].ID, "new-hash"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	got, _ = repo.GetByEmail(dbc, "userrepo@example.com")
	if got.Password != "new-hash" {
		t.Fatalf("UpdatePassword: want=new-hash got=%q", got.Password)
	}

	if err := repo.UpdateRole(dbc, created[0].ID, types.RoleSuperAdmin); err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	got, _ = repo.GetByEmail(dbc, "userrepo@example.com")
	if got.Role != types.RoleSuperAdmin {
		t.Fatalf("UpdateRole: got %q", got.Role)
	}

	n, err := repo.Count(dbc)
	if err != nil || n < 1 {
		t.Fatalf("Count: err=%v n=%d", err, n)
	}

	if err := repo.DeleteByIDs(dbc, []uuid.UUID{created[0].ID}); err != nil {
		t.Fatalf("DeleteByIDs: %v", err)
	}
	if exists, _ := repo.EmailExists(dbc, "userrepo@example.com"); exists {
		t.Fatalf("EmailExists after delete: expected false")
	}
}
