package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/yungbote/scandine-backend/internal/data/repos/testutil"
	types "github.com/yungbote/scandine-backend/internal/domain"
	"github.com/yungbote/scandine-backend/internal/platform/dbctx"
)

func TestCategoryRepoScopesByShop(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewCategoryRepo(db, testutil.Logger(t))

	mine := testutil.SeedShop(t, ctx, tx, "cat-mine", types.PlanPro)
	other := testutil.SeedShop(t, ctx, tx, "cat-other", types.PlanPro)

	next, err := repo.NextSortOrder(dbc, mine.ID)
	if err != nil || next != 0 {
		t.Fatalf("NextSortOrder(empty): err=%v next=%d", err, next)
	}

	burgers := testutil.SeedCategory(t, ctx, tx, mine.ID, "Burgers", 3)
	salads := testutil.SeedCategory(t, ctx, tx, mine.ID, "Salads", 1)
	foreign := testutil.SeedCategory(t, ctx, tx, other.ID, "Foreign", 0)

	next, err = repo.NextSortOrder(dbc, mine.ID)
	if err != nil || next != 4 {
		t.Fatalf("NextSortOrder: want=4 err=%v next=%d", err, next)
	}

	list, err := repo.ListByShop(dbc, mine.ID)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListByShop: err=%v len=%d", err, len(list))
	}
	if list[0].ID != salads.ID || list[1].ID != burgers.ID {
		t.Fatalf("ListByShop order: got %s, %s", list[0].Name, list[1].Name)
	}

	if got, err := repo.GetByID(dbc, mine.ID, foreign.ID); err != nil || got != nil {
		t.Fatalf("GetByID(foreign): err=%v got=%+v", err, got)
	}

	burgers.NameKh = "បឺហ្គឺ"
	burgers.SortOrder = 0
	if err := repo.Update(dbc, mine.ID, burgers); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := repo.GetByID(dbc, mine.ID, burgers.ID)
	if got.NameKh != "បឺហ្គឺ" || got.SortOrder != 0 {
		t.Fatalf("Update: unexpected %+v", got)
	}

	if ok, err := repo.SetSortOrder(dbc, mine.ID, foreign.ID, 9); err != nil || ok {
		t.Fatalf("SetSortOrder(foreign): err=%v ok=%v", err, ok)
	}
	if ok, err := repo.Delete(dbc, mine.ID, foreign.ID); err != nil || ok {
		t.Fatalf("Delete(foreign): err=%v ok=%v", err, ok)
	}
	if ok, err := repo.Delete(dbc, mine.ID, salads.ID); err != nil || !ok {
		t.Fatalf("Delete: err=%v ok=%v", err, ok)
	}
}

func TestProductRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewProductRepo(db, testutil.Logger(t))

	mine := testutil.SeedShop(t, ctx, tx, "prod-mine", types.PlanPro)
	other := testutil.SeedShop(t, ctx, tx, "prod-other", types.PlanPro)
	cat := testutil.SeedCategory(t, ctx, tx, mine.ID, "Burgers", 0)

	p, err := repo.Create(dbc, &types.Product{
		ShopID:     mine.ID,
		CategoryID: testutil.PtrUUID(cat.ID),
		Name:       "Cheese Burger",
		NameZh:     "芝士汉堡",
		Price:      4.5,
		ImageKey:   "products/x/cheese.jpg",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	testutil.SeedProduct(t, ctx, tx, mine.ID, nil, "Iced Tea", 1.25)
	foreign := testutil.SeedProduct(t, ctx, tx, other.ID, nil, "Cheese Cake", 3)

	got, err := repo.GetByID(dbc, mine.ID, p.ID)
	if err != nil || got == nil || got.Category == nil || got.Category.Name != "Burgers" {
		t.Fatalf("GetByID: err=%v got=%+v", err, got)
	}
	if got, err := repo.GetByID(dbc, mine.ID, foreign.ID); err != nil || got != nil {
		t.Fatalf("GetByID(foreign): err=%v got=%+v", err, got)
	}
	if got, err := repo.GetByIDUnscoped(dbc, foreign.ID); err != nil || got == nil {
		t.Fatalf("GetByIDUnscoped: err=%v got=%+v", err, got)
	}

	list, err := repo.ListByShop(dbc, mine.ID, ProductFilter{Search: "CHEESE"})
	if err != nil || len(list) != 1 || list[0].ID != p.ID {
		t.Fatalf("ListByShop(search): err=%v len=%d", err, len(list))
	}
	list, err = repo.ListByShop(dbc, mine.ID, ProductFilter{Search: "芝士"})
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByShop(search zh): err=%v len=%d", err, len(list))
	}
	list, err = repo.ListByShop(dbc, mine.ID, ProductFilter{CategoryID: testutil.PtrUUID(cat.ID)})
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByShop(category): err=%v len=%d", err, len(list))
	}

	if n, err := repo.CountByCategory(dbc, mine.ID, cat.ID); err != nil || n != 1 {
		t.Fatalf("CountByCategory: err=%v n=%d", err, n)
	}
	counts, err := repo.CountByShopIDs(dbc, []uuid.UUID{mine.ID, other.ID})
	if err != nil || counts[mine.ID] != 2 || counts[other.ID] != 1 {
		t.Fatalf("CountByShopIDs: err=%v counts=%v", err, counts)
	}

	got.Price = 5
	got.Category = nil
	if err := repo.Save(dbc, got); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, _ = repo.GetByID(dbc, mine.ID, p.ID)
	if got.Price != 5 {
		t.Fatalf("Save price: want=5 got=%v", got.Price)
	}

	if ok, err := repo.Delete(dbc, mine.ID, foreign.ID); err != nil || ok {
		t.Fatalf("Delete(foreign): err=%v ok=%v", err, ok)
	}
	if err := repo.DeleteByShopID(dbc, mine.ID); err != nil {
		t.Fatalf("DeleteByShopID: %v", err)
	}
	list, _ = repo.ListByShop(dbc, mine.ID, ProductFilter{})
	if len(list) != 0 {
		t.Fatalf("after DeleteByShopID: len=%d", len(list))
	}
}
