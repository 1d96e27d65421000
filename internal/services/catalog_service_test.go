package services_test

import (
	"context"
	"errors"
	"testing"

	"beecommerce/internal/domain"
	"beecommerce/internal/services"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Home & Garden":  "home-and-garden",
		"  Board Games ": "board-games",
		"Électronique":   "electronique",
	}
	for in, want := range cases {
		if got := services.Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCategoryCRUD(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	cat := services.NewCatalogService(db, 5)

	c, err := cat.CreateCategory(ctx, services.CategoryInput{Name: "Board Games"})
	if err != nil {
		t.Fatal(err)
	}
	if c.Slug != "board-games" {
		t.Fatalf("slug: %q", c.Slug)
	}
	if _, err := cat.CreateCategory(ctx, services.CategoryInput{Name: "board games"}); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("duplicate slug accepted: %v", err)
	}
	if _, err := cat.CreateCategory(ctx, services.CategoryInput{Name: "   "}); !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("blank name accepted: %v", err)
	}

	up, err := cat.UpdateCategory(ctx, c.ID, services.CategoryInput{Name: "Tabletop", Description: "dice"})
	if err != nil || up.Slug != "tabletop" || up.Description != "dice" {
		t.Fatalf("update: %v %+v", err, up)
	}

	p, err := cat.CreateProduct(ctx, services.ProductInput{CategoryID: &c.ID, Name: "Chess", Price: "20", Stock: 3})
	if err != nil {
		t.Fatal(err)
	}
	if p.CategorySlug == nil || *p.CategorySlug != "tabletop" || p.Price.StringFixed(2) != "20.00" {
		t.Fatalf("product: %+v", p)
	}

	if err := cat.DeleteCategory(ctx, c.ID); err != nil {
		t.Fatal(err)
	}
	p, err = cat.GetProduct(ctx, p.ID)
	if err != nil || p.CategoryID != nil {
		t.Fatalf("product should survive uncategorised: %v %+v", err, p)
	}
	if err := cat.DeleteCategory(ctx, c.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestProductValidationAndDelete(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	cat := services.NewCatalogService(db, 5)

	bad := []services.ProductInput{
		{Name: "X", Price: "-1", Stock: 1},
		{Name: "X", Price: "1.001", Stock: 1},
		{Name: "X", Price: "abc", Stock: 1},
		{Name: "X", Price: "1.00", Stock: -1},
	}
	for _, in := range bad {
		if _, err := cat.CreateProduct(ctx, in); !errors.Is(err, services.ErrInvalidQuantityOrPrice) {
			t.Errorf("%+v: want ErrInvalidQuantityOrPrice, got %v", in, err)
		}
	}
	ghost := "nope"
	if _, err := cat.CreateProduct(ctx, services.ProductInput{CategoryID: &ghost, Name: "X", Price: "1", Stock: 1}); !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("unknown category accepted: %v", err)
	}

	uid := seedUser(t, db, "alice")
	sold := seedProduct(t, db, "Sold", "1.00", 2)
	spare := seedProduct(t, db, "Spare", "1.00", 2)
	carts := services.NewCartService(db)
	if _, err := carts.AddItem(ctx, uid, sold, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := services.NewOrderService(db, 5).Checkout(ctx, uid); err != nil {
		t.Fatal(err)
	}
	if err := cat.DeleteProduct(ctx, sold); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("ordered product deleted: %v", err)
	}

	if _, err := carts.AddItem(ctx, uid, spare, 1); err != nil {
		t.Fatal(err)
	}
	if err := cat.DeleteProduct(ctx, spare); err != nil {
		t.Fatal(err)
	}
	if items, _ := carts.Items(ctx, uid); len(items) != 0 {
		t.Fatal("deleted product left in cart")
	}
	if _, err := cat.GetProduct(ctx, spare); !errors.Is(err, services.ErrProductNotFound) {
		t.Fatalf("deleted product still readable: %v", err)
	}
}

func TestListProductsPaginates(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	cat := services.NewCatalogService(db, 2)
	for _, n := range []string{"c", "a", "b"} {
		seedProduct(t, db, n, "1.00", 1)
	}
	page1, n, err := cat.ListProducts(ctx, domain.ProductFilter{}, 1)
	if err != nil || n != 3 || len(page1) != 2 || page1[0].Name != "a" {
		t.Fatalf("page 1: n=%d %+v %v", n, page1, err)
	}
	page2, _, err := cat.ListProducts(ctx, domain.ProductFilter{}, 2)
	if err != nil || len(page2) != 1 || page2[0].Name != "c" {
		t.Fatalf("page 2: %+v %v", page2, err)
	}
}
