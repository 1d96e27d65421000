package services

import (
	"context"
	"encoding/json"
	"fmt"

	"beecommerce/internal/domain"
	"beecommerce/internal/repos"
	"beecommerce/internal/validate"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type CatalogService struct {
	DB       *sqlx.DB
	Cats     *repos.CategoryRepo
	Prods    *repos.ProductRepo
	PageSize int
}

func NewCatalogService(db *sqlx.DB, pageSize int) *CatalogService {
	if pageSize <= 0 {
		pageSize = 5
	}
	return &CatalogService{DB: db, Cats: repos.NewCategoryRepo(db), Prods: repos.NewProductRepo(db), PageSize: pageSize}
}

// CategoryInput is the writable part of a category.
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProductInput is the writable part of a product. Price is kept as the raw
// JSON number (quoted or not) so that no float ever touches it.
type ProductInput struct {
	CategoryID  *string     `json:"category_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Stock       int         `json:"stock"`
	Available   *bool       `json:"available"`
}

func (s *CatalogService) offset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * s.PageSize
}

func (s *CatalogService) ListCategories(ctx context.Context, page int) ([]domain.Category, int, error) {
	n, err := s.Cats.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	out, err := s.Cats.List(ctx, s.PageSize, s.offset(page))
	return out, n, err
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	c, err := s.Cats.Get(ctx, id)
	if err != nil {
		return domain.Category{}, notFoundAs(err, ErrNotFound)
	}
	return c, nil
}

// Slugify derives the URL-safe category slug from its name.
func Slugify(name string) string { return slug.Make(name) }

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (domain.Category, error) {
	name, ok := validate.Name(in.Name, 100)
	if !ok {
		return domain.Category{}, fmt.Errorf("%w: name must be 1-100 characters", ErrInvalidInput)
	}
	c := domain.Category{ID: uuid.NewString(), Name: name, Slug: Slugify(name), Description: in.Description}
	if c.Slug == "" {
		return domain.Category{}, fmt.Errorf("%w: name must contain letters or digits", ErrInvalidInput)
	}
	err := repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		cats := repos.NewCategoryRepo(tx)
		taken, err := cats.Taken(ctx, c.Name, c.Slug, "")
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: category %q already exists", ErrConflict, c.Name)
		}
		return cats.Create(ctx, &c)
	})
	return c, err
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id string, in CategoryInput) (domain.Category, error) {
	name, ok := validate.Name(in.Name, 100)
	if !ok {
		return domain.Category{}, fmt.Errorf("%w: name must be 1-100 characters", ErrInvalidInput)
	}
	var c domain.Category
	err := repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		cats := repos.NewCategoryRepo(tx)
		cur, err := cats.Get(ctx, id)
		if err != nil {
			return notFoundAs(err, ErrNotFound)
		}
		cur.Name, cur.Slug, cur.Description = name, Slugify(name), in.Description
		taken, err := cats.Taken(ctx, cur.Name, cur.Slug, id)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: category %q already exists", ErrConflict, cur.Name)
		}
		if err := cats.Update(ctx, &cur); err != nil {
			return err
		}
		c = cur
		return nil
	})
	return c, err
}

// DeleteCategory removes the category; its products stay, uncategorised.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	return repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		return notFoundAs(repos.NewCategoryRepo(tx).Delete(ctx, id), ErrNotFound)
	})
}

func (s *CatalogService) ListProducts(ctx context.Context, f domain.ProductFilter, page int) ([]domain.Product, int, error) {
	n, err := s.Prods.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	out, err := s.Prods.List(ctx, f, s.PageSize, s.offset(page))
	return out, n, err
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	p, err := s.Prods.Get(ctx, id)
	if err != nil {
		return domain.Product{}, notFoundAs(err, ErrProductNotFound)
	}
	return p, nil
}

func (s *CatalogService) parseProduct(in ProductInput) (domain.Product, error) {
	name, ok := validate.Name(in.Name, 200)
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: name must be 1-200 characters", ErrInvalidInput)
	}
	price, ok := validate.Price(in.Price.String())
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: price must be a non-negative amount with at most 2 decimals", ErrInvalidQuantityOrPrice)
	}
	if !validate.Stock(in.Stock) {
		return domain.Product{}, fmt.Errorf("%w: stock must be >= 0", ErrInvalidQuantityOrPrice)
	}
	p := domain.Product{
		CategoryID:  in.CategoryID,
		Name:        name,
		Description: in.Description,
		Price:       domain.NewMoney(price.Round(2)),
		Stock:       in.Stock,
		Available:   true,
	}
	if in.Available != nil {
		p.Available = *in.Available
	}
	if p.CategoryID != nil && *p.CategoryID == "" {
		p.CategoryID = nil
	}
	return p, nil
}

func (s *CatalogService) checkCategory(ctx context.Context, cats *repos.CategoryRepo, id *string) error {
	if id == nil {
		return nil
	}
	if _, err := cats.Get(ctx, *id); err != nil {
		if repos.IsNotFound(err) {
			return fmt.Errorf("%w: category %s does not exist", ErrInvalidInput, *id)
		}
		return err
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (domain.Product, error) {
	p, err := s.parseProduct(in)
	if err != nil {
		return domain.Product{}, err
	}
	p.ID = uuid.NewString()
	err = repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		if err := s.checkCategory(ctx, repos.NewCategoryRepo(tx), p.CategoryID); err != nil {
			return err
		}
		prods := repos.NewProductRepo(tx)
		if err := prods.Create(ctx, &p); err != nil {
			return err
		}
		p, err = prods.Get(ctx, p.ID)
		return err
	})
	return p, err
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in ProductInput) (domain.Product, error) {
	p, err := s.parseProduct(in)
	if err != nil {
		return domain.Product{}, err
	}
	p.ID = id
	err = repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		if err := s.checkCategory(ctx, repos.NewCategoryRepo(tx), p.CategoryID); err != nil {
			return err
		}
		prods := repos.NewProductRepo(tx)
		if err := prods.Update(ctx, &p); err != nil {
			return notFoundAs(err, ErrProductNotFound)
		}
		p, err = prods.Get(ctx, id)
		return err
	})
	return p, err
}

// DeleteProduct refuses products that appear in any order; mark them
// unavailable instead so order history stays intact.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	return repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		prods := repos.NewProductRepo(tx)
		ordered, err := prods.Ordered(ctx, id)
		if err != nil {
			return err
		}
		if ordered {
			return fmt.Errorf("%w: product %s has orders; mark it unavailable instead", ErrConflict, id)
		}
		return notFoundAs(prods.Delete(ctx, id), ErrProductNotFound)
	})
}

// PriceTotal sums price × quantity over lines without leaving decimal.
func PriceTotal[T any](lines []T, price func(T) decimal.Decimal, qty func(T) int) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(price(l).Mul(decimal.NewFromInt(int64(qty(l)))))
	}
	return total
}

func notFoundAs(err, as error) error {
	if repos.IsNotFound(err) {
		return as
	}
	return err
}
