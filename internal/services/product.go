package services

import (
	"context"
	"errors"
	"strings"

	"github.com/diewo77/go-invoices/internal/models"
	"github.com/diewo77/go-invoices/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductInput is the payload of product create and update.
type ProductInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	Price       int64  `json:"price" validate:"gt=0"`
}

// ProductService owns the product catalog.
type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func (in ProductInput) description() *string {
	d := strings.TrimSpace(in.Description)
	if d == "" {
		return nil
	}
	return &d
}

// Create stores a new, available product.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*ProductRow, error) {
	in.Name = strings.TrimSpace(in.Name)
	if v := validation.Struct(in); !v.Empty() {
		return nil, &ValidationError{Fields: v}
	}
	p := models.Product{Name: in.Name, Description: in.description(), Price: in.Price}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, wrap("create product", err)
	}
	row := productRow(&p)
	return &row, nil
}

// Update rewrites name, description and price. The invoice link is owned by the ledger.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, in ProductInput) (*ProductRow, error) {
	in.Name = strings.TrimSpace(in.Name)
	if v := validation.Struct(in); !v.Empty() {
		return nil, &ValidationError{Fields: v}
	}
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(p).Updates(map[string]any{
		"name":        in.Name,
		"description": in.description(),
		"price":       in.Price,
	}).Error; err != nil {
		return nil, wrap("update product", err)
	}
	p.Name, p.Description, p.Price = in.Name, in.description(), in.Price
	row := productRow(p)
	return &row, nil
}

// Delete removes an available product. Sold products stay so that invoice totals do not change.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND invoice_id IS NULL", id).Delete(&models.Product{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			return nil
		}
		var p models.Product
		err := tx.First(&p, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("product", id)
		}
		if err != nil {
			return err
		}
		return &ConflictError{Code: CodeProductSold, IDs: []uuid.UUID{id}}
	})
	return wrap("delete product", err)
}

// Get returns one product with its status.
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*ProductRow, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	row := productRow(p)
	return &row, nil
}

// Available lists every product that can still be put on an invoice.
func (s *ProductService) Available(ctx context.Context) ([]ProductRow, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Where("invoice_id IS NULL").Order("name ASC").Find(&products).Error; err != nil {
		return nil, wrap("list available products", err)
	}
	return productRows(products), nil
}

// FetchFiltered returns one page of products whose name or description contains query.
func (s *ProductService) FetchFiltered(ctx context.Context, query string, page int) ([]ProductRow, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).
		Scopes(productFilter(query)).
		Order("name ASC").
		Order("id ASC").
		Limit(PageSize).
		Offset(NewPage(page).Offset()).
		Find(&products).Error; err != nil {
		return nil, wrap("fetch filtered products", err)
	}
	return productRows(products), nil
}

// FetchPages returns the number of pages FetchFiltered has for query.
func (s *ProductService) FetchPages(ctx context.Context, query string) (int, error) {
	var total int64
	if err := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Scopes(productFilter(query)).
		Count(&total).Error; err != nil {
		return 0, wrap("count filtered products", err)
	}
	return PageCount(total), nil
}

func productFilter(query string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if strings.TrimSpace(query) == "" {
			return db
		}
		like := containsPattern(query)
		return db.Where("(LOWER(name) LIKE ?"+likeEscape+" OR LOWER(COALESCE(description, '')) LIKE ?"+likeEscape+")", like, like)
	}
}

func (s *ProductService) find(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("product", id)
	}
	if err != nil {
		return nil, wrap("find product", err)
	}
	return &p, nil
}
