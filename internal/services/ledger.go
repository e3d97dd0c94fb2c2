package services

import (
	"context"

	"github.com/diewo77/go-invoices/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ledger moves products in and out of invoices. Its methods run on the
// caller's transaction so that a failed mutation leaves no partial attachment.
type Ledger struct{}

// Attach makes productIDs the exact product set of invoiceID. Products dropped
// from the set become available again; selected products must be available or
// already attached to invoiceID. Fewer claimable rows than requested means
// another invoice won the race and yields a ConflictError.
func (Ledger) Attach(ctx context.Context, tx *gorm.DB, invoiceID uuid.UUID, productIDs []uuid.UUID) error {
	ids := uniqueIDs(productIDs)
	if len(ids) == 0 {
		return invalid("product_ids", "at_least_one")
	}
	tx = tx.WithContext(ctx)

	var found []uuid.UUID
	if err := tx.Model(&models.Product{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return wrap("attach products", err)
	}
	if len(found) != len(ids) {
		return notFound("product", missingID(ids, found))
	}

	if err := tx.Model(&models.Product{}).
		Where("invoice_id = ? AND id NOT IN ?", invoiceID, ids).
		Update("invoice_id", nil).Error; err != nil {
		return wrap("detach products", err)
	}

	res := tx.Model(&models.Product{}).
		Where("id IN ? AND (invoice_id IS NULL OR invoice_id = ?)", ids, invoiceID).
		Update("invoice_id", invoiceID)
	if res.Error != nil {
		return wrap("attach products", res.Error)
	}
	if res.RowsAffected != int64(len(ids)) {
		var taken []uuid.UUID
		if err := tx.Model(&models.Product{}).
			Where("id IN ? AND invoice_id IS NOT NULL AND invoice_id <> ?", ids, invoiceID).
			Pluck("id", &taken).Error; err != nil {
			return wrap("attach products", err)
		}
		return &ConflictError{Code: CodeProductUnavailable, IDs: taken}
	}
	return nil
}

// DetachAll releases every product of invoiceID and returns how many were released.
func (Ledger) DetachAll(ctx context.Context, tx *gorm.DB, invoiceID uuid.UUID) (int64, error) {
	res := tx.WithContext(ctx).Model(&models.Product{}).
		Where("invoice_id = ?", invoiceID).
		Update("invoice_id", nil)
	if res.Error != nil {
		return 0, wrap("detach products", res.Error)
	}
	return res.RowsAffected, nil
}

// Products returns the products attached to invoiceID, ordered by name.
func (Ledger) Products(ctx context.Context, db *gorm.DB, invoiceID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	if err := db.WithContext(ctx).Where("invoice_id = ?", invoiceID).Order("name ASC").Find(&products).Error; err != nil {
		return nil, wrap("list invoice products", err)
	}
	return products, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func missingID(want, found []uuid.UUID) uuid.UUID {
	have := make(map[uuid.UUID]struct{}, len(found))
	for _, id := range found {
		have[id] = struct{}{}
	}
	for _, id := range want {
		if _, ok := have[id]; !ok {
			return id
		}
	}
	return uuid.Nil
}
