package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/product_api/internal/models"
)

// GormRepo reports missing rows as gorm.ErrRecordNotFound, including deletes
// that matched nothing.
type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) ListProducts(ctx context.Context) ([]models.Product, error) {
	items := make([]models.Product, 0)
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// SeedIfEmpty inserts seed only when the table has no rows. The count and the
// inserts share one transaction. It returns the rows it inserted, if any.
func (r *GormRepo) SeedIfEmpty(ctx context.Context, seed []models.Product) ([]models.Product, error) {
	var inserted []models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var total int64
		if err := tx.Model(&models.Product{}).Count(&total).Error; err != nil {
			return err
		}
		if total > 0 || len(seed) == 0 {
			return nil
		}

		items := make([]models.Product, len(seed))
		copy(items, seed)
		for i := range items {
			items[i].ID = 0
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		inserted = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) (*models.Product, error) {
	prod.ID = 0
	if err := r.DB.WithContext(ctx).Create(prod).Error; err != nil {
		return nil, err
	}
	return prod, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) UpdateProduct(ctx context.Context, id uint, name string, price float64) (*models.Product, error) {
	var prod models.Product
	if err := r.DB.WithContext(ctx).First(&prod, id).Error; err != nil {
		return nil, err
	}

	prod.Name = name
	prod.Price = price

	if err := r.DB.WithContext(ctx).Save(&prod).Error; err != nil {
		return nil, err
	}
	return &prod, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SearchProducts is the SQL fallback used when no search cluster is configured:
// a case-insensitive substring match on name.
func (r *GormRepo) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	pattern := "%" + strings.ToLower(q) + "%"
	where := r.DB.WithContext(ctx).Model(&models.Product{}).Where("LOWER(name) LIKE ?", pattern)

	var total int64
	if err := where.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("LOWER(name) LIKE ?", pattern).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}
