package service

import (
	"context"
	"strconv"
	"time"

	"github.com/Skotchmaster/product_api/internal/events"
	"github.com/Skotchmaster/product_api/internal/logging"
	"github.com/Skotchmaster/product_api/internal/models"
)

type ProductRepo interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	SeedIfEmpty(ctx context.Context, seed []models.Product) ([]models.Product, error)
	CreateProduct(ctx context.Context, prod *models.Product) (*models.Product, error)
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uint, name string, price float64) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

type Searcher interface {
	SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error)
}

// Indexer keeps an external search index in step with writes.
type Indexer interface {
	IndexProduct(ctx context.Context, p models.Product) error
	RemoveProduct(ctx context.Context, id uint) error
}

type CatalogService struct {
	Repo   ProductRepo
	Search Searcher
	Index  Indexer
	Events events.Publisher
}

// DemoProducts is the fixed set inserted on the first listing of an empty store.
func DemoProducts() []models.Product {
	return []models.Product{
		{Name: "Laptop", Price: 1200.00},
		{Name: "Mouse", Price: 25.00},
		{Name: "Keyboard", Price: 75.00},
	}
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	seeded, err := s.Repo.SeedIfEmpty(ctx, DemoProducts())
	if err != nil {
		return nil, err
	}
	if len(seeded) > 0 {
		logging.FromContext(ctx).Info("products_seeded", "count", len(seeded))
		for _, p := range seeded {
			s.afterWrite(ctx, events.ProductCreated, p)
		}
	}
	return s.Repo.ListProducts(ctx)
}

func (s *CatalogService) CreateProduct(ctx context.Context, name string, price float64) (*models.Product, error) {
	prod, err := s.Repo.CreateProduct(ctx, &models.Product{Name: name, Price: price})
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, events.ProductCreated, *prod)
	return prod, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	return s.Repo.GetProduct(ctx, id)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, name string, price float64) (*models.Product, error) {
	prod, err := s.Repo.UpdateProduct(ctx, id, name, price)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, events.ProductUpdated, *prod)
	return prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.afterWrite(ctx, events.ProductDeleted, models.Product{ID: id})
	return nil
}

func (s *CatalogService) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	return s.Search.SearchProducts(ctx, q, offset, limit)
}

// afterWrite mirrors a committed write to the index and the event stream.
// Failures are logged and never reach the caller.
func (s *CatalogService) afterWrite(ctx context.Context, eventType string, p models.Product) {
	l := logging.FromContext(ctx)

	if s.Index != nil {
		var err error
		if eventType == events.ProductDeleted {
			err = s.Index.RemoveProduct(ctx, p.ID)
		} else {
			err = s.Index.IndexProduct(ctx, p)
		}
		if err != nil {
			l.Error("search_index_error", "event", eventType, "product_id", p.ID, "error", err)
		}
	}

	if s.Events == nil {
		return
	}
	event := events.ProductEvent{
		Type:      eventType,
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		At:        time.Now().UTC(),
	}
	if err := s.Events.PublishEvent(ctx, strconv.FormatUint(uint64(p.ID), 10), event); err != nil {
		l.Error("kafka_publish_error", "event", eventType, "product_id", p.ID, "error", err)
	}
}
