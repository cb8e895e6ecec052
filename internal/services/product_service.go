// internal/services/product_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/models"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

// Catalog resolves products by id. Implementations return products already
// normalized by models.Product decoding.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}

const getProductQuery = `query GetProduct($id: String!) {
  product(id: $id) {
    id
    name
    description
    category
    inStock
    gallery
    prices { amount }
    attributes { id name type items { displayValue value id } }
  }
}`

// GraphQLCatalog reads products from the storefront GraphQL endpoint.
type GraphQLCatalog struct {
	client *GraphQLClient
}

func NewGraphQLCatalog(client *GraphQLClient) *GraphQLCatalog {
	return &GraphQLCatalog{client: client}
}

func (c *GraphQLCatalog) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var data struct {
		Product *models.Product `json:"product"`
	}
	if err := c.client.Do(ctx, getProductQuery, map[string]interface{}{"id": id}, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	if data.Product == nil {
		return nil, ErrProductNotFound
	}
	return data.Product, nil
}

// StaticCatalog serves a fixed product list, loaded from a JSON file or
// built in memory.
type StaticCatalog struct {
	products map[string]*models.Product
}

func NewStaticCatalog(products ...models.Product) *StaticCatalog {
	c := &StaticCatalog{products: make(map[string]*models.Product, len(products))}
	for i := range products {
		p := products[i]
		c.products[strings.TrimSpace(p.ID)] = &p
	}
	return c
}

// LoadStaticCatalog reads a catalog file. Accepted shapes: an array of
// products, {"products": [...]} or a GraphQL-style {"data": {"products": [...]}}.
func LoadStaticCatalog(path string) (*StaticCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	products, err := decodeCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode catalog file %s: %w", path, err)
	}
	return NewStaticCatalog(products...), nil
}

func decodeCatalog(data []byte) ([]models.Product, error) {
	var list []models.Product
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Products []models.Product `json:"products"`
		Data     *struct {
			Products []models.Product `json:"products"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Data != nil && len(wrapped.Data.Products) > 0 {
		return wrapped.Data.Products, nil
	}
	return wrapped.Products, nil
}

func (c *StaticCatalog) GetProduct(_ context.Context, id string) (*models.Product, error) {
	p, ok := c.products[strings.TrimSpace(id)]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	cp.Prices = append([]models.Price(nil), p.Prices...)
	cp.Gallery = append([]string(nil), p.Gallery...)
	cp.Attributes = models.CloneAttributeSets(p.Attributes)
	return &cp, nil
}

func (c *StaticCatalog) Len() int {
	return len(c.products)
}

// NewCatalog picks the catalog source from configuration. A local file wins
// over the GraphQL endpoint; with neither configured the catalog is empty.
func NewCatalog(cfg config.CatalogConfig) (Catalog, error) {
	switch {
	case cfg.File != "":
		catalog, err := LoadStaticCatalog(cfg.File)
		if err != nil {
			return nil, err
		}
		logrus.WithFields(logrus.Fields{
			"file":     cfg.File,
			"products": catalog.Len(),
		}).Info("Loaded product catalog file")
		return catalog, nil
	case cfg.GraphQLURL != "":
		timeout := time.Duration(cfg.Timeout) * time.Second
		return NewGraphQLCatalog(NewGraphQLClient(cfg.GraphQLURL, timeout)), nil
	default:
		logrus.Warn("No catalog configured, product lookups will fail")
		return NewStaticCatalog(), nil
	}
}

// ProductService fronts the catalog for handlers.
type ProductService struct {
	catalog Catalog
}

func NewProductService(catalog Catalog) *ProductService {
	return &ProductService{catalog: catalog}
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrProductNotFound
	}

	product, err := s.catalog.GetProduct(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrProductNotFound) {
			logrus.WithError(err).WithField("product_id", id).Warn("Catalog lookup failed")
		}
		return nil, err
	}
	return product, nil
}
