// Package store is the persistence layer for PI records.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/go-pis/internal/models"
)

// ErrNotFound is returned when a lookup by id matches nothing.
var ErrNotFound = errors.New("record not found")

const (
	DefaultLimit   = 100
	DefaultOrderBy = "data_da_venda"
)

// Orderable lists the columns a search may be sorted by.
var Orderable = map[string]bool{
	"numero_pi":       true,
	"data_da_venda":   true,
	"valor_bruto":     true,
	"valor_liquido":   true,
	"nome_anunciante": true,
	"executivo":       true,
	"diretoria":       true,
	"canal":           true,
	"produto":         true,
}

// Filter narrows a search. Empty strings and nil dates are ignored.
type Filter struct {
	OrderNumber string
	TaxID       string
	Advertiser  string
	Executive   string
	Division    string
	Channel     string
	Product     string
	SaleFrom    *models.Date
	SaleTo      *models.Date
	Limit       int
	Offset      int
	OrderBy     string
	Desc        bool
}

// Store wraps a *gorm.DB. The zero value is not usable; use New.
type Store struct {
	db       *gorm.DB
	maxLimit int
}

// New returns a Store. maxLimit caps Filter.Limit; zero or less means 1000.
func New(db *gorm.DB, maxLimit int) *Store {
	if maxLimit <= 0 {
		maxLimit = 1000
	}
	return &Store{db: db, maxLimit: maxLimit}
}

// DB exposes the underlying handle (health checks, migrations).
func (s *Store) DB() *gorm.DB { return s.db }

// Transaction runs fn with a Store bound to a single transaction.
// Returning an error from fn rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, maxLimit: s.maxLimit})
	})
}

func (s *Store) Create(ctx context.Context, pi *models.PI) error {
	if strings.TrimSpace(pi.OrderNumber) == "" {
		return fmt.Errorf("create pi: numero_pi is required")
	}
	return s.db.WithContext(ctx).Create(pi).Error
}

// Save writes every column of an existing record.
func (s *Store) Save(ctx context.Context, pi *models.PI) error {
	return s.db.WithContext(ctx).Save(pi).Error
}

// FindByKey returns the first record matching the import business key:
// (number, taxID) when taxID is set, otherwise (number, name) where a nil name
// only matches records without an advertiser name. It returns nil, nil when nothing matches.
func (s *Store) FindByKey(ctx context.Context, number string, taxID, name *string) (*models.PI, error) {
	q := s.db.WithContext(ctx).Where("numero_pi = ?", number)
	switch {
	case taxID != nil:
		q = q.Where("cnpj_anunciante = ?", *taxID)
	case name != nil:
		q = q.Where("nome_anunciante = ?", *name)
	default:
		q = q.Where("nome_anunciante IS NULL")
	}
	var pi models.PI
	err := q.Order("id").Take(&pi).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pi, nil
}

// FindByNumber lists the records sharing an order number, optionally restricted to one tax id.
func (s *Store) FindByNumber(ctx context.Context, number, taxID string) ([]models.PI, error) {
	q := s.db.WithContext(ctx).Where("numero_pi = ?", number)
	if taxID != "" {
		q = q.Where("cnpj_anunciante = ?", taxID)
	}
	out := []models.PI{}
	err := q.Order("id").Find(&out).Error
	return out, err
}

// FindByParent lists the records linked to a parent order.
func (s *Store) FindByParent(ctx context.Context, parent string) ([]models.PI, error) {
	out := []models.PI{}
	err := s.db.WithContext(ctx).Where("pi_matriz = ?", parent).Order("id").Find(&out).Error
	return out, err
}

// Search applies f and returns one page. It never returns nil on success.
func (s *Store) Search(ctx context.Context, f Filter) ([]models.PI, error) {
	q := s.db.WithContext(ctx).Model(&models.PI{})
	if f.OrderNumber != "" {
		q = q.Where("numero_pi = ?", f.OrderNumber)
	}
	if f.TaxID != "" {
		q = q.Where("cnpj_anunciante = ?", f.TaxID)
	}
	q = contains(q, "nome_anunciante", f.Advertiser)
	q = contains(q, "executivo", f.Executive)
	q = contains(q, "diretoria", f.Division)
	q = contains(q, "canal", f.Channel)
	q = contains(q, "produto", f.Product)
	if f.SaleFrom != nil {
		q = q.Where("data_da_venda >= ?", *f.SaleFrom)
	}
	if f.SaleTo != nil {
		q = q.Where("data_da_venda <= ?", *f.SaleTo)
	}

	orderBy := f.OrderBy
	if !Orderable[orderBy] {
		orderBy = DefaultOrderBy
	}
	q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: orderBy}, Desc: f.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: f.Desc})

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	out := []models.PI{}
	err := q.Limit(limit).Offset(offset).Find(&out).Error
	return out, err
}

func contains(q *gorm.DB, col, v string) *gorm.DB {
	v = strings.TrimSpace(v)
	if v == "" {
		return q
	}
	return q.Where("LOWER("+col+") LIKE ?", "%"+strings.ToLower(v)+"%")
}

// UpdateFields sets the given operational columns on record id and returns the fresh record.
// Columns outside models.OperationalColumns are rejected. An empty map only loads the record.
func (s *Store) UpdateFields(ctx context.Context, id uint, cols map[string]any) (*models.PI, error) {
	for col := range cols {
		if !models.IsOperationalColumn(col) {
			return nil, fmt.Errorf("column %q is not editable", col)
		}
	}
	var pi models.PI
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&pi, id).Error; err != nil {
			return err
		}
		if len(cols) == 0 {
			return nil
		}
		if err := tx.Model(&pi).Updates(cols).Error; err != nil {
			return err
		}
		return tx.First(&pi, id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pi, nil
}
