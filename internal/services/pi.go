package services

import (
	"context"
	"errors"

	"github.com/diewo77/go-pis/internal/models"
	"github.com/diewo77/go-pis/internal/normalize"
	"github.com/diewo77/go-pis/internal/store"
)

// ErrNotFound is returned when a lookup that must match something matches nothing.
var ErrNotFound = errors.New("not found")

// SearchQuery is the query string of GET /pis/search.
type SearchQuery struct {
	Numero     string `form:"numero"`
	CNPJ       string `form:"cnpj"`
	Anunciante string `form:"anunciante"`
	Executivo  string `form:"executivo"`
	Diretoria  string `form:"diretoria"`
	Canal      string `form:"canal"`
	Produto    string `form:"produto"`
	DataIni    string `form:"data_ini"`
	DataFim    string `form:"data_fim"`
	Limit      *int   `form:"limit" validate:"omitempty,min=1,max=1000"`
	Offset     *int   `form:"offset" validate:"omitempty,min=0"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" validate:"omitempty,oneof=asc desc"`
}

type PIService struct {
	store        *store.Store
	defaultLimit int
	nullClears   bool
}

// PIServiceOption customizes a PIService.
type PIServiceOption func(*PIService)

// WithDefaultLimit sets the page size used when a search has no limit.
func WithDefaultLimit(n int) PIServiceOption {
	return func(s *PIService) {
		if n > 0 {
			s.defaultLimit = n
		}
	}
}

// WithNullClears makes an explicit null in a patch clear the field instead of ignoring it.
func WithNullClears(on bool) PIServiceOption {
	return func(s *PIService) { s.nullClears = on }
}

func NewPIService(s *store.Store, opts ...PIServiceOption) *PIService {
	svc := &PIService{store: s, defaultLimit: store.DefaultLimit}
	for _, o := range opts {
		o(svc)
	}
	return svc
}

// ByOrderNumber lists the records of an order number, optionally for one advertiser tax id.
// The tax id may be formatted ("12.345.678/0001-99").
func (s *PIService) ByOrderNumber(ctx context.Context, number, taxID string) ([]models.PI, error) {
	digits := ""
	if taxID != "" {
		d := normalize.TaxID(taxID)
		if d == nil {
			return nil, ErrNotFound
		}
		digits = *d
	}
	out, err := s.store.FindByNumber(ctx, number, digits)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// ByParentOrder lists the records linked to a parent order.
func (s *PIService) ByParentOrder(ctx context.Context, parent string) ([]models.PI, error) {
	out, err := s.store.FindByParent(ctx, parent)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// Search never fails on an empty result. Unparsable dates are ignored and an
// unknown order_by falls back to data_da_venda.
func (s *PIService) Search(ctx context.Context, q SearchQuery) ([]models.PI, error) {
	f := store.Filter{
		OrderNumber: q.Numero,
		Advertiser:  q.Anunciante,
		Executive:   q.Executivo,
		Division:    q.Diretoria,
		Channel:     q.Canal,
		Product:     q.Produto,
		SaleFrom:    parseDay(q.DataIni),
		SaleTo:      parseDay(q.DataFim),
		Limit:       s.defaultLimit,
		OrderBy:     q.OrderBy,
		Desc:        q.OrderDir != "asc",
	}
	if q.CNPJ != "" {
		if d := normalize.TaxID(q.CNPJ); d != nil {
			f.TaxID = *d
		} else {
			f.TaxID = q.CNPJ
		}
	}
	if q.Limit != nil {
		f.Limit = *q.Limit
	}
	if q.Offset != nil {
		f.Offset = *q.Offset
	}
	return s.store.Search(ctx, f)
}

func parseDay(s string) *models.Date {
	if s == "" {
		return nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return nil
	}
	return &d
}

// PatchOperational applies patch to record id and returns the updated record.
// Only data_pulsar, data_pagamento and nota_fiscal can change; each field is independent.
func (s *PIService) PatchOperational(ctx context.Context, id uint, patch models.OperationalPatch) (*models.PI, error) {
	pi, err := s.store.UpdateFields(ctx, id, patch.Columns(s.nullClears))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return pi, err
}
