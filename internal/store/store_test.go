package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/go-pis/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.PI{}))
	return db
}

func strPtr(s string) *string { return &s }

func money(s string) *models.Money { return models.NewMoney(decimal.RequireFromString(s)) }

func datePtr(y int, m time.Month, d int) *models.Date {
	return models.DatePtr(models.NewDate(y, m, d))
}

func seed(t *testing.T, s *Store, pis ...*models.PI) {
	t.Helper()
	for _, pi := range pis {
		require.NoError(t, s.Create(context.Background(), pi))
	}
}

func TestCreateRequiresOrderNumber(t *testing.T) {
	s := New(setupTestDB(t), 0)
	err := s.Create(context.Background(), &models.PI{OrderNumber: "  "})
	require.Error(t, err)
}

func TestFindByKey(t *testing.T) {
	ctx := context.Background()
	s := New(setupTestDB(t), 0)
	withTax := &models.PI{OrderNumber: "100", AdvertiserTaxID: strPtr("111"), AdvertiserName: strPtr("ACME")}
	otherTax := &models.PI{OrderNumber: "100", AdvertiserTaxID: strPtr("222")}
	byName := &models.PI{OrderNumber: "100", AdvertiserName: strPtr("Beta")}
	noName := &models.PI{OrderNumber: "100"}
	seed(t, s, withTax, otherTax, byName, noName)

	got, err := s.FindByKey(ctx, "100", strPtr("222"), nil)
	require.NoError(t, err)
	require.Equal(t, otherTax.ID, got.ID)

	got, err = s.FindByKey(ctx, "100", nil, strPtr("Beta"))
	require.NoError(t, err)
	require.Equal(t, byName.ID, got.ID)

	got, err = s.FindByKey(ctx, "100", nil, nil)
	require.NoError(t, err)
	require.Equal(t, noName.ID, got.ID, "a missing name matches only rows without a name")

	got, err = s.FindByKey(ctx, "100", nil, strPtr("beta"))
	require.NoError(t, err)
	require.Nil(t, got, "names are compared literally")

	got, err = s.FindByKey(ctx, "999", strPtr("111"), nil)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestFindByNumberAndParent(t *testing.T) {
	ctx := context.Background()
	s := New(setupTestDB(t), 0)
	seed(t, s,
		&models.PI{OrderNumber: "100", ParentOrder: strPtr("M1"), AdvertiserTaxID: strPtr("111")},
		&models.PI{OrderNumber: "100", ParentOrder: strPtr("M1"), AdvertiserTaxID: strPtr("222")},
		&models.PI{OrderNumber: "200", ParentOrder: strPtr("M2")},
	)

	all, err := s.FindByNumber(ctx, "100", "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	one, err := s.FindByNumber(ctx, "100", "222")
	require.NoError(t, err)
	require.Len(t, one, 1)
	require.Equal(t, "222", *one[0].AdvertiserTaxID)

	none, err := s.FindByNumber(ctx, "300", "")
	require.NoError(t, err)
	require.NotNil(t, none)
	require.Empty(t, none)

	children, err := s.FindByParent(ctx, "M1")
	require.NoError(t, err)
	require.Len(t, children, 2)
}

func TestSearchFilters(t *testing.T) {
	ctx := context.Background()
	s := New(setupTestDB(t), 0)
	seed(t, s,
		&models.PI{OrderNumber: "1", AdvertiserName: strPtr("ACME Foods"), Channel: strPtr("TV Aberta"), SaleDate: datePtr(2024, 1, 10), GrossValue: money("300")},
		&models.PI{OrderNumber: "2", AdvertiserName: strPtr("Beta"), Channel: strPtr("Rádio"), SaleDate: datePtr(2024, 2, 10), GrossValue: money("100")},
		&models.PI{OrderNumber: "3", AdvertiserName: strPtr("acme drinks"), Executive: strPtr("Ana"), SaleDate: datePtr(2024, 3, 10), GrossValue: money("200")},
	)

	got, err := s.Search(ctx, Filter{Advertiser: "ACME", Desc: true})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "3", got[0].OrderNumber, "default order is data_da_venda")

	got, err = s.Search(ctx, Filter{Channel: "tv"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "1", got[0].OrderNumber)

	got, err = s.Search(ctx, Filter{SaleFrom: datePtr(2024, 2, 10), SaleTo: datePtr(2024, 3, 10)})
	require.NoError(t, err)
	require.Len(t, got, 2, "date range is inclusive")

	got, err = s.Search(ctx, Filter{OrderBy: "valor_bruto", Desc: false})
	require.NoError(t, err)
	require.Equal(t, []string{"2", "3", "1"}, numbers(got))

	got, err = s.Search(ctx, Filter{OrderBy: "id; DROP TABLE pis", Desc: true})
	require.NoError(t, err)
	require.Equal(t, []string{"3", "2", "1"}, numbers(got), "unknown sort columns fall back to data_da_venda")

	got, err = s.Search(ctx, Filter{OrderNumber: "9"})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestSearchPagination(t *testing.T) {
	ctx := context.Background()
	s := New(setupTestDB(t), 3)
	for i := 0; i < 7; i++ {
		seed(t, s, &models.PI{OrderNumber: fmt.Sprint(i), SaleDate: datePtr(2024, 1, 1)})
	}

	seen := map[uint]bool{}
	for offset := 0; offset < 9; offset += 3 {
		page, err := s.Search(ctx, Filter{Limit: 3, Offset: offset})
		require.NoError(t, err)
		for _, pi := range page {
			require.False(t, seen[pi.ID], "id %d returned twice", pi.ID)
			seen[pi.ID] = true
		}
	}
	require.Len(t, seen, 7)

	page, err := s.Search(ctx, Filter{Limit: 50})
	require.NoError(t, err)
	require.Len(t, page, 3, "limit is clamped to the store maximum")

	page, err = s.Search(ctx, Filter{Limit: 3, Offset: -5})
	require.NoError(t, err)
	require.Len(t, page, 3)
}

func TestUpdateFields(t *testing.T) {
	ctx := context.Background()
	s := New(setupTestDB(t), 0)
	pi := &models.PI{OrderNumber: "100", InvoiceNumber: strPtr("NF-1"), Channel: strPtr("TV")}
	seed(t, s, pi)

	paid := models.NewDate(2024, 5, 2)
	got, err := s.UpdateFields(ctx, pi.ID, map[string]any{models.ColPaymentDate: paid})
	require.NoError(t, err)
	require.Equal(t, paid.String(), got.PaymentDate.String())
	require.Equal(t, "NF-1", *got.InvoiceNumber, "other operational fields are untouched")
	require.Equal(t, "TV", *got.Channel)

	got, err = s.UpdateFields(ctx, pi.ID, map[string]any{models.ColInvoiceNumber: nil})
	require.NoError(t, err)
	require.Nil(t, got.InvoiceNumber)
	require.Equal(t, paid.String(), got.PaymentDate.String())

	got, err = s.UpdateFields(ctx, pi.ID, map[string]any{})
	require.NoError(t, err)
	require.Equal(t, pi.ID, got.ID)

	_, err = s.UpdateFields(ctx, pi.ID, map[string]any{"canal": "Radio"})
	require.Error(t, err)

	_, err = s.UpdateFields(ctx, 999, map[string]any{models.ColInvoiceNumber: "x"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	s := New(setupTestDB(t), 0)
	boom := fmt.Errorf("boom")

	err := s.Transaction(ctx, func(tx *Store) error {
		if err := tx.Create(ctx, &models.PI{OrderNumber: "1"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	all, err := s.Search(ctx, Filter{})
	require.NoError(t, err)
	require.Empty(t, all)
}

func numbers(pis []models.PI) []string {
	out := make([]string, len(pis))
	for i, pi := range pis {
		out[i] = pi.OrderNumber
	}
	return out
}
