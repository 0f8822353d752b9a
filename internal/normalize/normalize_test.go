package normalize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapHeader(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"PI", "numero_pi", true},
		{"  pi matriz ", "pi_matriz", true},
		{"CNPJ DO ANUNCIANTE", "cnpj_anunciante", true},
		{"Data  inícial veiculação", "data_inicial_veiculacao", true},
		{"Data inícial veiculação", "Data inícial veiculação", false},
		{"Valor Líquido", "valor_liquido", true},
		{" Coluna Extra ", "Coluna Extra", false},
	}
	for _, tt := range tests {
		got, ok := MapHeader(tt.in)
		require.Equal(t, tt.wantOK, ok, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}
}

func TestColumnsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range Columns {
		require.False(t, seen[c.Field], "duplicate field %s", c.Field)
		seen[c.Field] = true
	}
	require.Len(t, Columns, 27)
}

func TestParseBRL(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"R$ 1.234,50", 1234.50, true},
		{"(200,00)", -200, true},
		{"1234-02", 12.34, true},
		{"1.5", 1.5, true},
		{"−10,5", -10.5, true},
		{"100.000,5", 100000.5, true},
		{"", 0, false},
		{"   ", 0, false},
	}
	for _, tt := range tests {
		got, ok, err := ParseBRL(tt.in)
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.wantOK, ok, tt.in)
		require.InDelta(t, tt.want, got, 1e-9, tt.in)
	}
}

func TestParseBRL_Invalid(t *testing.T) {
	for _, in := range []string{"-", ".", "R$", "abc", "e", "1.2.3"} {
		_, ok, err := ParseBRL(in)
		require.False(t, ok, in)
		require.ErrorIs(t, err, ErrInvalidNumber, in)
	}
}

func TestMoney(t *testing.T) {
	m, err := Money("R$ 1.234,50")
	require.NoError(t, err)
	require.Equal(t, "1234.50", m.String())

	m, err = Money("12,345")
	require.NoError(t, err)
	require.Equal(t, "12345.00", m.String(), "a comma not followed by 1-2 final digits is a thousands separator")

	m, err = Money("0,125")
	require.NoError(t, err)
	require.Equal(t, "125.00", m.String())

	m, err = Money("10.125")
	require.NoError(t, err)
	require.Equal(t, "10.13", m.String())

	m, err = Money("")
	require.NoError(t, err)
	require.Nil(t, m)
}

func TestDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"31/01/2024", "2024-01-31"},
		{"01/02/2024", "2024-02-01"},
		{"5-3-24", "2024-03-05"},
		{"2024-01-31", "2024-01-31"},
		{"2024-01-31 10:30:00", "2024-01-31"},
		{"31/01/2024 08:00:00", "2024-01-31"},
		{"45292", "2024-01-01"},
		{"45292.75", "2024-01-01"},
		{"12/31/2024", "2024-12-31"},
		{"31-01-2024 10:30", "2024-01-31"},
		{"31.01.2024 10:30:15", "2024-01-31"},
		{"31.01.2024", "2024-01-31"},
		{"20240131", "2024-01-31"},
	}
	for _, tt := range tests {
		d, err := Date(tt.in)
		require.NoError(t, err, tt.in)
		require.NotNil(t, d, tt.in)
		require.Equal(t, tt.want, d.String(), tt.in)
	}

	d, err := Date("  ")
	require.NoError(t, err)
	require.Nil(t, d)

	for _, in := range []string{"abc", "2024", "15", "123456", "31/31/2024", "20241399"} {
		d, err = Date(in)
		require.ErrorIs(t, err, ErrInvalidDate, in)
		require.Nil(t, d, in)
	}
}

func TestTaxID(t *testing.T) {
	require.Equal(t, "12345678000199", *TaxID("12.345.678/0001-99"))
	require.Nil(t, TaxID(" -./ "))
	require.Nil(t, TaxID(""))
}

func TestString(t *testing.T) {
	require.Equal(t, "ACME", *String("  ACME "))
	require.Nil(t, String("\t"))
}

func TestProject(t *testing.T) {
	table := &Table{
		Header: []string{"PI", "Extra", "nome do anunciante", "PI"},
		Lines: []Line{
			{Number: 2, Cells: []string{"100", "x", "ACME", "dup"}},
			{Number: 3, Cells: []string{"", " ", "", ""}},
			{Number: 4, Cells: []string{"101"}},
		},
	}
	rows := Project(table)
	require.Len(t, rows, 2)

	require.Equal(t, 2, rows[0].Line)
	require.Equal(t, "100", rows[0].Get("numero_pi"), "first duplicate header wins")
	require.Equal(t, "ACME", rows[0].Get("nome_anunciante"))
	require.Len(t, rows[0].Values, len(Columns))
	_, hasExtra := rows[0].Values["Extra"]
	require.False(t, hasExtra)

	require.Equal(t, 4, rows[1].Line)
	require.Equal(t, "", rows[1].Get("nome_anunciante"))
	require.Equal(t, "", rows[1].Get("valor_bruto"))
}

func TestCoerce(t *testing.T) {
	row := Row{Line: 7, Values: map[string]string{
		"numero_pi":       " 100 ",
		"nome_anunciante": "ACME",
		"cnpj_anunciante": "12.345.678/0001-99",
		"cnpj_agencia":    "98.765.432/0001-10",
		"valor_bruto":     "R$ 1.234,50",
		"valor_liquido":   "n/a",
		"data_da_venda":   "31/01/2024",
		"vencimento":      "31/31/2024",
		"canal":           "",
	}}

	pi, warnings := Coerce(row)

	require.Equal(t, "100", pi.OrderNumber)
	require.Equal(t, "ACME", *pi.AdvertiserName)
	require.Equal(t, "12345678000199", *pi.AdvertiserTaxID)
	require.Equal(t, "98765432000110", *pi.AgencyTaxID)
	require.Equal(t, "1234.50", pi.GrossValue.String())
	require.Nil(t, pi.NetValue)
	require.Equal(t, "2024-01-31", pi.SaleDate.String())
	require.Nil(t, pi.DueDate)
	require.Nil(t, pi.Channel)

	require.Len(t, warnings, 2)
	byColumn := map[string]Warning{}
	for _, w := range warnings {
		byColumn[w.Column] = w
	}
	require.Equal(t, Warning{Line: 7, Column: "valor_liquido", Value: "n/a", Reason: ReasonInvalidNumber}, byColumn["valor_liquido"])
	require.Equal(t, Warning{Line: 7, Column: "vencimento", Value: "31/31/2024", Reason: ReasonInvalidDate}, byColumn["vencimento"])
}
