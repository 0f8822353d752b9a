// Package normalize maps spreadsheet headers onto the PI schema and coerces
// raw cell text into typed values.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Kind tells how a cell is coerced.
type Kind int

const (
	KindString Kind = iota
	KindTaxID
	KindDate
	KindMoney
)

// Column binds a spreadsheet header to an internal field.
type Column struct {
	Header string
	Field  string
	Kind   Kind
}

// Columns is the header dictionary of the commercial PI spreadsheet.
// Headers are matched after trimming and case folding, so only spelling matters.
var Columns = []Column{
	{"PI Matriz", "pi_matriz", KindString},
	{"PI", "numero_pi", KindString},
	{"Nome do Anunciante", "nome_anunciante", KindString},
	{"Razão Social do Anunciante", "razao_social_anunciante", KindString},
	{"CNPJ do Anunciante", "cnpj_anunciante", KindTaxID},
	{"UF Cliente", "uf_cliente", KindString},
	{"Executivo", "executivo", KindString},
	{"Diretoria", "diretoria", KindString},
	{"Nome Campanha", "nome_campanha", KindString},
	{"Nome da Agência", "nome_agencia", KindString},
	{"Razão Social Agência", "razao_social_agencia", KindString},
	{"CNPJ Agência", "cnpj_agencia", KindTaxID},
	{"UF Agência", "uf_agencia", KindString},
	{"Data  inícial veiculação", "data_inicial_veiculacao", KindDate},
	{"Data Final Veiculação", "data_final_veiculacao", KindDate},
	{"Mes da venda", "mes_da_venda", KindString},
	{"Mês Inicial de Veiculação", "mes_inicial_veiculacao", KindString},
	{"Canal", "canal", KindString},
	{"Perfil Anunciante", "perfil_anunciante", KindString},
	{"Sub Perfil Anunciante", "subperfil_anunciante", KindString},
	{"Produto", "produto", KindString},
	{"Valor bruto", "valor_bruto", KindMoney},
	{"Valor líquido", "valor_liquido", KindMoney},
	{"Vencimento", "vencimento", KindDate},
	{"Data da venda", "data_da_venda", KindDate},
	{"Data de emissão/recebimento do PI", "data_emissao_recebimento", KindDate},
	{"Observações", "observacoes", KindString},
}

const (
	FieldOrderNumber    = "numero_pi"
	FieldAdvertiserName = "nome_anunciante"
	FieldAdvertiserTax  = "cnpj_anunciante"
)

var headerIndex = buildHeaderIndex()

func buildHeaderIndex() map[string]string {
	m := make(map[string]string, len(Columns))
	for _, c := range Columns {
		m[headerKey(c.Header)] = c.Field
	}
	return m
}

func headerKey(h string) string {
	// A Caser keeps state, so each call gets its own.
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(h)))
}

// Fields returns the internal field names in dictionary order.
// MapHeader returns the internal field for a spreadsheet header.
// Unknown headers come back trimmed with ok=false.
func MapHeader(h string) (field string, ok bool) {
	if f, found := headerIndex[headerKey(h)]; found {
		return f, true
	}
	return strings.TrimSpace(h), false
}

// MapHeaders renames a header row. Unmatched headers are kept as-is (trimmed).
func MapHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i], _ = MapHeader(h)
	}
	return out
}
