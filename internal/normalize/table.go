package normalize

import (
	"errors"
	"strings"

	"github.com/diewo77/go-pis/internal/models"
)

// Table is a raw sheet: the header row plus data lines with their spreadsheet line numbers.
type Table struct {
	Header []string
	Lines  []Line
}

// Line is one data row. Number is the 1-based line in the source file.
type Line struct {
	Number int
	Cells  []string
}

// Row holds the cells of one line keyed by internal field name.
// Every field of Columns is present; missing columns are synthesized as "".
type Row struct {
	Line   int
	Values map[string]string
}

// Get returns the raw cell of field.
func (r Row) Get(field string) string { return r.Values[field] }

// Warning is a non-fatal data quality issue found while importing.
type Warning struct {
	Line   int    `json:"linha"`
	Column string `json:"coluna"`
	Value  string `json:"valor"`
	Reason string `json:"motivo"`
}

// Warning reasons. They double as i18n message keys.
const (
	ReasonInvalidNumber      = "invalid_number"
	ReasonInvalidDate        = "invalid_date"
	ReasonMissingOrderNumber = "missing_order_number"
)

// Project renames the header, keeps only mapped columns and synthesizes the missing ones.
// Lines where every cell is blank are dropped.
func Project(t *Table) []Row {
	mapped := MapHeaders(t.Header)
	index := make(map[string]int, len(Columns))
	for i, name := range mapped {
		if _, known := headerIndexByField[name]; !known {
			continue
		}
		if _, dup := index[name]; dup {
			continue
		}
		index[name] = i
	}

	rows := make([]Row, 0, len(t.Lines))
	for _, line := range t.Lines {
		if blank(line.Cells) {
			continue
		}
		values := make(map[string]string, len(Columns))
		for _, c := range Columns {
			values[c.Field] = ""
			if i, ok := index[c.Field]; ok && i < len(line.Cells) {
				values[c.Field] = line.Cells[i]
			}
		}
		rows = append(rows, Row{Line: line.Number, Values: values})
	}
	return rows
}

var headerIndexByField = func() map[string]Kind {
	m := make(map[string]Kind, len(Columns))
	for _, c := range Columns {
		m[c.Field] = c.Kind
	}
	return m
}()

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Coerce turns a projected row into a PI payload. Cells that fail to parse become nil
// and are reported as warnings; they never fail the row.
func Coerce(r Row) (*models.PI, []Warning) {
	pi := &models.PI{}
	var warnings []Warning
	for _, c := range Columns {
		raw := r.Get(c.Field)
		switch c.Kind {
		case KindString:
			if dst := stringTarget(pi, c.Field); dst != nil {
				*dst = String(raw)
			}
		case KindTaxID:
			if dst := stringTarget(pi, c.Field); dst != nil {
				*dst = TaxID(raw)
			}
		case KindDate:
			d, err := Date(raw)
			if err != nil {
				warnings = append(warnings, warningFor(r, c.Field, raw, err))
			}
			*dateTarget(pi, c.Field) = d
		case KindMoney:
			m, err := Money(raw)
			if err != nil {
				warnings = append(warnings, warningFor(r, c.Field, raw, err))
			}
			*moneyTarget(pi, c.Field) = m
		}
	}
	if n := String(r.Get(FieldOrderNumber)); n != nil {
		pi.OrderNumber = *n
	}
	return pi, warnings
}

func warningFor(r Row, field, raw string, err error) Warning {
	reason := ReasonInvalidNumber
	if errors.Is(err, ErrInvalidDate) {
		reason = ReasonInvalidDate
	}
	return Warning{Line: r.Line, Column: field, Value: raw, Reason: reason}
}

func stringTarget(pi *models.PI, field string) **string {
	switch field {
	case "pi_matriz":
		return &pi.ParentOrder
	case "nome_anunciante":
		return &pi.AdvertiserName
	case "razao_social_anunciante":
		return &pi.AdvertiserLegalName
	case "cnpj_anunciante":
		return &pi.AdvertiserTaxID
	case "uf_cliente":
		return &pi.ClientState
	case "executivo":
		return &pi.Executive
	case "diretoria":
		return &pi.Division
	case "nome_campanha":
		return &pi.CampaignName
	case "nome_agencia":
		return &pi.AgencyName
	case "razao_social_agencia":
		return &pi.AgencyLegalName
	case "cnpj_agencia":
		return &pi.AgencyTaxID
	case "uf_agencia":
		return &pi.AgencyState
	case "mes_da_venda":
		return &pi.SaleMonth
	case "mes_inicial_veiculacao":
		return &pi.AirStartMonth
	case "canal":
		return &pi.Channel
	case "perfil_anunciante":
		return &pi.AdvertiserProfile
	case "subperfil_anunciante":
		return &pi.AdvertiserSubprofile
	case "produto":
		return &pi.Product
	case "observacoes":
		return &pi.Notes
	}
	// numero_pi is a plain string on the model and is set by Coerce itself.
	return nil
}

func dateTarget(pi *models.PI, field string) **models.Date {
	switch field {
	case "data_inicial_veiculacao":
		return &pi.AirStartDate
	case "data_final_veiculacao":
		return &pi.AirEndDate
	case "vencimento":
		return &pi.DueDate
	case "data_da_venda":
		return &pi.SaleDate
	default:
		return &pi.IssueDate
	}
}

func moneyTarget(pi *models.PI, field string) **models.Money {
	if field == "valor_liquido" {
		return &pi.NetValue
	}
	return &pi.GrossValue
}
