package models

import (
	"fmt"
	"time"
)

// PI is an advertising insertion order line.
// Several PIs may share the same OrderNumber; the import business key is
// (OrderNumber, AdvertiserTaxID) or (OrderNumber, AdvertiserName) when the tax id is missing.
type PI struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	ParentOrder *string `gorm:"column:pi_matriz;size:255;index" json:"pi_matriz"`
	OrderNumber string  `gorm:"column:numero_pi;size:255;not null;index;index:ix_pi_numero_cnpj,priority:1;index:ix_pi_numero_nome,priority:1" json:"numero_pi"`

	// Advertiser
	AdvertiserName      *string `gorm:"column:nome_anunciante;size:255;index;index:ix_pi_numero_nome,priority:2" json:"nome_anunciante"`
	AdvertiserLegalName *string `gorm:"column:razao_social_anunciante;size:255" json:"razao_social_anunciante"`
	AdvertiserTaxID     *string `gorm:"column:cnpj_anunciante;size:32;index;index:ix_pi_numero_cnpj,priority:2" json:"cnpj_anunciante"`
	ClientState         *string `gorm:"column:uf_cliente;size:8" json:"uf_cliente"`
	Executive           *string `gorm:"column:executivo;size:255;index" json:"executivo"`
	Division            *string `gorm:"column:diretoria;size:255;index" json:"diretoria"`

	// Campaign / agency
	CampaignName    *string `gorm:"column:nome_campanha;size:255;index" json:"nome_campanha"`
	AgencyName      *string `gorm:"column:nome_agencia;size:255" json:"nome_agencia"`
	AgencyLegalName *string `gorm:"column:razao_social_agencia;size:255" json:"razao_social_agencia"`
	AgencyTaxID     *string `gorm:"column:cnpj_agencia;size:32" json:"cnpj_agencia"`
	AgencyState     *string `gorm:"column:uf_agencia;size:8" json:"uf_agencia"`

	// Periods. SaleMonth and AirStartMonth are free text ("2024-01", "jan/2024").
	AirStartDate  *Date   `gorm:"column:data_inicial_veiculacao;type:date" json:"data_inicial_veiculacao"`
	AirEndDate    *Date   `gorm:"column:data_final_veiculacao;type:date" json:"data_final_veiculacao"`
	SaleMonth     *string `gorm:"column:mes_da_venda;size:32" json:"mes_da_venda"`
	AirStartMonth *string `gorm:"column:mes_inicial_veiculacao;size:32" json:"mes_inicial_veiculacao"`

	// Classification / product
	Channel              *string `gorm:"column:canal;size:255;index" json:"canal"`
	AdvertiserProfile    *string `gorm:"column:perfil_anunciante;size:255" json:"perfil_anunciante"`
	AdvertiserSubprofile *string `gorm:"column:subperfil_anunciante;size:255" json:"subperfil_anunciante"`
	Product              *string `gorm:"column:produto;size:255;index" json:"produto"`

	// Values
	GrossValue *Money `gorm:"column:valor_bruto;type:numeric(14,2)" json:"valor_bruto"`
	NetValue   *Money `gorm:"column:valor_liquido;type:numeric(14,2)" json:"valor_liquido"`

	// Financial dates
	DueDate   *Date `gorm:"column:vencimento;type:date" json:"vencimento"`
	SaleDate  *Date `gorm:"column:data_da_venda;type:date;index" json:"data_da_venda"`
	IssueDate *Date `gorm:"column:data_emissao_recebimento;type:date" json:"data_emissao_recebimento"`

	// Operational fields, edited through the API after import
	ProcessingDate *Date   `gorm:"column:data_pulsar;type:date" json:"data_pulsar"`
	PaymentDate    *Date   `gorm:"column:data_pagamento;type:date" json:"data_pagamento"`
	InvoiceNumber  *string `gorm:"column:nota_fiscal;size:64" json:"nota_fiscal"`

	Notes *string `gorm:"column:observacoes;size:1024" json:"observacoes"`
}

// TableName keeps the historical table name.
func (PI) TableName() string { return "pis" }

// Operational column names accepted by partial updates.
const (
	ColProcessingDate = "data_pulsar"
	ColPaymentDate    = "data_pagamento"
	ColInvoiceNumber  = "nota_fiscal"
)

// OperationalColumns lists the only columns the API may change after creation.
var OperationalColumns = []string{ColProcessingDate, ColPaymentDate, ColInvoiceNumber}

// IsOperationalColumn reports whether col may be changed by a partial update.
func IsOperationalColumn(col string) bool {
	for _, c := range OperationalColumns {
		if c == col {
			return true
		}
	}
	return false
}

// ApplyImport copies every spreadsheet-mapped field from src onto p.
// ID, timestamps and the operational fields are left untouched.
func (p *PI) ApplyImport(src *PI) {
	p.ParentOrder = src.ParentOrder
	p.OrderNumber = src.OrderNumber
	p.AdvertiserName = src.AdvertiserName
	p.AdvertiserLegalName = src.AdvertiserLegalName
	p.AdvertiserTaxID = src.AdvertiserTaxID
	p.ClientState = src.ClientState
	p.Executive = src.Executive
	p.Division = src.Division
	p.CampaignName = src.CampaignName
	p.AgencyName = src.AgencyName
	p.AgencyLegalName = src.AgencyLegalName
	p.AgencyTaxID = src.AgencyTaxID
	p.AgencyState = src.AgencyState
	p.AirStartDate = src.AirStartDate
	p.AirEndDate = src.AirEndDate
	p.SaleMonth = src.SaleMonth
	p.AirStartMonth = src.AirStartMonth
	p.Channel = src.Channel
	p.AdvertiserProfile = src.AdvertiserProfile
	p.AdvertiserSubprofile = src.AdvertiserSubprofile
	p.Product = src.Product
	p.GrossValue = src.GrossValue
	p.NetValue = src.NetValue
	p.DueDate = src.DueDate
	p.SaleDate = src.SaleDate
	p.IssueDate = src.IssueDate
	p.Notes = src.Notes
}

func (p *PI) String() string {
	cnpj := "<nil>"
	if p.AdvertiserTaxID != nil {
		cnpj = *p.AdvertiserTaxID
	}
	return fmt.Sprintf("PI id=%d numero_pi=%q cnpj=%q", p.ID, p.OrderNumber, cnpj)
}
