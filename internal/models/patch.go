package models

import (
	"bytes"
	"encoding/json"
)

// Optional is a JSON field that distinguishes "absent" from "null" from a value.
// Set is true whenever the key appeared in the document; Valid is false for an explicit null.
type Optional[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// Some returns a present, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Valid: true, Value: v}
}

// Null returns an explicit null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Valid = false
		return nil
	}
	if err := json.Unmarshal(b, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// OperationalPatch is the body of a partial update of the operational fields.
type OperationalPatch struct {
	ProcessingDate Optional[Date]   `json:"data_pulsar"`
	PaymentDate    Optional[Date]   `json:"data_pagamento"`
	InvoiceNumber  Optional[string] `json:"nota_fiscal"`
}

// Columns returns the column updates carried by the patch. Absent fields are skipped.
// Explicit nulls clear the column only when nullClears is true; otherwise they are
// treated like absent fields.
func (p OperationalPatch) Columns(nullClears bool) map[string]any {
	out := map[string]any{}
	addOptional(out, ColProcessingDate, p.ProcessingDate, nullClears)
	addOptional(out, ColPaymentDate, p.PaymentDate, nullClears)
	addOptional(out, ColInvoiceNumber, p.InvoiceNumber, nullClears)
	return out
}

func addOptional[T any](out map[string]any, col string, o Optional[T], nullClears bool) {
	switch {
	case !o.Set:
	case o.Valid:
		out[col] = o.Value
	case nullClears:
		out[col] = nil
	}
}
