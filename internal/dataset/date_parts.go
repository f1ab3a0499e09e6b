package dataset

import (
	"fmt"

	domainDataset "riskhypo/domain/dataset"
)

// Derived calendar columns
const (
	ColumnTransactionYear    = "TransactionYear"
	ColumnTransactionQuarter = "TransactionQuarter"
	ColumnVehicleYear        = "VehicleYear"
	ColumnVehicleMonth       = "VehicleMonth"
)

// AddDateParts adds year/quarter columns for the transaction month and
// year/month columns for the vehicle introduction date. Only normalized
// (date-typed) columns contribute; anything else is left alone.
func AddDateParts(ds *domainDataset.Dataset) (*domainDataset.Dataset, error) {
	var parts []*domainDataset.Column

	if col, ok := ds.Column(domainDataset.FieldTransactionMonth); ok && col.Type() == domainDataset.ValueTypeDate {
		parts = append(parts,
			datePart(col, ColumnTransactionYear, domainDataset.ValueTypeNumeric, func(v domainDataset.Value) domainDataset.Value {
				return domainDataset.Number(float64(v.Time.Year()))
			}),
			datePart(col, ColumnTransactionQuarter, domainDataset.ValueTypeText, func(v domainDataset.Value) domainDataset.Value {
				q := (int(v.Time.Month())-1)/3 + 1
				return domainDataset.Text(fmt.Sprintf("%dQ%d", v.Time.Year(), q))
			}),
		)
	}

	if col, ok := ds.Column(domainDataset.FieldVehicleIntroDate); ok && col.Type() == domainDataset.ValueTypeDate {
		parts = append(parts,
			datePart(col, ColumnVehicleYear, domainDataset.ValueTypeNumeric, func(v domainDataset.Value) domainDataset.Value {
				return domainDataset.Number(float64(v.Time.Year()))
			}),
			datePart(col, ColumnVehicleMonth, domainDataset.ValueTypeNumeric, func(v domainDataset.Value) domainDataset.Value {
				return domainDataset.Number(float64(v.Time.Month()))
			}),
		)
	}

	return ds.WithColumns(parts...)
}

func datePart(src *domainDataset.Column, name string, typ domainDataset.ValueType, fn func(domainDataset.Value) domainDataset.Value) *domainDataset.Column {
	return src.Map(typ, func(_ int, v domainDataset.Value) domainDataset.Value {
		if v.IsMissing() {
			return domainDataset.Missing()
		}
		return fn(v)
	}).Renamed(name)
}
