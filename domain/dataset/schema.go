package dataset

// Insurance policy fields consumed by name
const (
	FieldTransactionMonth    = "TransactionMonth"
	FieldVehicleIntroDate    = "VehicleIntroDate"
	FieldTotalPremium        = "TotalPremium"
	FieldTotalClaims         = "TotalClaims"
	FieldClaimCount          = "ClaimCount"
	FieldCustomValueEstimate = "CustomValueEstimate"
	FieldProvince            = "Province"
	FieldPostalCode          = "PostalCode"
	FieldGender              = "Gender"
	FieldBank                = "Bank"
	FieldAccountType         = "AccountType"
	FieldMaritalStatus       = "MaritalStatus"

	MetricLossRatio      = "LossRatio"
	MetricMargin         = "Margin"
	MetricClaimFrequency = "ClaimFrequency"
	MetricClaimSeverity  = "ClaimSeverity"

	// MissingFlagSuffix names the boolean column recording unparseable dates
	MissingFlagSuffix = "_missing"
)

// PolicySchema binds the insurance fields to the columns present in a dataset.
// A nil handle means the column is absent; callers branch on that explicitly.
type PolicySchema struct {
	TransactionMonth    *Column
	VehicleIntroDate    *Column
	TotalPremium        *Column
	TotalClaims         *Column
	ClaimCount          *Column
	CustomValueEstimate *Column
	Province            *Column
	PostalCode          *Column
	Gender              *Column
}

// BindSchema resolves the policy fields against ds
func BindSchema(ds *Dataset) PolicySchema {
	get := func(name string) *Column {
		col, _ := ds.Column(name)
		return col
	}
	return PolicySchema{
		TransactionMonth:    get(FieldTransactionMonth),
		VehicleIntroDate:    get(FieldVehicleIntroDate),
		TotalPremium:        numeric(get(FieldTotalPremium)),
		TotalClaims:         numeric(get(FieldTotalClaims)),
		ClaimCount:          numeric(get(FieldClaimCount)),
		CustomValueEstimate: numeric(get(FieldCustomValueEstimate)),
		Province:            get(FieldProvince),
		PostalCode:          get(FieldPostalCode),
		Gender:              get(FieldGender),
	}
}

// numeric drops handles to columns that cannot be read as numbers
func numeric(col *Column) *Column {
	if col == nil || !col.IsNumeric() {
		return nil
	}
	return col
}

// ImputedCategoricals lists the categorical fields filled with UnknownCategory
var ImputedCategoricals = []string{FieldGender, FieldBank, FieldAccountType, FieldMaritalStatus}

// UnknownCategory replaces missing categorical values
const UnknownCategory = "Unknown"
