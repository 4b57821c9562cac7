package pipeline

// Residency represents a client's residency status. It selects the LTV
// warning threshold.
type Residency string

const (
	ResidencyUAENational Residency = "uaeNational"
	ResidencyUAEResident Residency = "uaeResident"
	ResidencyNonResident Residency = "nonResident"
)

// Employment represents a client's employment status.
type Employment string

const (
	EmploymentSalaried     Employment = "salaried"
	EmploymentSelfEmployed Employment = "selfEmployed"
)

// Eligibility thresholds. The max-loan formula assumes a 50% debt-service
// ceiling over a 240-month amortization proxy; it is a business-rule
// approximation, not an amortization schedule.
const (
	DBRWarningThreshold     = 50.0
	LTVThresholdDefault     = 80.0
	LTVThresholdUAENational = 85.0

	debtServiceCeiling = 0.5
	amortizationMonths = 240
)

// DBR computes the debt burden ratio as a percentage of monthly salary.
// It returns nil when it cannot be computed: salary not positive, or
// liabilities absent or zero. A nil result means "unknown", which callers
// must not conflate with a DBR of zero.
func DBR(monthlySalary float64, monthlyLiabilities *float64) *float64 {
	if monthlySalary <= 0 || monthlyLiabilities == nil || *monthlyLiabilities == 0 {
		return nil
	}
	v := *monthlyLiabilities / monthlySalary * 100
	return &v
}

// LTV computes the loan-to-value ratio as a percentage. It returns nil when
// either input is absent, the property value is not positive, or the loan
// amount is zero.
func LTV(loanAmount, propertyValue *float64) *float64 {
	if loanAmount == nil || propertyValue == nil {
		return nil
	}
	if *propertyValue <= 0 || *loanAmount == 0 {
		return nil
	}
	v := *loanAmount / *propertyValue * 100
	return &v
}

// MaxLoan estimates the maximum loan amount from monthly income headroom.
// Absent liabilities are treated as zero here (unlike DBR, missing debt does
// not make the headroom unknowable). Returns nil when salary is not positive.
func MaxLoan(monthlySalary float64, monthlyLiabilities *float64) *float64 {
	if monthlySalary <= 0 {
		return nil
	}
	liabilities := 0.0
	if monthlyLiabilities != nil {
		liabilities = *monthlyLiabilities
	}
	v := (monthlySalary*debtServiceCeiling - liabilities) * amortizationMonths
	return &v
}

// LTVLimit returns the LTV warning threshold for a residency status.
// UAE nationals get 85%, everyone else 80%.
func LTVLimit(residency Residency) float64 {
	if residency == ResidencyUAENational {
		return LTVThresholdUAENational
	}
	return LTVThresholdDefault
}

// DBRLimit returns the DBR warning threshold, flat for all residencies.
func DBRLimit() float64 {
	return DBRWarningThreshold
}
