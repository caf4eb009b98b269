package domain

import "math"

// Transaction extract columns
const (
	ColCustomerID     = "FCUSNO"
	ColProductType    = "FPRODTY"
	ColPrincipal      = "FPRINCAM"
	ColFacilityAmount = "FFLGBWFW"
	ColDaysPastDue    = "FDPDUE00"
	ColReportDate     = "FRPDATE"
	ColNPLFlagDate    = "FNPLFDTE"
	ColOriginDate     = "FORDATE"
	ColMaturityDate   = "FMATDATE"
)

// Performance reference columns
const (
	ColCIF       = "CIF"
	ColStageCode = "STAGE_CIF"
)

// Derived columns
const (
	ColStageName        = "Stage_Name"
	ColIsOverdue        = "Is_Overdue"
	ColDPDBucket        = "DPD_Bucket"
	ColDebtToLimitRatio = "Debt_to_Limit_Ratio"
	ColLoanAgeDays      = "Loan_Age_Days"
	ColRemainingTenor   = "Remaining_Tenor_Days"
	ColLoanOrigYear     = "Loan_Orig_Year"
	ColLoanOrigQuarter  = "Loan_Orig_Quarter"
)

// DateColumns are the transaction fields encoded as YYYYMMDD text
var DateColumns = []string{ColReportDate, ColNPLFlagDate, ColOriginDate, ColMaturityDate}

// Stage labels carry their ordinal as a prefix so that lexical order is display order
const (
	StageUnknown         = "0. Unknown"
	StagePerforming      = "1. Performing"
	StageUnderPerforming = "2. Under-performing"
	StageNonPerforming   = "3. NPL"
)

// StageLabels lists every stage label in ordinal order
var StageLabels = []string{StageUnknown, StagePerforming, StageUnderPerforming, StageNonPerforming}

// DPD bucket labels in ordinal order
const (
	BucketNoDPD  = "0. No DPD"
	Bucket1To30  = "1. 1-30 Days"
	Bucket31To60 = "2. 31-60 Days"
	Bucket61To90 = "3. 61-90 Days"
	Bucket90Plus = "4. 90+ Days"
)

// DPDBucket is a half-open (Lower, Upper] range of days past due
type DPDBucket struct {
	Label string
	Lower float64
	Upper float64
}

// DPDBuckets partitions (-1, +Inf) into five ordered ranges
var DPDBuckets = []DPDBucket{
	{Label: BucketNoDPD, Lower: -1, Upper: 0},
	{Label: Bucket1To30, Lower: 0, Upper: 30},
	{Label: Bucket31To60, Lower: 30, Upper: 60},
	{Label: Bucket61To90, Lower: 60, Upper: 90},
	{Label: Bucket90Plus, Lower: 90, Upper: math.Inf(1)},
}

// SevereDelinquencyDays is the DPD threshold of the 90+ distribution view
const SevereDelinquencyDays = 90

// StageSummary aggregates principal for one stage label
type StageSummary struct {
	Stage string   `json:"stage"`
	Sum   float64  `json:"sum"`
	Mean  *float64 `json:"mean,omitempty"` // nil when no principal is known
	Count int      `json:"count"`
}
