package analytics

import "tabprofile/internal/table"

// Kind tags which statistic variant a ColumnStats carries
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
)

// NumericStats describes integer and float columns. A nil field is a null
// result: no non-null values, a single value for Std, or a non-finite result.
type NumericStats struct {
	Min    *float64 `json:"min"`
	Max    *float64 `json:"max"`
	Mean   *float64 `json:"mean"`
	Median *float64 `json:"median"`
	Std    *float64 `json:"std"`
	Q25    *float64 `json:"q25"`
	Q75    *float64 `json:"q75"`
}

// CategoricalStats describes every non-numeric column. Lengths are counted in
// runes over the string form of each non-null value.
type CategoricalStats struct {
	MostCommon *string `json:"most_common"`
	MinLength  int     `json:"min_length"`
	MaxLength  int     `json:"max_length"`
	AvgLength  float64 `json:"avg_length"`
}

// ColumnStats is the statistic set for one column. Exactly one of Numeric or
// Categorical is set, matching Kind, except for a column whose computation
// panicked: it carries only the common counts and Anomaly.
type ColumnStats struct {
	Kind        Kind              `json:"kind"`
	DType       table.DType       `json:"dtype"`
	Count       int               `json:"count"`
	NullCount   int               `json:"null_count"`
	UniqueCount int               `json:"unique_count"`
	Numeric     *NumericStats     `json:"numeric,omitempty"`
	Categorical *CategoricalStats `json:"categorical,omitempty"`
	Anomaly     string            `json:"anomaly,omitempty"`
}

// IsNumeric reports whether the numeric variant applies
func (s ColumnStats) IsNumeric() bool {
	return s.Kind == KindNumeric
}
