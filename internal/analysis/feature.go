package analysis

// DataType of a feature value.
type DataType string

const (
	TypeString DataType = "string"
	TypeFloat  DataType = "float"
	TypeInt    DataType = "int"
)

// FeatureType declares a feature at an analysis level: its type, a
// description for reports, and whether computing it needs statistics
// accumulated from the training set (e.g. vocabulary ranks).
type FeatureType struct {
	Dtype              DataType `json:"dtype"`
	Description        string   `json:"description,omitempty"`
	RequireTrainingSet bool     `json:"require_training_set,omitempty"`
}

// Level groups the features and metric configs evaluated at one unit of
// analysis (for all current tasks: "example").
type Level struct {
	Name     string                 `json:"name"`
	Features map[string]FeatureType `json:"features"`
}

// Numeric reports whether a feature can feed continuous bucketing.
func (f FeatureType) Numeric() bool {
	return f.Dtype == TypeFloat || f.Dtype == TypeInt
}
