package domain

import "time"

// Status tracks which pangenome components have been loaded or computed.
type Status struct {
	Annotations      bool `json:"annotations"`
	Families         bool `json:"families"`
	Partitions       bool `json:"partitions"`
	RegionsPredicted bool `json:"regions_predicted"`
}

// RGPParameters records the settings used for the latest region prediction.
type RGPParameters struct {
	PersistentPenalty float64   `json:"persistent_penalty"`
	VariableGain      float64   `json:"variable_gain"`
	MinLength         int       `json:"min_length"`
	MinScore          float64   `json:"min_score"`
	DupMargin         float64   `json:"dup_margin"`
	RunID             string    `json:"run_id"`
	PredictedAt       time.Time `json:"predicted_at"`
}
