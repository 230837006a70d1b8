package model

import "time"

// Sample is one production measurement event as stored in the `samples`
// table.  Optional columns are pointers so that NULL round-trips as JSON
// null.
type Sample struct {
	ID          uint64    `json:"id"`           // samples.id
	LineName    string    `json:"line_name"`    // samples.line_name
	ProductName *string   `json:"product_name"` // samples.product_name (nullable)
	Timestamp   time.Time `json:"timestamp"`    // samples.timestamp (UTC)
	MetricA     *float64  `json:"metric_a"`     // samples.metric_a (nullable)
	MetricB     *float64  `json:"metric_b"`     // samples.metric_b (nullable)
	Operator    *string   `json:"operator"`     // samples.operator (nullable)
}

// Column limits mirrored from the schema.
const (
	MaxLineNameLen    = 50
	MaxProductNameLen = 100
	MaxOperatorLen    = 50
)
