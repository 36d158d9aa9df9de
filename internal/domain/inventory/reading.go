// Package inventory turns pushed sensor readings into inventory snapshots and
// answers the derived queries the client renders.
package inventory

import "time"

// DefaultChannel is the push channel the kitchen sensor writes to
const DefaultChannel = "food_monitor_1"

// SensorReading is the payload pushed by the external store on every update
type SensorReading struct {
	Distance  float64 `json:"distance"`
	Weight    float64 `json:"weight"`
	FoodLevel float64 `json:"foodLevel"`
	Timestamp int64   `json:"timestamp"`
	Interval  int64   `json:"interval"`
}

// ObservedAt converts the millisecond timestamp into a time
func (r SensorReading) ObservedAt() time.Time {
	return time.UnixMilli(r.Timestamp)
}
