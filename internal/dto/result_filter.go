// ResultFilter describes user-provided filters to narrow the result history.
package dto

import "time"

type ResultFilter struct {
	DateAfter     time.Time
	DateBefore    time.Time
	MinPercentage *float64
	MaxPercentage *float64
	Limit         int
	Offset        int
}
