package checkout

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateOrderNumber builds a customer-facing order number in the form
// RG-YYYYMMDD-XXXXXX. The random suffix is not guaranteed unique; callers
// retry on a unique-index violation.
func GenerateOrderNumber(now time.Time, roll func(int) int) string {
	if roll == nil {
		roll = rand.Intn
	}
	return fmt.Sprintf("RG-%s-%06d", now.UTC().Format("20060102"), roll(1000000))
}
