// Package harvest pulls user records from the upstream listing in planned batches.
//
// A harvest has two steps:
//
//	Plan(total, max)      → []Descriptor, one per upstream page request
//	Harvester.Harvest     → walks the descriptors in order and builds model.User records
//
// Descriptors are consumed strictly in sequence: the cursor of each one depends on
// the last record the previous one produced.
package harvest

import "fmt"

// Descriptor is one planned upstream page request: fetch up to PerPage users whose
// ID is greater than Since.
type Descriptor struct {
	PerPage int
	Since   int64
}

func (d Descriptor) String() string {
	return fmt.Sprintf("per_page=%d&since=%d", d.PerPage, d.Since)
}

// Plan splits a request for total records into page requests of at most
// maxPerRequest records each.
//
//	Plan(50, 100)  → [(50, 0)]
//	Plan(250, 100) → [(100, 0), (100, 100), (50, 200)]
//
// The page sizes always sum to total and the cursors start at 0 and advance by the
// size of the page before them. A non-positive total or maxPerRequest yields no
// descriptors.
func Plan(total, maxPerRequest int) []Descriptor {
	if total <= 0 || maxPerRequest <= 0 {
		return nil
	}

	if total <= maxPerRequest {
		return []Descriptor{{PerPage: total, Since: 0}}
	}

	full := total / maxPerRequest
	remainder := total % maxPerRequest

	plan := make([]Descriptor, 0, full+1)
	var since int64
	for i := 0; i < full; i++ {
		plan = append(plan, Descriptor{PerPage: maxPerRequest, Since: since})
		since += int64(maxPerRequest)
	}
	if remainder > 0 {
		plan = append(plan, Descriptor{PerPage: remainder, Since: since})
	}
	return plan
}
