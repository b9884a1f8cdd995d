package dataset

import "fmt"

// ValidateOptions bounds the merged record set.
type ValidateOptions struct {
	// MinRecords is the exclusive lower bound on record count. A merged set
	// at or below it means at least one major feed silently degraded.
	MinRecords int
	// ExemptCodes may carry all-zero counts without failing validation
	// (countries that report no cases at all).
	ExemptCodes []string
}

// Validate checks the merged set before persistence. The record count must
// exceed MinRecords and cannot exceed the registry size, and every record
// must carry some activity with a consistent tally
// (confirmed >= deaths + recovered).
func (s Set) Validate(registrySize int, opts ValidateOptions) error {
	if len(s) <= opts.MinRecords || len(s) > registrySize {
		return fmt.Errorf("record count %d outside (%d, %d]", len(s), opts.MinRecords, registrySize)
	}

	exempt := make(map[string]bool, len(opts.ExemptCodes))
	for _, code := range opts.ExemptCodes {
		exempt[code] = true
	}

	for code, entry := range s {
		if exempt[code] {
			continue
		}
		hasActivity := entry.Confirmed > 0 || entry.Deaths > 0 || entry.Recovered > 0
		if !hasActivity {
			return fmt.Errorf("record %s: no reported activity", code)
		}
		if entry.Confirmed < entry.Deaths+entry.Recovered {
			return fmt.Errorf("record %s: confirmed %d below deaths %d + recovered %d",
				code, entry.Confirmed, entry.Deaths, entry.Recovered)
		}
	}
	return nil
}
