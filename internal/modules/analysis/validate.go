package analysis

import "fmt"

// ValidationError means the decoded result violates the structural
// contract and must be rejected rather than silently repaired.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Validate checks the decoded result against the submitted ads: the ads
// array must have one entry per submitted ad, and every ad reference in
// sections, advice, deep analysis and question options must resolve to an
// analyzed ad.
func Validate(res *Result, submittedCount int) error {
	if res == nil {
		return validationError("result is nil")
	}
	if len(res.Ads) != submittedCount {
		return validationError("expected %d ads in result, got %d", submittedCount, len(res.Ads))
	}

	known := make(map[string]bool, len(res.Ads))
	for _, ad := range res.Ads {
		id := NormalizeAdID(ad.ID)
		if id == "" {
			return validationError("ad with empty id in result")
		}
		known[id] = true
	}

	for _, section := range res.Sections {
		for _, perAd := range section.PerAd {
			if !known[NormalizeAdID(perAd.AdID)] {
				return validationError("section %q references unknown ad %q", section.ID, perAd.AdID)
			}
		}
	}

	if res.ApplicationAdvice != nil {
		for _, perAd := range res.ApplicationAdvice.PerAd {
			if !known[NormalizeAdID(perAd.AdID)] {
				return validationError("application advice references unknown ad %q", perAd.AdID)
			}
		}
	}

	for _, deep := range res.DeepAnalysisPerAd {
		if !known[NormalizeAdID(deep.AdID)] {
			return validationError("deep analysis references unknown ad %q", deep.AdID)
		}
	}

	for _, q := range res.Questions {
		for _, opt := range q.Options {
			if !known[NormalizeAdID(opt.AdID)] {
				return validationError("question %q option %q references unknown ad %q", q.ID, opt.ID, opt.AdID)
			}
		}
	}

	return nil
}
