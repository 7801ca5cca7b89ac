package patient

import "github.com/namoarogya/api/internal/platform/ai"

// Reconcile merges a fresh set of AI suggestions into an existing curated
// code list after the patient's symptoms change.
//
// Entries the doctor confirmed (Selected true) survive verbatim, in their
// original order. Fresh suggestions whose code already appears among the
// kept entries are dropped; the rest are appended unselected. When the
// provider returned nothing, the kept entries are the whole result, so a
// failed or empty recommendation never erases curation.
func Reconcile(existing []SelectedCode, fresh []ai.CodeSuggestion) []SelectedCode {
	kept := make([]SelectedCode, 0, len(existing))
	seen := make(map[string]bool, len(existing))
	for _, c := range existing {
		if c.Selected {
			kept = append(kept, c)
			seen[c.Code] = true
		}
	}

	out := kept
	for _, s := range fresh {
		if seen[s.Code] {
			continue
		}
		seen[s.Code] = true
		out = append(out, SelectedCode{
			Code:            s.Code,
			Name:            s.Name,
			NameEnglish:     s.NameEnglish,
			Description:     s.Description,
			Category:        s.Category,
			Confidence:      s.Confidence,
			ConfidenceLevel: s.ConfidenceLevel,
			Selected:        false,
		})
	}
	return out
}

// FromSuggestions shapes provider output for a brand-new patient: every
// entry unselected, duplicate codes collapsed to the first occurrence.
func FromSuggestions(fresh []ai.CodeSuggestion) []SelectedCode {
	return Reconcile(nil, fresh)
}

// DedupeByCode drops later entries whose code already appeared, keeping
// order otherwise. Applied to every caller-supplied code list before it is
// persisted, so the no-duplicates invariant holds regardless of input.
func DedupeByCode(codes []SelectedCode) []SelectedCode {
	if len(codes) == 0 {
		return codes
	}
	seen := make(map[string]bool, len(codes))
	out := codes[:0:0]
	for _, c := range codes {
		if seen[c.Code] {
			continue
		}
		seen[c.Code] = true
		out = append(out, c)
	}
	return out
}
