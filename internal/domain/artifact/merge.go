package artifact

// Merge combines Stage 1 and an optional Stage 2 result into the final
// verdict, score and reason list.
//
// The rule is escalation-only: Stage 2 can raise but never lower the verdict
// relative to Stage 1, so a Stage 1 BLOCK is never downgraded by a clean
// Stage 2 pass.  The final score is the maximum of the two stage scores.
// Reasons are concatenated Stage 1 first, de-duplicated, order preserved.
// Total and deterministic for every verdict combination.
func Merge(stage1 StaticScore, stage2 *BehavioralFindings) (Verdict, float64, []string) {
	if stage2 == nil {
		return stage1.Verdict, stage1.CombinedScore, DedupeReasons(stage1.Reasons)
	}

	verdict := MaxVerdict(stage1.Verdict, stage2.Verdict)
	score := stage1.CombinedScore
	if stage2.DynamicScore > score {
		score = stage2.DynamicScore
	}
	reasons := DedupeReasons(append(append([]string{}, stage1.Reasons...), stage2.Reasons...))
	return verdict, score, reasons
}

// DedupeReasons removes duplicate reason strings while preserving first-seen
// order.  The result is never nil.
func DedupeReasons(reasons []string) []string {
	out := make([]string, 0, len(reasons))
	seen := make(map[string]struct{}, len(reasons))
	for _, r := range reasons {
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
