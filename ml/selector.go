package ml

// SelectBest picks the successful result with the highest macro F1. Ties
// break on accuracy, then on the fixed KindPriority order, so selection is
// never arbitrary at runtime. Returns ErrNoCandidates when no kind
// produced a report.
func SelectBest(results []ModelResult) (*ModelResult, error) {
	var best *ModelResult
	for i := range results {
		candidate := &results[i]
		if candidate.Err != nil || candidate.Report == nil {
			continue
		}
		if best == nil || better(candidate, best) {
			best = candidate
		}
	}
	if best == nil {
		return nil, ErrNoCandidates
	}
	return best, nil
}

func better(a, b *ModelResult) bool {
	if a.Report.MacroF1 != b.Report.MacroF1 {
		return a.Report.MacroF1 > b.Report.MacroF1
	}
	if a.Report.Accuracy != b.Report.Accuracy {
		return a.Report.Accuracy > b.Report.Accuracy
	}
	return kindRank(a.Kind) < kindRank(b.Kind)
}

func kindRank(kind ModelKind) int {
	for i, k := range KindPriority {
		if k == kind {
			return i
		}
	}
	return len(KindPriority)
}
