// Package metrics provides label-level evaluation over (true, predicted)
// pairs: accuracy, per-label precision/recall, and macro averages.
package metrics

import "sort"

// LabelPair is one evaluation outcome: the true label and a prediction.
type LabelPair struct {
	True string
	Pred string
}

// PR is a precision/recall pair.
type PR struct {
	Precision float64
	Recall    float64
}

// Rate returns n/d, or 0 for an empty denominator.
func Rate(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

// Accuracy returns the fraction of pairs whose prediction equals the true
// label.
func Accuracy(pairs []LabelPair) float64 {
	correct := 0
	for _, p := range pairs {
		if p.Pred == p.True {
			correct++
		}
	}
	return Rate(correct, len(pairs))
}

// Labels returns the sorted set of true labels present in the pairs.
func Labels(pairs []LabelPair) []string {
	seen := make(map[string]bool)
	for _, p := range pairs {
		seen[p.True] = true
	}
	labels := make([]string, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// PrecisionRecall computes per-label precision and recall over the true
// label set, plus the macro averages across labels.
func PrecisionRecall(pairs []LabelPair) (perLabel map[string]PR, macro PR) {
	labels := Labels(pairs)
	perLabel = make(map[string]PR, len(labels))

	var sumP, sumR float64
	for _, label := range labels {
		var tp, fp, fn int
		for _, p := range pairs {
			switch {
			case p.True == label && p.Pred == label:
				tp++
			case p.True != label && p.Pred == label:
				fp++
			case p.True == label && p.Pred != label:
				fn++
			}
		}
		pr := PR{
			Precision: Rate(tp, tp+fp),
			Recall:    Rate(tp, tp+fn),
		}
		perLabel[label] = pr
		sumP += pr.Precision
		sumR += pr.Recall
	}

	if len(labels) > 0 {
		macro = PR{
			Precision: sumP / float64(len(labels)),
			Recall:    sumR / float64(len(labels)),
		}
	}
	return perLabel, macro
}
