package links

import "context"

// SourceClicks is the number of clicks recorded for one attribution value.
type SourceClicks struct {
	Source string `json:"source"`
	Clicks int    `json:"clicks"`
}

// CountByTarget groups events by attribution value. The empty value is a group of its own.
func CountByTarget(events []ClickEvent) map[string]int {
	counts := make(map[string]int)

	for _, e := range events {
		counts[e.TargetParamValue]++
	}

	return counts
}

// BreakdownBySource groups events by attribution value, one entry per value in first-seen order.
func BreakdownBySource(events []ClickEvent) []SourceClicks {
	breakdown := make([]SourceClicks, 0)
	index := make(map[string]int)

	for _, e := range events {
		i, ok := index[e.TargetParamValue]
		if !ok {
			i = len(breakdown)
			index[e.TargetParamValue] = i
			breakdown = append(breakdown, SourceClicks{Source: e.TargetParamValue})
		}

		breakdown[i].Clicks++
	}

	return breakdown
}

// Aggregator serves read-only statistics over click logs.
type Aggregator struct {
	clicks ClickLog
}

// NewAggregator creates an aggregator reading from clicks.
func NewAggregator(clicks ClickLog) *Aggregator {
	return &Aggregator{clicks: clicks}
}

// CountsByTarget returns the number of clicks per attribution value.
func (a *Aggregator) CountsByTarget(ctx context.Context, id ID) (map[string]int, error) {
	events, err := a.clicks.ReadAll(ctx, id)
	if err != nil {
		return nil, storeFailure("links.Aggregator.CountsByTarget", err)
	}

	return CountByTarget(events), nil
}

// BySourceBreakdown returns {source, clicks} entries in first-seen order.
func (a *Aggregator) BySourceBreakdown(ctx context.Context, id ID) ([]SourceClicks, error) {
	events, err := a.clicks.ReadAll(ctx, id)
	if err != nil {
		return nil, storeFailure("links.Aggregator.BySourceBreakdown", err)
	}

	return BreakdownBySource(events), nil
}
