package links_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/serroba/link-clicks/internal/links"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clicks(values ...string) []links.ClickEvent {
	events := make([]links.ClickEvent, 0, len(values))
	for _, v := range values {
		events = append(events, links.ClickEvent{IPAddress: "127.0.0.1", TargetParamValue: v})
	}

	return events
}

func TestCountByTarget(t *testing.T) {
	t.Run("counts per attribution value", func(t *testing.T) {
		counts := links.CountByTarget(clicks("email", "ads", "email", "email"))

		assert.Equal(t, map[string]int{"email": 3, "ads": 1}, counts)
	})

	t.Run("empty value is its own group", func(t *testing.T) {
		counts := links.CountByTarget(clicks("", "email", ""))

		assert.Equal(t, map[string]int{"": 2, "email": 1}, counts)
	})

	t.Run("empty log gives empty mapping", func(t *testing.T) {
		counts := links.CountByTarget(nil)

		assert.NotNil(t, counts)
		assert.Empty(t, counts)
	})
}

func TestBreakdownBySource(t *testing.T) {
	t.Run("keeps first-seen order", func(t *testing.T) {
		breakdown := links.BreakdownBySource(clicks("email", "ads", "email", "", "email"))

		assert.Equal(t, []links.SourceClicks{
			{Source: "email", Clicks: 3},
			{Source: "ads", Clicks: 1},
			{Source: "", Clicks: 1},
		}, breakdown)
	})

	t.Run("empty log gives empty sequence", func(t *testing.T) {
		breakdown := links.BreakdownBySource(nil)

		assert.NotNil(t, breakdown)
		assert.Empty(t, breakdown)
	})
}

func TestAggregationProperties(t *testing.T) {
	sources := []string{"", "email", "ads", "social", "partner"}

	for seed := range uint64(25) {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			r := rand.New(rand.NewPCG(seed, seed))

			values := make([]string, r.IntN(200))
			for i := range values {
				values[i] = sources[r.IntN(len(sources))]
			}

			events := clicks(values...)
			counts := links.CountByTarget(events)
			breakdown := links.BreakdownBySource(events)

			total := 0
			for _, c := range counts {
				total += c
			}
			assert.Equal(t, len(events), total, "counts sum to log length")

			require.Len(t, breakdown, len(counts))
			for _, entry := range breakdown {
				assert.Equal(t, counts[entry.Source], entry.Clicks, "views agree for %q", entry.Source)
			}

			shuffled := append([]links.ClickEvent{}, events...)
			r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
			assert.Equal(t, counts, links.CountByTarget(shuffled), "grouping does not depend on order")
		})
	}
}

type stubClickLog struct {
	events []links.ClickEvent
	err    error
}

func (s *stubClickLog) Append(_ context.Context, _ links.ID, _ links.ClickEvent) error {
	return s.err
}

func (s *stubClickLog) ReadAll(_ context.Context, _ links.ID) ([]links.ClickEvent, error) {
	return s.events, s.err
}

func TestAggregator(t *testing.T) {
	t.Run("serves both views from the click log", func(t *testing.T) {
		agg := links.NewAggregator(&stubClickLog{events: clicks("email", "email", "ads")})

		counts, err := agg.CountsByTarget(context.Background(), "abc")
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"email": 2, "ads": 1}, counts)

		breakdown, err := agg.BySourceBreakdown(context.Background(), "abc")
		require.NoError(t, err)
		assert.Equal(t, []links.SourceClicks{{Source: "email", Clicks: 2}, {Source: "ads", Clicks: 1}}, breakdown)
	})

	t.Run("propagates not found", func(t *testing.T) {
		agg := links.NewAggregator(&stubClickLog{err: links.ErrLinkNotFound})

		_, err := agg.CountsByTarget(context.Background(), "missing")
		assert.ErrorIs(t, err, links.ErrNotFound)

		_, err = agg.BySourceBreakdown(context.Background(), "missing")
		assert.ErrorIs(t, err, links.ErrNotFound)
	})

	t.Run("wraps other errors as store failure", func(t *testing.T) {
		agg := links.NewAggregator(&stubClickLog{err: errMock})

		_, err := agg.CountsByTarget(context.Background(), "abc")

		assert.ErrorIs(t, err, links.ErrStoreFailure)
		assert.ErrorIs(t, err, errMock)
	})
}
