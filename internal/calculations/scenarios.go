package calculations

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// CompareScenarios прогоняет одну и ту же программу взносов по каждой из
// именованных сеток и возвращает итоговый снимок для каждой.
// Все сетки проверяются до начала расчетов; прогоны независимы и идут параллельно.
func CompareScenarios(initialBalance, monthlyContribution decimal.Decimal, years int,
	tierStructures map[string][]TierDefinition) (map[string]ProjectionSnapshot, error) {

	if err := validateProjection(initialBalance, monthlyContribution, years); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(tierStructures))
	for name := range tierStructures {
		names = append(names, name)
	}
	sort.Strings(names)

	fns := make(map[string]InterestFunc, len(names))
	for _, name := range names {
		fn, err := TieredRate(tierStructures[name])
		if err != nil {
			return nil, fmt.Errorf("rate structure %q: %w", name, err)
		}
		fns[name] = fn
	}

	var (
		mu      sync.Mutex
		g       errgroup.Group
		results = make(map[string]ProjectionSnapshot, len(names))
	)
	for _, name := range names {
		name, fn := name, fns[name]
		g.Go(func() error {
			snapshots, err := RunProjection(initialBalance, monthlyContribution, years, fn)
			if err != nil {
				return fmt.Errorf("rate structure %q: %w", name, err)
			}
			mu.Lock()
			results[name] = snapshots[len(snapshots)-1]
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// RankScenarios упорядочивает результаты по убыванию итогового баланса;
// при равенстве по имени
func RankScenarios(results map[string]ProjectionSnapshot) []RankedScenario {
	ranked := make([]RankedScenario, 0, len(results))
	for name, snap := range results {
		ranked = append(ranked, RankedScenario{Name: name, Snapshot: snap})
	}
	sort.Slice(ranked, func(i, j int) bool {
		cmp := ranked[i].Snapshot.EndingBalance.Cmp(ranked[j].Snapshot.EndingBalance)
		if cmp != 0 {
			return cmp > 0
		}
		return ranked[i].Name < ranked[j].Name
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
