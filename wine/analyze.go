package wine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Priced identifies the most expensive wine of a collection.
type Priced struct {
	Wine     string          `json:"wine"`
	Price    decimal.Decimal `json:"price"`
	Producer string          `json:"producer"`
	Year     int             `json:"year"`
}

// Stats summarizes a collection. Counts are weighted by bottle quantity.
type Stats struct {
	TotalBottles  int            `json:"total_bottles"`
	UniqueWines   int            `json:"total_unique_wines"`
	Countries     map[string]int `json:"countries"`
	Regions       map[string]int `json:"regions"`
	Grapes        map[string]int `json:"grapes"`
	Years         map[int]int    `json:"years"`
	Producers     map[string]int `json:"producers"`
	MostExpensive *Priced        `json:"most_expensive"`
}

// Analyze computes Stats over records.
func Analyze(records []Record) (*Stats, error) {
	if len(records) == 0 {
		return nil, ErrNoWines
	}

	s := &Stats{
		UniqueWines: len(records),
		Countries:   map[string]int{},
		Regions:     map[string]int{},
		Grapes:      map[string]int{},
		Years:       map[int]int{},
		Producers:   map[string]int{},
	}
	highest := decimal.Zero

	for _, r := range records {
		s.TotalBottles += r.Quantity
		s.Countries[r.Country] += r.Quantity
		s.Regions[r.Region] += r.Quantity
		s.Years[r.Year] += r.Quantity
		s.Producers[r.Producer] += r.Quantity
		for _, g := range strings.Split(r.Grapes, ",") {
			s.Grapes[strings.TrimSpace(g)] += r.Quantity
		}
		if r.Price.GreaterThan(highest) {
			highest = r.Price
			s.MostExpensive = &Priced{Wine: r.Name, Price: r.Price, Producer: r.Producer, Year: r.Year}
		}
	}
	return s, nil
}

// Count is one entry of a ranked tally.
type Count struct {
	Key   string
	Count int
}

// Top returns the n largest entries of m, ordered by count then key. n <= 0
// returns all entries. Empty keys are skipped.
func Top(m map[string]int, n int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		if k == "" {
			continue
		}
		out = append(out, Count{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Context renders the statistics as the plain-text block handed to the
// sommelier agent.
func (s *Stats) Context() string {
	var b strings.Builder
	fmt.Fprintf(&b, "The collection holds %d bottles across %d wines.\n", s.TotalBottles, s.UniqueWines)
	writeTop(&b, "Countries", s.Countries)
	writeTop(&b, "Regions", s.Regions)
	writeTop(&b, "Grapes", s.Grapes)
	writeTop(&b, "Producers", s.Producers)

	years := make(map[string]int, len(s.Years))
	for y, c := range s.Years {
		if y > 0 {
			years[fmt.Sprint(y)] = c
		}
	}
	writeTop(&b, "Vintages", years)

	if m := s.MostExpensive; m != nil {
		fmt.Fprintf(&b, "Most expensive: %s by %s (%d) at %s.\n", m.Wine, m.Producer, m.Year, m.Price.StringFixed(2))
	}
	return b.String()
}

func writeTop(b *strings.Builder, label string, m map[string]int) {
	top := Top(m, 5)
	if len(top) == 0 {
		return
	}
	parts := make([]string, len(top))
	for i, c := range top {
		parts[i] = fmt.Sprintf("%s (%d)", c.Key, c.Count)
	}
	fmt.Fprintf(b, "%s: %s\n", label, strings.Join(parts, ", "))
}
