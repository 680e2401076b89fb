package store

import (
	"strings"
	"time"
)

// EventFilter is the caller-constructed filter set for event listings.
// Zero values mean "not filtered"; price bounds use pointers so an
// explicit 0 still counts as a bound.
type EventFilter struct {
	Query    string
	Category string
	Date     *time.Time
	Location string
	MinPrice *int
	MaxPrice *int
	OnlyFree bool
	Featured bool
	Sort     string
	Limit    int
	Cursor   string
}

// sortColumns whitelists the sort keys exposed to callers. Free events
// store price as NULL, which Postgres would order ahead of every paid
// event under DESC and which no seek comparison can readmit, so the
// price key sorts on COALESCE to keep cursor pages contiguous.
var sortColumns = map[string]string{
	"date":           "events.date",
	"created_at":     "events.created_at",
	"name":           "events.name",
	"price":          "COALESCE(events.price, 0)",
	"attendee_count": "events.attendee_count",
}

func sortColumn(key string) string {
	if col, ok := sortColumns[key]; ok {
		return col
	}
	return sortColumns["date"]
}

// predicate accumulates conditions into an AND group plus a single OR
// group, then compiles them into one SQL condition. The OR group holds
// the substring matches (text query and location), which union with
// each other but intersect with everything else.
type predicate struct {
	conds   []string
	args    []any
	orConds []string
	orArgs  []any
}

func (p *predicate) and(cond string, args ...any) {
	p.conds = append(p.conds, cond)
	p.args = append(p.args, args...)
}

func (p *predicate) or(cond string, args ...any) {
	p.orConds = append(p.orConds, cond)
	p.orArgs = append(p.orArgs, args...)
}

// compile flattens the groups into a condition string and its
// arguments. Both are empty when no filter was provided.
func (p *predicate) compile() (string, []any) {
	conds := p.conds
	args := p.args
	if len(p.orConds) > 0 {
		conds = append(conds, "("+strings.Join(p.orConds, " OR ")+")")
		args = append(args, p.orArgs...)
	}
	return strings.Join(conds, " AND "), args
}

// buildPredicate translates a filter set into a composed predicate.
// Absent filters are omitted; this never fails.
func buildPredicate(filter EventFilter) *predicate {
	p := &predicate{}

	if q := strings.TrimSpace(filter.Query); q != "" {
		contains := "%" + q + "%"
		p.or("events.name ILIKE ?", contains)
		p.or("events.description ILIKE ?", contains)
	}

	if loc := strings.TrimSpace(filter.Location); loc != "" {
		contains := "%" + loc + "%"
		p.or("events.location ILIKE ?", contains)
		p.or("events.venue ILIKE ?", contains)
	}

	if filter.Category != "" {
		p.and("events.category_id IN (SELECT id FROM categories WHERE slug = ?)", filter.Category)
	}

	if filter.Date != nil {
		day := time.Date(filter.Date.Year(), filter.Date.Month(), filter.Date.Day(), 0, 0, 0, 0, filter.Date.Location())
		p.and("events.date >= ? AND events.date < ?", day, day.AddDate(0, 0, 1))
	}

	if filter.OnlyFree {
		p.and("events.is_free = ?", true)
	} else if filter.MinPrice != nil || filter.MaxPrice != nil {
		// Price bounds only ever select paid events.
		p.and("events.is_free = ?", false)
		if filter.MinPrice != nil {
			p.and("events.price >= ?", *filter.MinPrice)
		}
		if filter.MaxPrice != nil {
			p.and("events.price <= ?", *filter.MaxPrice)
		}
	}

	if filter.Featured {
		p.and("events.is_featured = ?", true)
	}

	return p
}
