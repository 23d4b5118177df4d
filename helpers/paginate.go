package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/UmangSachdeva/fintrack/store"
)

var ErrInvalidQuery = errors.New("invalid query parameter")

type FilterKind int

const (
	FilterString FilterKind = iota
	FilterObjectID
	FilterBool
)

// Filter maps a query parameter onto a stored field.
type Filter struct {
	Field string
	Kind  FilterKind
}

// QueryRules describe what a list endpoint accepts.
type QueryRules struct {
	SearchField string
	Sortable    []string
	Filters     map[string]Filter
	// Dated enables the from/to range on the date field.
	Dated bool
}

// ParseQuery reads page, limit, sort, order, search, from, to and the
// endpoint's filters from the request query string.
func ParseQuery(r *http.Request, rules QueryRules) (store.Query, error) {
	values := r.URL.Query()
	q := store.Query{SearchField: rules.SearchField}

	if v := values.Get("page"); v != "" {
		page, err := cast.ToIntE(v)
		if err != nil || page < 1 {
			return q, fmt.Errorf("%w: page", ErrInvalidQuery)
		}
		q.Page = page
	}

	if v := values.Get("limit"); v != "" {
		limit, err := cast.ToIntE(v)
		if err != nil || limit < 1 {
			return q, fmt.Errorf("%w: limit", ErrInvalidQuery)
		}
		q.Limit = limit
	}

	if v := values.Get("sort"); v != "" {
		if !slices.Contains(rules.Sortable, v) {
			return q, fmt.Errorf("%w: sort", ErrInvalidQuery)
		}
		q.Sort = v
	}

	switch strings.ToLower(values.Get("order")) {
	case "", "desc":
	case "asc":
		q.Asc = true
	default:
		return q, fmt.Errorf("%w: order", ErrInvalidQuery)
	}

	if rules.SearchField != "" {
		q.Search = strings.TrimSpace(values.Get("search"))
	}

	for param, filter := range rules.Filters {
		v := values.Get(param)
		if v == "" {
			continue
		}
		value, err := filterValue(v, filter.Kind)
		if err != nil {
			return q, fmt.Errorf("%w: %s", ErrInvalidQuery, param)
		}
		q = q.Where(filter.Field, value)
	}

	if rules.Dated {
		from, err := ParseDate(values.Get("from"), false)
		if err != nil {
			return q, fmt.Errorf("%w: from", ErrInvalidQuery)
		}
		to, err := ParseDate(values.Get("to"), true)
		if err != nil {
			return q, fmt.Errorf("%w: to", ErrInvalidQuery)
		}
		q.From, q.To = from, to
	}

	return q.Normalized(), nil
}

func filterValue(v string, kind FilterKind) (any, error) {
	switch kind {
	case FilterObjectID:
		return primitive.ObjectIDFromHex(v)
	case FilterBool:
		return cast.ToBoolE(v)
	default:
		return v, nil
	}
}

// ParseDate accepts RFC 3339 timestamps or plain dates. A plain date used as
// an upper bound covers the whole day. An empty string yields nil.
func ParseDate(v string, endOfDay bool) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return &t, nil
}
