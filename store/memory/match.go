package memory

import (
	"bytes"
	"cmp"
	"reflect"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/UmangSachdeva/fintrack/store"
)

// toM round-trips v through bson so documents and filter values compare with
// the same types Mongo would see.
func toM(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}

	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}

	return m, nil
}

type matcher struct {
	userID  primitive.ObjectID
	q       store.Query
	filters bson.M
}

func newMatcher(userID primitive.ObjectID, q store.Query) (*matcher, error) {
	m := &matcher{userID: userID, q: q, filters: bson.M{}}

	if len(q.Filters) > 0 {
		filters, err := toM(q.Filters)
		if err != nil {
			return nil, err
		}
		m.filters = filters
	}

	return m, nil
}

func (m *matcher) match(doc bson.M) bool {
	if owner, _ := doc["user_id"].(primitive.ObjectID); owner != m.userID {
		return false
	}

	for field, want := range m.filters {
		if !fieldEquals(doc[field], want) {
			return false
		}
	}

	if m.q.Search != "" && m.q.SearchField != "" {
		text, _ := doc[m.q.SearchField].(string)
		if !strings.Contains(strings.ToLower(text), strings.ToLower(m.q.Search)) {
			return false
		}
	}

	if m.q.From != nil || m.q.To != nil {
		dt, ok := doc["date"].(primitive.DateTime)
		if !ok {
			return false
		}
		at := dt.Time()
		if m.q.From != nil && at.Before(*m.q.From) {
			return false
		}
		if m.q.To != nil && at.After(*m.q.To) {
			return false
		}
	}

	return true
}

func fieldEquals(got, want any) bool {
	if arr, ok := got.(primitive.A); ok {
		for _, el := range arr {
			if reflect.DeepEqual(el, want) {
				return true
			}
		}
		return false
	}

	return reflect.DeepEqual(got, want)
}

// compareField orders two documents by field, falling back to _id.
func compareField(a, b bson.M, field string) int {
	if c := compareValues(a[field], b[field]); c != 0 {
		return c
	}

	idA, _ := a["_id"].(primitive.ObjectID)
	idB, _ := b["_id"].(primitive.ObjectID)

	return bytes.Compare(idA[:], idB[:])
}

func compareValues(a, b any) int {
	switch x := a.(type) {
	case primitive.DateTime:
		y, _ := b.(primitive.DateTime)
		return cmp.Compare(x, y)
	case string:
		y, _ := b.(string)
		return cmp.Compare(x, y)
	case int32:
		y, _ := b.(int32)
		return cmp.Compare(x, y)
	case int64:
		y, _ := b.(int64)
		return cmp.Compare(x, y)
	case float64:
		y, _ := b.(float64)
		return cmp.Compare(x, y)
	case primitive.ObjectID:
		y, _ := b.(primitive.ObjectID)
		return bytes.Compare(x[:], y[:])
	case nil:
		if b == nil {
			return 0
		}
		return -1
	}

	return 0
}
