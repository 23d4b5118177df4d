package mongodb

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/UmangSachdeva/fintrack/store"
)

// buildFilter scopes q to the owner and translates its filters into a bson document.
func buildFilter(userID primitive.ObjectID, q store.Query) bson.M {
	filter := bson.M{"user_id": userID}

	for field, value := range q.Filters {
		filter[field] = value
	}

	if q.Search != "" && q.SearchField != "" {
		filter[q.SearchField] = primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
	}

	if q.From != nil || q.To != nil {
		dateRange := bson.M{}
		if q.From != nil {
			dateRange["$gte"] = *q.From
		}
		if q.To != nil {
			dateRange["$lte"] = *q.To
		}
		filter["date"] = dateRange
	}

	return filter
}

func buildFindOptions(q store.Query) *options.FindOptions {
	q = q.Normalized()

	direction := -1
	if q.Asc {
		direction = 1
	}

	return options.Find().
		SetLimit(int64(q.Limit)).
		SetSkip(q.Skip()).
		SetSort(bson.D{{Key: q.Sort, Value: direction}, {Key: "_id", Value: direction}})
}
