// internal/app/system/search/search.go
package search

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Filter builds a case-insensitive substring match of q across fields.
// The query is matched literally; regex metacharacters are escaped.
// An empty query matches everything.
func Filter(q string, fields ...string) bson.M {
	q = strings.TrimSpace(q)
	if q == "" || len(fields) == 0 {
		return bson.M{}
	}
	re := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: re})
	}
	return bson.M{"$or": or}
}

// LooksLikeMobile reports whether q consists only of digits, the shape of a
// partial or full mobile number search.
func LooksLikeMobile(q string) bool {
	q = strings.TrimSpace(q)
	if q == "" {
		return false
	}
	for i := 0; i < len(q); i++ {
		if q[i] < '0' || q[i] > '9' {
			return false
		}
	}
	return true
}
