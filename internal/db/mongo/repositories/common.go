// Package repositories contains MongoDB repository implementations.
package repositories

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jasim8799/api/internal/utils"
)

// cmdSet - See https://www.mongodb.com/docs/manual/reference/operator/update/set/
func cmdSet(i any) bson.E {
	return bson.E{
		Key:   "$set",
		Value: i,
	}
}

// cmdInc - See https://www.mongodb.com/docs/manual/reference/operator/update/inc/
func cmdInc(i any) bson.E {
	return bson.E{
		Key:   "$inc",
		Value: i,
	}
}

// cmdPush - See https://www.mongodb.com/docs/manual/reference/operator/update/push/
func cmdPush(i any) bson.E {
	return bson.E{
		Key:   "$push",
		Value: i,
	}
}

// exactInsensitive matches value literally, ignoring case.
func exactInsensitive(value string) bson.M {
	return bson.M{"$regex": utils.ExactMatchPattern(value), "$options": "i"}
}

// containsInsensitive matches documents whose field contains value, ignoring case.
func containsInsensitive(value string) bson.M {
	return bson.M{"$regex": utils.ContainsPattern(value), "$options": "i"}
}
