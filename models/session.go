package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Session anchors a refresh token. A refresh token is only honored while the
// session it names still exists and is valid. One session per login event.
type Session struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    bson.ObjectID `bson:"userId" json:"user_id"`
	UserAgent string        `bson:"userAgent" json:"user_agent"`
	Role      Role          `bson:"role" json:"role"`
	Valid     bool          `bson:"valid" json:"valid"`
	CreatedAt time.Time     `bson:"createdAt" json:"created_at"`
}
