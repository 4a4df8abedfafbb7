package sessions

import "time"

// Record marks one refresh token as live. It is keyed by the token's jti and
// never stores the token itself.
type Record struct {
	TokenID   string    `bson:"_id" json:"jti"`
	UserID    string    `bson:"userId" json:"userId"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`
}

// Live reports whether the record is still inside its lifetime at now.
func (r *Record) Live(now time.Time) bool {
	return r != nil && now.Before(r.ExpiresAt)
}

func (r *Record) ttl(now time.Time) time.Duration {
	d := r.ExpiresAt.Sub(now)
	if d <= 0 {
		// ensure a minimal TTL so Redis won't store expired records
		d = time.Second
	}
	return d
}
