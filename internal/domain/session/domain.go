package session

import (
	"time"
)

// RefreshToken is the persisted record backing a refresh token's revocability.
// The token value itself is the key; a record that is deleted makes the token
// unusable even while its signature would still verify.
type RefreshToken struct {
	Token     string
	UserID    int64
	CreatedAt time.Time
}
