package redis

import (
	"fmt"

	"github.com/mcoot/tabletag-go/internal/model"
)

// Key prefix for all session data
const keyPrefix = "tabletag"

// clientKey returns the Redis key for a client record, keyed by token
func clientKey(token string) string {
	return fmt.Sprintf("%s:client:%s", keyPrefix, token)
}

// clientIDIndexKey returns the Redis key for the client_id -> token index
func clientIDIndexKey(id model.ClientID) string {
	return fmt.Sprintf("%s:idx:client_id:%s", keyPrefix, id)
}

// clientSetKey returns the Redis key for the SET of all client tokens
func clientSetKey() string {
	return fmt.Sprintf("%s:clients", keyPrefix)
}

// playerKey returns the Redis key for a player record
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// playerSetKey returns the Redis key for the SET of all player ids
func playerSetKey() string {
	return fmt.Sprintf("%s:players", keyPrefix)
}
