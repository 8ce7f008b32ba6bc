package idgen

import (
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Initialize sets up the Snowflake ID generator with a node ID.
// Only the first call has any effect; every server replica needs its own node ID.
func Initialize(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// GenerateID generates a new Snowflake ID as a string
func GenerateID() string {
	if node == nil {
		_ = Initialize(1)
	}
	return node.Generate().String()
}

// IssuedAt returns the wall-clock time embedded in an ID produced by GenerateID.
func IssuedAt(id string) (time.Time, error) {
	parsed, err := snowflake.ParseString(id)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid snowflake id %q: %w", id, err)
	}
	return time.UnixMilli(parsed.Time()), nil
}
