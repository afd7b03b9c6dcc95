package id

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	mu   sync.Mutex
)

// Init initializes the Snowflake node with the given node ID.
// Calling it again replaces the node, which keeps tests independent.
func Init(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return fmt.Errorf("creating snowflake node %d: %w", nodeID, err)
	}
	mu.Lock()
	node = n
	mu.Unlock()
	return nil
}

// New generates a new time-ordered unique int64 ID for a planning session.
// Falls back to node 0 when Init was never called (CLI one-shots, tests).
func New() int64 {
	return generate().Int64()
}

// NewString returns a compact base58 ID, used for request correlation.
func NewString() string {
	return generate().Base58()
}

func generate() snowflake.ID {
	mu.Lock()
	if node == nil {
		node, _ = snowflake.NewNode(0)
	}
	n := node
	mu.Unlock()
	return n.Generate()
}
