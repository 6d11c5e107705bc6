// Package idgen issues the request IDs sent to the Novel API in X-Request-ID.
package idgen

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	mu   sync.Mutex
	node *snowflake.Node
)

// MaxNodeID is the largest node ID a replica may use
func MaxNodeID() int64 {
	return -1 ^ (-1 << snowflake.NodeBits)
}

// Initialize sets the node this process generates IDs on. Each novel-web
// replica needs its own node; the CLI never calls this and gets node 1.
// Changing the node once IDs have been issued is an error.
func Initialize(nodeID int64) error {
	mu.Lock()
	defer mu.Unlock()
	return initLocked(nodeID)
}

func initLocked(nodeID int64) error {
	if node != nil {
		if node.Generate().Node() != nodeID {
			return fmt.Errorf("idgen already initialized with a different node")
		}
		return nil
	}
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return fmt.Errorf("invalid node ID %d: %w", nodeID, err)
	}
	node = n
	return nil
}

// GenerateID returns a new time-ordered ID in base 36, short enough for
// headers and log lines
func GenerateID() string {
	mu.Lock()
	if node == nil {
		_ = initLocked(1)
	}
	n := node
	mu.Unlock()
	return n.Generate().Base36()
}
