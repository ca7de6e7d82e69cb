package id

import (
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init sets up the process-wide Snowflake node. Only the first call has effect.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New returns a time-ordered int64 id for projects, plans and plan items.
func New() int64 {
	return node.Generate().Int64()
}

// Parse reads an id from its decimal form as it appears in URLs and diagnostics.
func Parse(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// Format is the inverse of Parse.
func Format(v int64) string {
	return strconv.FormatInt(v, 10)
}
