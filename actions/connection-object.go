package actions

import (
	"strings"
	"sync"
)

// ConnectionObject should be constructed with public property ConnectionObject set using format:
// <connection>[.<schema>]
type ConnectionObject struct {
	ConnectionObject string `errorTxt:"<connection>[.<schema>]" mandatory:"yes"`
	connection       string
	schema           string
	done             bool
	mu               sync.Mutex
}

func (c *ConnectionObject) GetConnectionName() string {
	c.splitConnectString()
	return c.connection
}

// GetSchema returns the schema part or "" if none was given.
func (c *ConnectionObject) GetSchema() string {
	c.splitConnectString()
	return c.schema
}

// splitConnectString splits on the first period so schema names may themselves contain periods
// when quoted by the caller.
func (c *ConnectionObject) splitConnectString() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return
	}
	i := strings.Index(c.ConnectionObject, ".")
	if i > 0 {
		c.connection = c.ConnectionObject[:i]
		c.schema = c.ConnectionObject[i+1:]
	} else {
		c.connection = c.ConnectionObject
	}
	if c.ConnectionObject != "" {
		c.done = true
	}
}
