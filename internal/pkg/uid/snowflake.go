package uid

import (
	"errors"
	"hash/fnv"
	"os"

	"github.com/bwmarrin/snowflake"
)

// ErrInvalidNode is returned when the node number is outside the snowflake range.
var ErrInvalidNode = errors.New("uid: snowflake node out of range")

// Snowflake generates 63-bit time-ordered ids.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake creates a generator whose node number is derived from the
// hostname. Use NewSnowflakeNode to pin it explicitly.
func NewSnowflake() (*Snowflake, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, err
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(host))

	return NewSnowflakeNode(int64(h.Sum32() % 1024))
}

// NewSnowflakeNode creates a generator for the given node (0..1023).
func NewSnowflakeNode(node int64) (*Snowflake, error) {
	if node < 0 || node > 1023 {
		return nil, ErrInvalidNode
	}

	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: n}, nil
}

// Generate returns the next id.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
