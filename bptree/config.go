package bptree

import "github.com/cockroachdb/errors"

const (
	DefaultOrder   = 4
	DefaultRecords = 4

	// MinOrder is the smallest usable order. With order 3 an inner node may shrink to a
	// single child and lose its siblings.
	MinOrder   = 4
	MinRecords = 1
)

var ErrInvalidConfig = errors.New("bptree: invalid config")

// Config sizes the nodes of a tree. Leaves and inner nodes are sized independently.
type Config struct {
	// Order is the maximum number of children of an inner node; it holds Order-1 keys.
	Order int
	// Records is the maximum number of key/value pairs of a leaf.
	Records int
}

func DefaultConfig() Config {
	return Config{Order: DefaultOrder, Records: DefaultRecords}
}

func (c Config) Validate() error {
	if c.Order < MinOrder {
		return errors.Wrapf(ErrInvalidConfig, "order %d is below the minimum of %d", c.Order, MinOrder)
	}
	if c.Records < MinRecords {
		return errors.Wrapf(ErrInvalidConfig, "records %d is below the minimum of %d", c.Records, MinRecords)
	}
	return nil
}
