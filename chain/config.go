package chain

import (
	"fmt"
	"strings"
)

// OrphanPolicy decides what to do with a block whose parent is unknown
type OrphanPolicy int

const (
	// OrphanBuffer keeps the block until its parent arrives
	OrphanBuffer OrphanPolicy = iota
	// OrphanReject refuses the block with ErrOrphanBlock
	OrphanReject
)

const DefaultMaxOrphans = 256

func (p OrphanPolicy) String() string {
	switch p {
	case OrphanBuffer:
		return "buffer"
	case OrphanReject:
		return "reject"
	default:
		return fmt.Sprintf("OrphanPolicy(%d)", int(p))
	}
}

// ParseOrphanPolicy parses "buffer" or "reject". Empty string means the default policy
func ParseOrphanPolicy(s string) (OrphanPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "buffer":
		return OrphanBuffer, nil
	case "reject":
		return OrphanReject, nil
	default:
		return OrphanBuffer, fmt.Errorf("unknown orphan policy %q", s)
	}
}

// Config holds chain options.
type Config struct {
	OrphanPolicy OrphanPolicy
	MaxOrphans   int      // capacity of orphan pool. Zero means DefaultMaxOrphans
	Genesis      *Genesis // nil means DefaultGenesisConfig
	LogForks     bool     // print the fork tree when the current fork is switched
}

func (c Config) maxOrphans() int {
	if c.MaxOrphans <= 0 {
		return DefaultMaxOrphans
	}
	return c.MaxOrphans
}

func (c Config) genesis() *Genesis {
	if c.Genesis == nil {
		return DefaultGenesisConfig()
	}
	return c.Genesis
}
