package reconcile

import "fmt"

// Strategy selects when import writes reach the store.
type Strategy int

const (
	// StrategyBuffered keeps every decision in memory and writes once at Commit.
	StrategyBuffered Strategy = iota
	// StrategyDirect writes each decision immediately inside one long-lived transaction.
	StrategyDirect
)

func (s Strategy) String() string {
	switch s {
	case StrategyBuffered:
		return "buffered"
	case StrategyDirect:
		return "direct"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy maps a config value to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "buffered", "":
		return StrategyBuffered, nil
	case "direct":
		return StrategyDirect, nil
	default:
		return 0, fmt.Errorf("%w: unknown strategy %q", ErrInvalidOptions, s)
	}
}

// TxMode selects the store transaction discipline of a run.
type TxMode int

const (
	// TxSingle runs every write in one transaction committed at the end.
	TxSingle TxMode = iota
	// TxAutoCommit commits each write on its own. Partial progress survives a later failure.
	TxAutoCommit
)

func (m TxMode) String() string {
	switch m {
	case TxSingle:
		return "single"
	case TxAutoCommit:
		return "auto"
	default:
		return fmt.Sprintf("txmode(%d)", int(m))
	}
}

// ParseTxMode maps a config value to a TxMode.
func ParseTxMode(s string) (TxMode, error) {
	switch s {
	case "single", "":
		return TxSingle, nil
	case "auto":
		return TxAutoCommit, nil
	default:
		return 0, fmt.Errorf("%w: unknown transaction mode %q", ErrInvalidOptions, s)
	}
}

// Options controls an import run.
type Options struct {
	Strategy Strategy
	TxMode   TxMode
	// DryRun computes every decision and statistic but writes nothing.
	DryRun bool
	// AlwaysUpdateMetadata refreshes origin metadata even for stale records.
	AlwaysUpdateMetadata bool
	// MetadataOnly restricts updates of existing entities to metadata fields.
	MetadataOnly bool
	// DebugTrace logs every decision at debug level.
	DebugTrace bool
}

// Validate rejects combinations that cannot stay atomic.
func (o Options) Validate() error {
	if o.Strategy == StrategyDirect && o.TxMode != TxSingle {
		return fmt.Errorf("%w: direct strategy requires a single transaction", ErrInvalidOptions)
	}
	return nil
}

// ExportOptions controls an export run.
type ExportOptions struct {
	// IgnoreDate skips the staleness check.
	IgnoreDate bool
	// DebugTrace logs every decision at debug level.
	DebugTrace bool
}
