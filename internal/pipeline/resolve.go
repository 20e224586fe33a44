package pipeline

import (
	"context"
	"fmt"
	"strconv"

	"github.com/specialistvlad/gridetl/internal/ctxlog"
	"github.com/specialistvlad/gridetl/internal/runctx"
)

// OverrideKey is the conf entry that pins the partition key of a run.
const OverrideKey = "process_date"

// Resolve publishes the run's partition key.
type Resolve struct {
	// Conf holds the run's override parameters. It may be nil.
	Conf  map[string]any
	Clock Clock
}

func (r *Resolve) Produces() []string { return []string{ProcessDate.Key()} }

// Run pushes exactly one value under process_date. A second Run against the
// same context fails with runctx.ErrDuplicateKey.
func (r *Resolve) Run(ctx context.Context, rc *runctx.Context) error {
	logger := ctxlog.FromContext(ctx)

	clock := r.Clock
	if clock == nil {
		clock = SystemClock
	}
	key, source := ResolveKey(r.Conf, clock)

	if err := ProcessDate.Push(rc, key); err != nil {
		return err
	}
	logger.Info("Partition key resolved.", "process_date", string(key), "source", source)
	return nil
}

// ResolveKey applies the resolution precedence: a non-null override is used
// verbatim, otherwise today's date from clock. The second return value names
// the source ("conf" or "clock").
func ResolveKey(conf map[string]any, clock Clock) (PartitionKey, string) {
	if v, ok := conf[OverrideKey]; ok && v != nil {
		return PartitionKey(scalarString(v)), "conf"
	}
	return PartitionKey(clock.Now().Format(DateLayout)), "clock"
}

// scalarString renders an override value. The format is not validated.
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
