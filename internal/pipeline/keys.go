package pipeline

import (
	"time"

	"github.com/specialistvlad/gridetl/internal/runctx"
)

// DateLayout is the format of a partition key derived from the clock.
const DateLayout = "2006-01-02"

// PartitionKey identifies one day's slice of the target table.
type PartitionKey string

// ProcessDate carries the run's partition key from the resolver to every
// data-affecting task.
var ProcessDate = runctx.NewSlot[PartitionKey]("process_date")

// Clock supplies the current time to the resolver.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock in local time.
var SystemClock Clock = ClockFunc(time.Now)
