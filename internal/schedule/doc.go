// Package schedule fires pipeline runs on a calendar schedule.
//
// Only ticks that happen while the process is running fire: missed
// intervals are never back-filled, and a tick that arrives while the
// previous run is still going is dropped. Ticks before the configured start
// date are ignored.
package schedule
