// Package quota tracks the daily external search-call budget.
//
// The tracker persists a small {day, count} JSON record and resets the count
// whenever the calendar date changes. Single-process semantics: concurrent
// processes sharing the state file race last-write-wins.
package quota
