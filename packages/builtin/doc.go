// Package builtin provides the dynamic values available to harpi variables.
//
// A variable whose value is exactly one of these expressions is generated
// when a new session starts and kept for the rest of the session:
//   - $(guid): a random UUID v4 ($(uuid) is an alias)
//   - $(date): the current local time as 2006-01-02T15:04:05
//   - $(date.addMinutes(n)), $(date.addHours(n)), $(date.addDays(n))
//   - $(timestamp), $(timestampMs): Unix time in seconds or milliseconds
//   - $(random(min, max)), $(randomString(n)), $(randomEmail)
package builtin
