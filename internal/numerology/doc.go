// Package numerology computes the birth-date matrix.
//
// The package is pure: every function derives its result from its arguments
// only, allocates local state and is safe for concurrent use. Presentation
// (labels, sentinels for empty cells, interpretation text) belongs to callers.
//
// # Pipeline
//
//  1. [ParseBirthDate] or [NewBirthDate] validates the input and yields an
//     immutable [BirthDate].
//  2. [DeriveCore] computes the core numbers from the 8-digit sequence.
//  3. [BuildPool] concatenates the date digits with the decimal digits of
//     every core number (plus one extra 9 for years from 2020 on).
//  4. [BuildMatrix] tallies the pool for digits 1-9.
//
// [Calculate] runs steps 2-4 for an already validated date.
//
// # Reduction
//
// Two reduction strategies exist and callers must name the one they need:
//
//   - [ReduceFull] sums digits until a single digit remains. Used for the
//     second and fourth core numbers.
//   - [ReduceMaster] stops early at the master numbers 11, 22 and 33. Used by
//     the personal year and month forecast.
//
// # Errors
//
// Validation fails with a [*DateError] that unwraps to one of
// [ErrInvalidFormat], [ErrOutOfRange], [ErrImpossibleDate] or [ErrFutureDate].
// [ErrInvariantViolation] signals an internal bug, never bad user input.
package numerology
