// Package domain models school safety accident records and the two
// computations run over them: per-year tabulation of one categorical
// dimension, and per-label linear trend projection.
//
// # Data Source
//
// Records come from a workbook with one sheet per calendar year ("2019" to
// "2023"). Each row is one accident reported to the school safety mutual aid
// scheme. The workbook adapter maps columns to [Record] fields; this package
// never sees column names.
//
// # Workbook Conventions
//
// Region:
//
//	Provincial name such as "서울" or "경기". Matched exactly, case and
//	spacing included. A caller spelling a region differently from the
//	workbook silently matches no rows.
//
// Weekday:
//
//	One of the tokens 월 화 수 목 금 토 일, also matched exactly.
//
// Time of day:
//
//	"HH:MM" in 24-hour notation, e.g. "13:40". Only the hour is used.
//	Empty or malformed values leave the record without an hour, so it never
//	matches an hour-bounded filter. A year in which not a single value parses
//	(or whose sheet lacks the column) is skipped as a whole and reported in
//	[Tabulation.Skipped] rather than tabulated as zero.
//
// Dimensions:
//
//	place (5 labels), body_part (9), type (8), activity (8), object (7),
//	grade (8). Label sets are closed; see [Dimensions]. Values outside a
//	label set get no percentage of their own but are kept in the raw
//	tallies and count toward the denominator. Blank values count toward
//	neither.
//
// # Projection
//
// For each label, the per-year counts of the filtered records are fitted with
// ordinary least squares (count = a*year + b) and evaluated at the target
// year, by default the year after the latest sheet. Negative predictions are
// clamped to zero before percentages are derived, so the projected shares
// always sum to 100 when anything is predicted at all.
//
// A label is predicted as zero without fitting when fewer than two distinct
// years are available, or when any dataset year was skipped during
// tabulation. In the second case the remaining years are not fitted on their
// own.
//
// Models are built per call and discarded. Nothing in this package keeps
// state between calls; a [Dataset] is read-only after construction and every
// query works on copies of its tables.
package domain
