// Package domain models the NOAA Climate Prediction Center (CPC) Southern
// Oscillation Index (SOI) report and the steps that turn it into a monthly
// time series.
//
// # Data Source
//
// The CPC publishes the SOI as a fixed-width text report at
// https://www.cpc.ncep.noaa.gov/data/indices/soi. The file carries a short
// title, the anomaly table, and a second "STANDARDIZED DATA" table that this
// service ignores.
//
// # Report Conventions
//
// Anomaly rows:
//
//	"<year> <jan> <feb> ... <dec>"  →  e.g. "1951   2.5   1.5  -0.2 ..."
//	A 4-digit year followed by 12 whitespace-separated values in tenths
//	of a hectopascal anomaly. The first data year is 1951.
//
// Table boundaries:
//
//	The anomaly block starts at the first line whose trimmed text begins
//	with "1951" and ends before the first later line containing
//	"STANDARDIZED". See [ExtractBlock].
//
// Missing values:
//
//	"-999.9" is the CPC sentinel for an unreported month (typically the
//	trailing months of the current year). It is replaced by [MissingToken]
//	before splitting, so it never reaches the numeric parser as a value.
//
// Malformed rows:
//
//	Rows without exactly 13 fields are dropped, never padded.
//
// # Output
//
// The wide table is melted into one [LongRecord] per (year, month), dated the
// first of the month in UTC. Records before the cutoff month (1985-01 by
// default) or with an unbuildable date are filtered out by [FilterSince].
package domain
