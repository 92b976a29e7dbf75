// Package timestamp normalizes the date encodings emitted by hosting
// platform APIs into time.Time. Parse tries an ordered table of textual
// layouts and falls back to epoch milliseconds; Timestamp plugs the same
// logic into JSON decoding.
package timestamp
