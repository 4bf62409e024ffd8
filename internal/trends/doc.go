// Package trends turns the mutation long table into daily per-label
// frequencies.
//
// Denominators come from the full sample roster, not from the long table,
// so samples without any mutation still count toward their day's total.
// A frequency with no denominator is nil, never zero.
package trends
