// Package export renders stored tables as spreadsheets.
package export
