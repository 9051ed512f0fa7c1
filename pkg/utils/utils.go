// Package utils holds small generic helpers shared across the
// simulator core. Presentation-only helpers (color, padding, table
// rendering) from the teacher's version were dropped along with the
// presentation layer — see DESIGN.md.
package utils

import (
	"bytes"
	"io"
)

// Max returns the maximum of two integers.
func Max(x, y int) int {
	if x > y {
		return x
	}
	return y
}

// Min returns the minimum of two integers.
func Min(x, y int) int {
	if x < y {
		return x
	}
	return y
}

// SafeTruncate truncates a string to at most limit bytes.
func SafeTruncate(str string, limit int) string {
	if len(str) > limit {
		return str[0:limit]
	}
	return str
}

type multiErr []error

func (m multiErr) Error() string {
	var b bytes.Buffer
	b.WriteString("encountered multiple errors:")
	for _, err := range m {
		b.WriteString("\n\t... " + err.Error())
	}
	return b.String()
}

// CloseMany closes every closer, returning an aggregate error if any
// close failed.
func CloseMany(closers []io.Closer) error {
	errs := make([]error, 0, len(closers))
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return multiErr(errs)
	}
	return nil
}
