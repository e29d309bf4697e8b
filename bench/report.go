package bench

import (
	"fmt"
	"io"
)

// WriteReport writes one line per result with the bytes per row of both tables.
func WriteReport(w io.Writer, results []Result) error {
	for _, r := range results {
		_, err := fmt.Fprintf(w, "users %d, row group size %d, mode %s; users: %.4f, purchases: %.4f\n",
			r.UsersRows, r.GroupSize, r.Mode, r.Users.BytesPerRow(), r.Purchases.BytesPerRow())
		if err != nil {
			return err
		}
	}

	return nil
}
