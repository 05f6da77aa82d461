package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes flattened rows with a header in the canonical column
// order.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.UserHandle,
			r.AuthorHandle,
			r.AuthorDisplayName,
			r.CreatedAt,
			r.PostType,
			r.Text,
			r.WebURL,
			strconv.FormatInt(r.Likes, 10),
			strconv.FormatInt(r.Reposts, 10),
			strconv.FormatInt(r.Replies, 10),
			r.URLs,
			r.Images,
			r.Mentions,
			r.Lang,
			r.CID,
			r.AuthorDID,
			r.URI,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
