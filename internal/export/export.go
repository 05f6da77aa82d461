// Package export writes aggregated result sets to the supported output
// formats: nested JSON keyed by handle, and flattened CSV or Parquet in a
// fixed canonical column order.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/blackmichael/bluesky-posts/internal/domain"
)

// Format selects an output encoding.
const (
	FormatJSON    = "json"
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// Columns is the canonical flattened column order shared by CSV and
// Parquet. It must not be reordered; downstream consumers key on it.
var Columns = []string{
	"user_handle",
	"author_handle",
	"author_display_name",
	"created_at",
	"post_type",
	"text",
	"web_url",
	"likes",
	"reposts",
	"replies",
	"urls",
	"images",
	"mentions",
	"lang",
	"cid",
	"author_did",
	"uri",
}

// Row is one flattened record. Array-valued columns are serialized as
// JSON-array strings so every format round-trips the same values.
type Row struct {
	UserHandle        string `parquet:"user_handle"`
	AuthorHandle      string `parquet:"author_handle"`
	AuthorDisplayName string `parquet:"author_display_name"`
	CreatedAt         string `parquet:"created_at"`
	PostType          string `parquet:"post_type"`
	Text              string `parquet:"text"`
	WebURL            string `parquet:"web_url"`
	Likes             int64  `parquet:"likes"`
	Reposts           int64  `parquet:"reposts"`
	Replies           int64  `parquet:"replies"`
	URLs              string `parquet:"urls"`
	Images            string `parquet:"images"`
	Mentions          string `parquet:"mentions"`
	Lang              string `parquet:"lang"`
	CID               string `parquet:"cid"`
	AuthorDID         string `parquet:"author_did"`
	URI               string `parquet:"uri"`
}

// Flatten projects a result set into rows, newest first. user_handle is the
// identity the record was fetched under; for search results it equals the
// author handle.
func Flatten(rs *domain.ResultSet) []Row {
	var rows []Row
	for _, up := range rs.Keyed() {
		for _, rec := range up.Posts {
			rows = append(rows, newRow(up.Handle, rec))
		}
	}
	// RFC3339 UTC timestamps sort correctly as strings.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CreatedAt > rows[j].CreatedAt
	})
	return rows
}

func newRow(userHandle string, rec domain.Record) Row {
	return Row{
		UserHandle:        userHandle,
		AuthorHandle:      rec.Author.Handle,
		AuthorDisplayName: rec.Author.DisplayName,
		CreatedAt:         rec.CreatedAt,
		PostType:          string(rec.PostType),
		Text:              rec.Text,
		WebURL:            rec.WebURL,
		Likes:             int64(rec.Likes),
		Reposts:           int64(rec.Reposts),
		Replies:           int64(rec.Replies),
		URLs:              jsonArray(rec.URLs),
		Images:            jsonArray(rec.Images),
		Mentions:          jsonArray(rec.Mentions),
		Lang:              rec.Lang,
		CID:               rec.CID,
		AuthorDID:         rec.Author.DID,
		URI:               rec.URI,
	}
}

// jsonArray renders a string slice as a compact JSON array, never null.
func jsonArray(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// Write encodes the result set to path in the given format, creating parent
// directories as needed.
func Write(path, format string, rs *domain.ResultSet) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	switch format {
	case FormatJSON:
		err = WriteJSON(f, rs)
	case FormatCSV:
		err = WriteCSV(f, Flatten(rs))
	case FormatParquet:
		err = WriteParquet(f, Flatten(rs))
	default:
		err = fmt.Errorf("unsupported format: %s (available: json, csv, parquet)", format)
	}
	if err != nil {
		return err
	}
	return f.Close()
}

// OutputPath resolves the destination file. An explicit path wins (the
// format extension is appended if missing); otherwise a timestamped name is
// generated under dir.
func OutputPath(dir, base, format, explicit string) string {
	ext := "." + format
	if explicit != "" {
		if !strings.HasSuffix(explicit, ext) {
			explicit += ext
		}
		return explicit
	}
	name := fmt.Sprintf("%s_%s%s", base, time.Now().Format("20060102_150405"), ext)
	return filepath.Join(dir, name)
}
