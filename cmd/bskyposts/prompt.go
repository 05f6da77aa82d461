package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/blackmichael/bluesky-posts/internal/domain"
)

// promptQuery interactively asks for a target when none was given on the
// command line. It only gathers input; the query it hands back is as
// fully-specified as one built from flags.
func promptQuery(in io.Reader, out io.Writer, limit int) (domain.Query, string, error) {
	r := bufio.NewReader(in)

	fmt.Fprintln(out, "No target given. Choose one:")
	fmt.Fprintln(out, "  1) posts from a single user")
	fmt.Fprintln(out, "  2) posts from a Bluesky list URL")
	fmt.Fprintln(out, "  3) search for posts")
	fmt.Fprint(out, "> ")

	choice, err := readLine(r)
	if err != nil {
		return domain.Query{}, "", err
	}

	switch choice {
	case "1":
		fmt.Fprint(out, "Handle: ")
		handle, err := readLine(r)
		if err != nil {
			return domain.Query{}, "", err
		}
		q, err := domain.NewUserTimelineQuery(handle, limit)
		return q, "bluesky_posts_" + domain.NormalizeHandle(handle), err

	case "2":
		fmt.Fprint(out, "List URL: ")
		listURL, err := readLine(r)
		if err != nil {
			return domain.Query{}, "", err
		}
		q, err := domain.NewListQuery(listURL, limit)
		base := "bluesky_list"
		if ref, perr := domain.ParseListURL(listURL); perr == nil {
			base += "_" + ref.ID
		}
		return q, base, err

	case "3":
		fmt.Fprint(out, "Search query: ")
		text, err := readLine(r)
		if err != nil {
			return domain.Query{}, "", err
		}
		q, err := domain.NewSearchQuery(text, limit, domain.SearchFilters{})
		return q, "bluesky_search_" + strings.ReplaceAll(text, " ", "_"), err

	default:
		return domain.Query{}, "", fmt.Errorf("invalid choice: %q", choice)
	}
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
