package domain

import (
	"reflect"
	"testing"
)

func TestNormalizeHandle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"alice.bsky.social", "alice.bsky.social"},
		{"@alice.bsky.social", "alice.bsky.social"},
		{"  @alice.bsky.social  ", "alice.bsky.social"},
		{`"alice.bsky.social"`, "alice.bsky.social"},
		{"", ""},
		{"@", ""},
	}
	for _, tt := range tests {
		if got := NormalizeHandle(tt.input); got != tt.want {
			t.Errorf("NormalizeHandle(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSanitizeURIComponent(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"3kxyz"`, "3kxyz"},
		{"'did:plc:abc'", "did:plc:abc"},
		{"a\x00b\x1fc", "abc"},
		{"  clean  ", "clean"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeURIComponent(tt.input); got != tt.want {
			t.Errorf("SanitizeURIComponent(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseListURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ListRef
	}{
		{
			name:  "browser URL",
			input: "https://bsky.app/profile/alice.bsky.social/lists/3kxyz",
			want:  ListRef{Owner: "alice.bsky.social", ID: "3kxyz"},
		},
		{
			name:  "at URI",
			input: "at://did:plc:abc123/app.bsky.graph.list/3kxyz",
			want:  ListRef{Owner: "did:plc:abc123", ID: "3kxyz"},
		},
		{
			name:  "bare DID form",
			input: "did:plc:abc123/app.bsky.graph.list/3kxyz",
			want:  ListRef{Owner: "did:plc:abc123", ID: "3kxyz"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseListURL(tt.input)
			if err != nil {
				t.Fatalf("ParseListURL(%q) returned error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseListURL(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}

	if _, err := ParseListURL("https://example.com/not-a-list"); err == nil {
		t.Error("expected error for unrecognized list URL")
	}
}

func TestWebURL(t *testing.T) {
	got := WebURL("at://did:plc:abc/app.bsky.feed.post/3l3qo2vuowo2b", "alice.bsky.social")
	want := "https://bsky.app/profile/alice.bsky.social/post/3l3qo2vuowo2b"
	if got != want {
		t.Errorf("WebURL = %q, want %q", got, want)
	}
}

func TestExtractURLs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "single URL",
			input: "check this out https://example.com/post?id=1",
			want:  []string{"https://example.com/post?id=1"},
		},
		{
			name:  "multiple URLs",
			input: "http://a.com and https://b.org/path",
			want:  []string{"http://a.com", "https://b.org/path"},
		},
		{
			name:  "no URLs",
			input: "just plain text",
			want:  nil,
		},
		{
			name:  "empty text",
			input: "",
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractURLs(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractURLs(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
