package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/memefeed/internal/models"
)

func sampleRecommendations() *models.RecommendResponse {
	return &models.RecommendResponse{
		Recommendations: []models.Recommendation{
			{Index: 2, Path: "memes/c.png", Score: 0.9487},
			{Index: 0, Path: "memes/a.png", Score: 0.8944},
		},
		Count: 2,
	}
}

func TestWriteRecommendations_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRecommendations(&buf, sampleRecommendations(), OutputJSON); err != nil {
		t.Fatalf("WriteRecommendations(json): %v", err)
	}
	var decoded models.RecommendResponse
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded.Count != 2 || decoded.Recommendations[0].Index != 2 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestWriteRecommendations_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRecommendations(&buf, sampleRecommendations(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %q", out)
	}
	if !strings.HasPrefix(lines[1], "1 ") || !strings.Contains(lines[1], "memes/c.png") || !strings.Contains(lines[1], "0.9487") {
		t.Errorf("first row = %q", lines[1])
	}

	buf.Reset()
	_ = WriteRecommendations(&buf, &models.RecommendResponse{}, OutputText)
	if !strings.Contains(buf.String(), "No recommendations") {
		t.Errorf("empty output = %q", buf.String())
	}
}

func TestWriteRecommendations_TruncatesLongPaths(t *testing.T) {
	long := strings.Repeat("d/", 50) + "meme.png"
	resp := &models.RecommendResponse{Recommendations: []models.Recommendation{{Index: 0, Path: long}}, Count: 1}
	var buf bytes.Buffer
	_ = WriteRecommendations(&buf, resp, OutputText)
	if !strings.Contains(buf.String(), "...") || !strings.Contains(buf.String(), "meme.png") {
		t.Errorf("long path not left-truncated: %q", buf.String())
	}
}

func TestWriteStatus(t *testing.T) {
	disk := int64(2048)
	st := &models.Status{ItemCount: 3, Dimension: 2, LikedCount: 1, SkippedCount: 1, FeedbackCount: 2, DataSource: "csv", DiskUsageBytes: &disk}

	var buf bytes.Buffer
	if err := WriteStatus(&buf, st, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Items:      3", "2 (1 liked, 1 skipped)", "Source:     csv", "disabled", "2.0 KiB"} {
		if !strings.Contains(out, want) {
			t.Errorf("status text missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := WriteStatus(&buf, st, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded models.Status
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.ItemCount != 3 || decoded.DiskUsageBytes == nil || *decoded.DiskUsageBytes != 2048 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestWriteFeedbackResult(t *testing.T) {
	var buf bytes.Buffer
	res := &models.FeedbackResult{ID: "x", Action: "like", Index: 4, AcceptedCount: 3, LikedCount: 2}
	if err := WriteFeedbackResult(&buf, res, OutputText); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "Recorded like for item 4 (2 liked, 3 total)\n" {
		t.Errorf("got %q", got)
	}
}

func TestWriteSearchResults(t *testing.T) {
	var buf bytes.Buffer
	resp := &models.SearchResponse{Query: "cat", Hits: []models.SearchHit{{Index: 1, Path: "memes/grumpy_cat.png", Score: 1.2}}, Total: 1}
	if err := WriteSearchResults(&buf, resp, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `Found 1 items for "cat"`) || !strings.Contains(buf.String(), "grumpy_cat.png") {
		t.Errorf("got %q", buf.String())
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"JSON", OutputJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
