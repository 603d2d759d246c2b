package videoindexer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

func TestUpload(t *testing.T) {
	var gotName string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/Videos") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		gotName = r.URL.Query().Get("name")
		json.NewEncoder(w).Encode(map[string]string{"id": "remote-42"})
	}))
	defer ts.Close()

	tmp, err := os.CreateTemp("", "upload-*.mp4")
	if err != nil {
		t.Fatal(err)
	}
	tmp.WriteString("fake video bytes")
	tmp.Close()
	defer os.Remove(tmp.Name())

	c := NewClient(ts.URL, "acct", "token", time.Minute)
	id, err := c.Upload(context.Background(), tmp.Name(), "vid_demo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "remote-42" {
		t.Errorf("expected remote-42, got %s", id)
	}
	if gotName != "vid_demo" {
		t.Errorf("expected name=vid_demo, got %s", gotName)
	}
}

func TestUploadServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	tmp, err := os.CreateTemp("", "upload-*.mp4")
	if err != nil {
		t.Fatal(err)
	}
	tmp.Close()
	defer os.Remove(tmp.Name())

	c := NewClient(ts.URL, "acct", "token", time.Minute)
	if _, err := c.Upload(context.Background(), tmp.Name(), "vid"); err == nil {
		t.Error("expected error on 429")
	}
}

func TestWaitForProcessingProcessed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Insights{ID: "remote-42", State: "Processed", Name: "demo"})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "acct", "token", time.Minute)
	insights, err := c.WaitForProcessing(context.Background(), "remote-42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if insights.Name != "demo" {
		t.Errorf("unexpected insights: %+v", insights)
	}
}

func TestWaitForProcessingFailedState(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Insights{State: "Failed"})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "acct", "token", time.Minute)
	if _, err := c.WaitForProcessing(context.Background(), "remote-42"); err == nil {
		t.Error("expected error for Failed state")
	}
}

func TestWaitForProcessingTimesOut(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Insights{State: "Processing"})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "acct", "token", 100*time.Millisecond)
	_, err := c.WaitForProcessing(context.Background(), "remote-42")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDownloadRejectsBadURLs(t *testing.T) {
	c := NewClient("https://example.invalid", "acct", "token", time.Minute)

	cases := []string{
		"ftp://youtube.com/watch?v=abc",
		"https://vimeo.com/12345",
		"https://evilyoutu.be.example.com/x",
		"not a url at all\x7f",
	}
	for _, u := range cases {
		if _, err := c.Download(context.Background(), u); err == nil {
			t.Errorf("expected rejection for %q", u)
		}
	}
}

func TestValidateVideoURLAccepts(t *testing.T) {
	cases := []string{
		"https://youtu.be/dT7S75eYhcQ",
		"https://www.youtube.com/watch?v=dT7S75eYhcQ",
		"http://youtube.com/watch?v=abc",
	}
	for _, u := range cases {
		if err := validateVideoURL(u); err != nil {
			t.Errorf("expected %q to be accepted: %v", u, err)
		}
	}
}

func TestExtractData(t *testing.T) {
	c := NewClient("https://example.invalid", "acct", "token", time.Minute)
	insights := &Insights{
		Name:     "demo ad",
		Duration: 42.5,
		Videos: []Video{{
			Insights: VideoInsights{
				Language:   "en-US",
				Transcript: []TranscriptLine{{ID: 1, Text: "hello"}, {ID: 2, Text: "world"}},
				OCR:        []OCRLine{{ID: 1, Text: "SALE"}, {ID: 2, Text: ""}},
			},
		}},
	}

	ex := c.ExtractData(insights)

	if ex.Transcript != "hello world" {
		t.Errorf("transcript = %q", ex.Transcript)
	}
	if len(ex.OCRText) != 1 || ex.OCRText[0] != "SALE" {
		t.Errorf("ocr = %v", ex.OCRText)
	}
	if ex.VideoMetadata["name"] != "demo ad" {
		t.Errorf("metadata = %v", ex.VideoMetadata)
	}
	if ex.VideoMetadata["language"] != "en-US" {
		t.Errorf("language missing from metadata: %v", ex.VideoMetadata)
	}
}

func TestExtractDataEmptyInsights(t *testing.T) {
	c := NewClient("https://example.invalid", "acct", "token", time.Minute)
	ex := c.ExtractData(&Insights{State: "Processed"})

	if ex.Transcript != "" {
		t.Errorf("expected empty transcript, got %q", ex.Transcript)
	}
	if ex.OCRText == nil || len(ex.OCRText) != 0 {
		t.Errorf("expected empty ocr slice, got %v", ex.OCRText)
	}
}
