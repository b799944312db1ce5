package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "alpdeck" {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	client := NewClient(5 * time.Second)
	body, err := client.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if string(body) != "payload" {
		t.Errorf("body = %q", body)
	}
}

func TestGet_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too busy", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(5 * time.Second)
	if _, err := client.Get(context.Background(), srv.URL); err == nil {
		t.Error("Get should fail on non-200 status")
	}
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"elements": [{"id": 42}]}`))
	}))
	defer srv.Close()

	var out struct {
		Elements []struct {
			ID int64 `json:"id"`
		} `json:"elements"`
	}

	client := NewClient(5 * time.Second)
	if err := client.GetJSON(context.Background(), srv.URL, &out); err != nil {
		t.Fatalf("GetJSON error: %v", err)
	}
	if len(out.Elements) != 1 || out.Elements[0].ID != 42 {
		t.Errorf("decoded = %+v", out)
	}
}

func TestPostForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if r.PostForm.Get("data") != "[out:json];" {
			t.Errorf("data = %q", r.PostForm.Get("data"))
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := NewClient(5 * time.Second)
	body, err := client.PostForm(context.Background(), srv.URL, url.Values{"data": {"[out:json];"}})
	if err != nil {
		t.Fatalf("PostForm error: %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("body = %q", body)
	}
}

func TestDownloadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tile-bytes"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "dem", "N47E011.hgt.gz")
	client := NewClient(5 * time.Second)
	if err := client.DownloadFile(context.Background(), srv.URL, dest); err != nil {
		t.Fatalf("DownloadFile error: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(data) != "tile-bytes" {
		t.Errorf("content = %q", data)
	}

	// No .part leftovers on success.
	if _, err := os.Stat(dest + ".part"); !os.IsNotExist(err) {
		t.Error("temporary file should be renamed away")
	}
}

func TestDownloadFile_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "missing.hgt.gz")
	client := NewClient(5 * time.Second)
	err := client.DownloadFile(context.Background(), srv.URL, dest)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
