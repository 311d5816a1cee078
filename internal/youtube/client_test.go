package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tqerrors "github.com/tessro/tubeq/internal/errors"
	"github.com/tessro/tubeq/internal/retry"
)

func fastRetry() retry.Config {
	return retry.Config{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		Multiplier:     2,
	}
}

func pngBytes(w, h int) []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)))
	return buf.Bytes()
}

// fakeYouTube serves oEmbed, thumbnails, watch and playlist pages.
type fakeYouTube struct {
	titles      map[string]string
	vertical    map[string]bool
	playlist    string
	oembedCalls atomic.Int32
}

func (f *fakeYouTube) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/embed", func(w http.ResponseWriter, r *http.Request) {
		f.oembedCalls.Add(1)
		u := r.URL.Query().Get("url")
		id := u[strings.LastIndex(u, "=")+1:]
		title, ok := f.titles[id]
		if !ok {
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "404 Not Found"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"title":       title,
			"author_name": "Artist " + id,
		})
	})
	mux.HandleFunc("/vi/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.Split(strings.TrimPrefix(r.URL.Path, "/vi/"), "/")[0]
		if f.vertical[id] {
			_, _ = w.Write(pngBytes(9, 16))
			return
		}
		_, _ = w.Write(pngBytes(16, 9))
	})
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><script>{"publishDate":"2024-03-05T10:00:00-08:00"}</script></html>`)
	})
	mux.HandleFunc("/playlist", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, f.playlist)
	})
	mux.HandleFunc("/proxy", func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Query().Get("url"), "list=") {
			http.Error(w, "bad target", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"contents": f.playlist})
	})
	return mux
}

func newFakeClient(t *testing.T, f *fakeYouTube, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	base := []Option{
		WithOEmbedURL(srv.URL + "/embed"),
		WithBaseURLs(srv.URL+"/watch", srv.URL+"/playlist", srv.URL+"/vi"),
		WithRetry(fastRetry()),
	}
	return New(append(base, opts...)...), srv
}

func TestVideo(t *testing.T) {
	f := &fakeYouTube{
		titles: map[string]string{
			"aaaaaaaaaaa": "Normal Song",
			"bbbbbbbbbbb": "Dance #Shorts",
			"ccccccccccc": "Tall Clip",
			"ddddddddddd": "",
		},
		vertical: map[string]bool{"ccccccccccc": true},
	}
	c, _ := newFakeClient(t, f)

	tests := []struct {
		id        string
		wantTitle string
		wantShort bool
	}{
		{"aaaaaaaaaaa", "Normal Song", false},
		{"bbbbbbbbbbb", "Dance #Shorts", true},
		{"ccccccccccc", "Tall Clip", true},
		{"ddddddddddd", UnknownTitle, false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			info, err := c.Video(context.Background(), tt.id)
			if err != nil {
				t.Fatalf("Video() error = %v", err)
			}
			if info.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", info.Title, tt.wantTitle)
			}
			if info.Author != "Artist "+tt.id {
				t.Errorf("Author = %q, want %q", info.Author, "Artist "+tt.id)
			}
			if info.Short != tt.wantShort {
				t.Errorf("Short = %v, want %v", info.Short, tt.wantShort)
			}
			if info.PublishedAt != nil {
				t.Error("PublishedAt should be nil when disabled")
			}
		})
	}
}

func TestVideo_NotFound(t *testing.T) {
	c, _ := newFakeClient(t, &fakeYouTube{})
	_, err := c.Video(context.Background(), "zzzzzzzzzzz")
	if !errors.Is(err, tqerrors.ErrNotFound) {
		t.Errorf("Video() error = %v, want ErrNotFound", err)
	}
}

func TestVideo_PublishedAt(t *testing.T) {
	f := &fakeYouTube{titles: map[string]string{"aaaaaaaaaaa": "Song"}}
	c, _ := newFakeClient(t, f, WithPublishedAt(true))

	info, err := c.Video(context.Background(), "aaaaaaaaaaa")
	if err != nil {
		t.Fatalf("Video() error = %v", err)
	}
	if info.PublishedAt == nil {
		t.Fatal("PublishedAt = nil, want a date")
	}
	want := time.Date(2024, 3, 5, 18, 0, 0, 0, time.UTC)
	if !info.PublishedAt.Equal(want) {
		t.Errorf("PublishedAt = %v, want %v", info.PublishedAt, want)
	}
}

func TestGet_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	c := New(WithRetry(fastRetry()))
	body, err := c.get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("get() error = %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("body = %q, want %q", body, "ok")
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestGet_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(WithRetry(fastRetry()))
	_, err := c.get(context.Background(), srv.URL)
	if !errors.Is(err, tqerrors.ErrNotFound) {
		t.Errorf("get() error = %v, want ErrNotFound", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Status != http.StatusNotFound {
		t.Errorf("get() error = %v, want StatusError 404", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestGet_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c := New(WithRetry(retry.Config{}))
	_, err := c.get(context.Background(), addr)
	if !errors.Is(err, tqerrors.ErrNetworkError) {
		t.Errorf("get() error = %v, want ErrNetworkError", err)
	}
}

func playlistPage(entries ...[3]string) string {
	type run struct {
		Text string `json:"text"`
	}
	var contents []map[string]any
	for _, e := range entries {
		contents = append(contents, map[string]any{
			"playlistVideoRenderer": map[string]any{
				"videoId":         e[0],
				"title":           map[string]any{"runs": []run{{e[1]}}},
				"shortBylineText": map[string]any{"runs": []run{{e[2]}}},
			},
		})
	}
	contents = append(contents, map[string]any{"continuationItemRenderer": map[string]any{}})

	data := map[string]any{
		"contents": map[string]any{
			"twoColumnBrowseResultsRenderer": map[string]any{
				"tabs": []any{map[string]any{
					"tabRenderer": map[string]any{
						"content": map[string]any{
							"sectionListRenderer": map[string]any{
								"contents": []any{map[string]any{
									"itemSectionRenderer": map[string]any{
										"contents": []any{map[string]any{
											"playlistVideoListRenderer": map[string]any{
												"contents": contents,
											},
										}},
									},
								}},
							},
						},
					},
				}},
			},
		},
	}
	raw, _ := json.Marshal(data)
	return `<html><script>var ytInitialData = ` + string(raw) + `;</script><script>var other = {};</script></html>`
}

func TestPlaylist(t *testing.T) {
	f := &fakeYouTube{
		playlist: playlistPage(
			[3]string{"aaaaaaaaaaa", "First", "Band A"},
			[3]string{"bbbbbbbbbbb", "Clip #shorts", "Band B"},
			[3]string{"ccccccccccc", "Tall", "Band C"},
			[3]string{"ddddddddddd", "Fourth", "Band D"},
		),
		vertical: map[string]bool{"ccccccccccc": true},
	}
	c, _ := newFakeClient(t, f, WithConcurrency(2))

	res, err := c.Playlist(context.Background(), "PLtest")
	if err != nil {
		t.Fatalf("Playlist() error = %v", err)
	}
	if res.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", res.Skipped)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(res.Entries))
	}
	if res.Entries[0].ID != "aaaaaaaaaaa" || res.Entries[1].ID != "ddddddddddd" {
		t.Errorf("Entries = %+v, want aaaaaaaaaaa then ddddddddddd", res.Entries)
	}
	if res.Entries[1].Title != "Fourth" || res.Entries[1].Author != "Band D" {
		t.Errorf("Entries[1] = %+v, want Fourth by Band D", res.Entries[1])
	}
	if f.oembedCalls.Load() != 0 {
		t.Errorf("oembed calls = %d, want 0", f.oembedCalls.Load())
	}
}

func TestPlaylist_ViaProxy(t *testing.T) {
	f := &fakeYouTube{playlist: playlistPage([3]string{"aaaaaaaaaaa", "Only", "Band"})}
	_, srv := newFakeClient(t, f)
	c := New(
		WithOEmbedURL(srv.URL+"/embed"),
		WithBaseURLs(srv.URL+"/watch", srv.URL+"/playlist", srv.URL+"/vi"),
		WithProxyURL(srv.URL+"/proxy"),
		WithRetry(fastRetry()),
	)

	res, err := c.Playlist(context.Background(), "PLtest")
	if err != nil {
		t.Fatalf("Playlist() error = %v", err)
	}
	if len(res.Entries) != 1 || res.Entries[0].Title != "Only" {
		t.Errorf("Entries = %+v, want one entry titled Only", res.Entries)
	}
}

func TestPlaylist_NoInitialData(t *testing.T) {
	c, _ := newFakeClient(t, &fakeYouTube{playlist: "<html></html>"})
	_, err := c.Playlist(context.Background(), "PLtest")
	if !errors.Is(err, tqerrors.ErrNotFound) {
		t.Errorf("Playlist() error = %v, want ErrNotFound", err)
	}
}

func TestTextRuns(t *testing.T) {
	var tr textRuns
	if err := json.Unmarshal([]byte(`{"simpleText":"plain"}`), &tr); err != nil {
		t.Fatal(err)
	}
	if tr.String() != "plain" {
		t.Errorf("String() = %q, want %q", tr.String(), "plain")
	}
}
