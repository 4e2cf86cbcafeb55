package assistant

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeBackboard records calls and answers like the remote assistant API.
type fakeBackboard struct {
	mu    sync.Mutex
	calls map[string]int

	assistantStatus int
	threadStatus    int
	messageStatus   int
	messageBody     string
	delay           time.Duration

	lastForm     map[string]string
	lastJSON     map[string]any
	lastFilename string
	lastFile     string
	lastAPIKey   string
	threadSeq    int
}

func newFakeBackboard(t *testing.T) (*fakeBackboard, *httptest.Server) {
	f := &fakeBackboard{calls: map[string]int{}, messageBody: `{"content":"hi there"}`}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeBackboard) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeBackboard) serve(w http.ResponseWriter, r *http.Request) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastAPIKey = r.Header.Get("X-API-Key")
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] == "assistants":
		f.calls["create-assistant"]++
		f.lastJSON = decodeJSON(r.Body)
		if f.assistantStatus != 0 {
			w.WriteHeader(f.assistantStatus)
			return
		}
		writeJSON(w, map[string]any{"assistant_id": "asst-1"})
	case len(parts) == 3 && parts[0] == "assistants" && parts[2] == "threads":
		f.calls["create-thread"]++
		if f.threadStatus != 0 {
			w.WriteHeader(f.threadStatus)
			return
		}
		f.threadSeq++
		writeJSON(w, map[string]any{"thread_id": "thread-" + parts[1] + "-" + string(rune('0'+f.threadSeq))})
	case len(parts) == 3 && parts[0] == "threads" && parts[2] == "messages":
		f.calls["post-message"]++
		_ = r.ParseForm()
		f.lastForm = map[string]string{}
		for k := range r.PostForm {
			f.lastForm[k] = r.PostForm.Get(k)
		}
		if f.messageStatus != 0 {
			w.WriteHeader(f.messageStatus)
			_, _ = io.WriteString(w, "upstream down")
			return
		}
		_, _ = io.WriteString(w, f.messageBody)
	case len(parts) == 3 && parts[2] == "documents":
		f.calls[parts[0]+"-document"]++
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			file, hdr, err := r.FormFile("file")
			if err == nil {
				b, _ := io.ReadAll(file)
				f.lastFilename = hdr.Filename
				f.lastFile = string(b)
			}
		} else {
			f.lastJSON = decodeJSON(r.Body)
		}
		writeJSON(w, map[string]any{"ok": true})
	case len(parts) == 3 && parts[2] == "memories":
		f.calls["assistant-memory"]++
		f.lastJSON = decodeJSON(r.Body)
		writeJSON(w, map[string]any{"ok": true})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func decodeJSON(r io.Reader) map[string]any {
	var m map[string]any
	_ = json.NewDecoder(r).Decode(&m)
	return m
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func testConfig(base string) Config {
	return Config{
		APIKey:          "test-key",
		BaseURL:         base,
		Name:            "Cultura RAG",
		SystemPrompt:    "only docs",
		ChatGuardPrompt: "guard",
		Timeout:         2 * time.Second,
	}
}
