package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// FakeVisionAnalysis is what the fake vision server always answers with.
const FakeVisionAnalysis = `{"summary":"A colour gradient.","ocrText":"","tags":[{"label":"gradient","confidence":0.93}],"safety":{"adult":false,"violence":false,"selfHarm":false}}`

// FakeVision is an OpenAI-compatible chat completions server.
type FakeVision struct {
	*httptest.Server
	Calls atomic.Int32
}

func StartFakeVision(t *testing.T) *FakeVision {
	t.Helper()
	fv := &FakeVision{}
	fv.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fv.Calls.Add(1)
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.Copy(io.Discard, r.Body)

		content, _ := json.Marshal(FakeVisionAnalysis)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"model":"fake-vision","choices":[{"message":{"role":"assistant","content":`+string(content)+`}}],"usage":{"prompt_tokens":900,"completion_tokens":120}}`)
	}))
	t.Cleanup(fv.Close)
	return fv
}

// BaseURL is what the vision client expects as OPENAI_BASE_URL.
func (fv *FakeVision) BaseURL() string {
	return fv.URL + "/v1"
}
