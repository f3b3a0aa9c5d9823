package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"emoeval/internal/testutil"
)

const testDataset = `[
  {
    "character_information": "小明，十歲，活潑好動",
    "sentences": [
      {"emotion_label": "喜悅", "emotion_sentences": ["今天真好"]},
      {"emotion_label": "悲傷", "emotion_sentences": ["好難過"]}
    ]
  }
]`

const testConfig = `version: 1
output_dir: out
dataset: .emoeval/sentences.json
endpoint:
  kind: proxy
  url: %q
  timeout_seconds: 5
rate:
  delay_ms: 0
warehouse:
  path: out/warehouse.duckdb
tasks:
  - id: combined
    model: gpt-4.1
    accuracy_field: emotion
    calls:
      - id: combined
        function_name: emotion-intensity-analyze
        prompt: "請判斷句子的情緒與強度"
        fields: [emotion, intensity]
`

// fakeProxy answers every sentence with a fixed emotion.
func fakeProxy(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			UserPrompt string `json:"user_prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		answer := "情緒：悲傷\n強度：低"
		if strings.Contains(body.UserPrompt, "今天真好") {
			answer = "情緒：喜悅\n強度：高"
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"response": answer})
	}))
	t.Cleanup(server.Close)
	return server
}

// writeProject lays out a config, dataset and output dir under a temp root
// and returns the root and config path.
func writeProject(t *testing.T, proxyURL string) (string, string) {
	t.Helper()
	root := t.TempDir()
	specPath := filepath.Join(root, ".emoeval", "config.yml")
	testutil.WriteFile(t, specPath, fmt.Sprintf(testConfig, proxyURL))
	testutil.WriteFile(t, filepath.Join(root, ".emoeval", "sentences.json"), testDataset)
	return root, specPath
}
