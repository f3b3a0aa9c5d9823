package config

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
)

const scaffoldConfig = `version: 1
output_dir: %[1]s
dataset: %[2]s/sentences.json

endpoint:
  kind: proxy
  url: "http://127.0.0.1:8010/invoke"
  instance_id: "111"
  platform_id: "456"
  timeout_seconds: 30

credentials:
  token_env: VITE_AUTH_TOKEN
  dotenv: .env

rate:
  delay_ms: 1000
  workers: 1

report:
  top_k: 10

tasks:
  - id: emotion-intensity
    model: gpt-4.1
    temperature: 0.6
    calls:
      - id: combined
        function_name: emotion-intensity-analyze
        prompt_file: %[2]s/prompts/combined.txt
        fields: [emotion, intensity]

  - id: emotion-tension
    model: gemini-2.5-flash
    temperature: 0.2
    calls:
      - id: emotion
        function_name: emotion-analyze
        prompt_file: %[2]s/prompts/emotion.txt
        fields: [emotion]
      - id: tension
        function_name: tension-analyze
        prompt_file: %[2]s/prompts/tension.txt
        fields: [tension_metrics]
`

const combinedPrompt = `你是一位情緒分析專家。請閱讀角色資訊與句子，判斷句子表達的主要情緒以及強度。
情緒只能從以下八種選擇：憤怒、期待、厭惡、恐懼、喜悅、悲傷、驚奇、信任。
強度只能是 Low、Medium、High 其中之一。
請嚴格依照以下格式回答，不要加入其他文字：
情緒：<情緒>
強度：<強度>
`

const emotionPrompt = `你是一位情緒分析專家。請判斷句子表達的主要情緒。
情緒只能從以下八種選擇：憤怒、期待、厭惡、恐懼、喜悅、悲傷、驚奇、信任。
請只回答一行：
情緒：<情緒>
`

const tensionPrompt = `請分析句子的情緒張力。計算：
Modifier：修飾語數量
Idiom：成語數量
DegreeHead：程度副詞數量
WordCount：總詞數
Tension：(Modifier + Idiom + 2 × DegreeHead) / WordCount
請依照上述五行格式回答，數值只寫數字。
`

const sampleDataset = `[
  {
    "character_information": "小明，十七歲高中生，個性開朗但容易緊張。",
    "sentences": [
      {"emotion_label": "喜悅", "emotion_sentences": ["今天終於拿到錄取通知了，我開心得跳起來！"]},
      {"emotion_label": "恐懼", "emotion_sentences": ["走廊的燈突然全熄了，我的心臟快要跳出來。"]},
      {"emotion_label": "期待", "emotion_sentences": ["明天就是畢業旅行，我已經把行李收好三次了。"]}
    ]
  }
]
`

// ScaffoldFiles lists the files Scaffold writes, relative to the config dir.
var ScaffoldFiles = []string{
	"prompts/combined.txt",
	"prompts/emotion.txt",
	"prompts/tension.txt",
	"sentences.json",
}

// Scaffold writes a starter config, prompt files and a sample dataset next
// to configPath. Existing files are never overwritten.
func Scaffold(configPath, outputDir string) error {
	if configPath == "" {
		return fmt.Errorf("config path is required")
	}
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}
	configDir := filepath.Dir(configPath)
	rel, err := filepath.Rel(RootFromConfigPath(configPath), configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	relDir := path.Clean(filepath.ToSlash(rel))

	files := map[string]string{
		configPath: fmt.Sprintf(scaffoldConfig, strconv.Quote(outputDir), relDir),
		filepath.Join(configDir, "prompts", "combined.txt"): combinedPrompt,
		filepath.Join(configDir, "prompts", "emotion.txt"):  emotionPrompt,
		filepath.Join(configDir, "prompts", "tension.txt"):  tensionPrompt,
		filepath.Join(configDir, "sentences.json"):          sampleDataset,
	}
	for target := range files {
		if info, err := os.Stat(target); err == nil {
			if info.IsDir() {
				return fmt.Errorf("path %q is a directory", target)
			}
			return fmt.Errorf("file already exists at %q", target)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("stat %q: %w", target, err)
		}
	}
	if err := os.MkdirAll(filepath.Join(configDir, "prompts"), 0o755); err != nil {
		return fmt.Errorf("create prompts dir: %w", err)
	}
	for target, body := range files {
		if err := os.WriteFile(target, []byte(body), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", filepath.Base(target), err)
		}
	}
	return nil
}
