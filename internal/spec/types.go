package spec

// Config is the on-disk harness configuration.
type Config struct {
	Version     int               `yaml:"version"`
	OutputDir   string            `yaml:"output_dir"`
	Dataset     string            `yaml:"dataset"`
	Endpoint    EndpointConfig    `yaml:"endpoint"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Rate        RateConfig        `yaml:"rate"`
	Report      ReportConfig      `yaml:"report"`
	Warehouse   WarehouseConfig   `yaml:"warehouse"`
	Fields      []FieldConfig     `yaml:"fields"`
	Tasks       []TaskConfig      `yaml:"tasks"`
}

type EndpointConfig struct {
	Kind           string  `yaml:"kind"`
	URL            string  `yaml:"url"`
	InstanceID     string  `yaml:"instance_id"`
	PlatformID     string  `yaml:"platform_id"`
	TimeoutSeconds float64 `yaml:"timeout_seconds"`
}

// CredentialsConfig names where the bearer token comes from. The token itself
// never appears in the config file.
type CredentialsConfig struct {
	TokenEnv string `yaml:"token_env"`
	DotEnv   string `yaml:"dotenv"`
}

type RateConfig struct {
	DelayMS      *int    `yaml:"delay_ms"`
	Workers      int     `yaml:"workers"`
	MaxPerSecond float64 `yaml:"max_per_second"`
}

type ReportConfig struct {
	TopK int `yaml:"top_k"`
}

type WarehouseConfig struct {
	Path string `yaml:"path"`
}

// FieldConfig defines a custom field or overrides a built-in one.
type FieldConfig struct {
	Name       string        `yaml:"name"`
	Kind       string        `yaml:"kind"`
	Labels     []string      `yaml:"labels"`
	Vocabulary []string      `yaml:"vocabulary"`
	Levels     []LevelConfig `yaml:"levels"`
	Precision  int           `yaml:"precision"`
	BinWidth   float64       `yaml:"bin_width"`
}

type LevelConfig struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

type TaskConfig struct {
	ID            string       `yaml:"id"`
	Model         string       `yaml:"model"`
	Temperature   *float64     `yaml:"temperature"`
	AccuracyField string       `yaml:"accuracy_field"`
	Calls         []CallConfig `yaml:"calls"`
}

// CallConfig is one inference call made per trial.
type CallConfig struct {
	ID           string   `yaml:"id"`
	FunctionName string   `yaml:"function_name"`
	Prompt       string   `yaml:"prompt"`
	PromptFile   string   `yaml:"prompt_file"`
	Fields       []string `yaml:"fields"`
}
