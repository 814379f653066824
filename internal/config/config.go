// Package config 负责加载 projanalyzer 的运行配置。
//
// 加载优先级（从低到高）：内置默认值 -> YAML 配置文件 -> PROJANALYZER_* 环境变量 -> 命令行参数。
// 配置只在启动时构建一次，再以值的形式传给各组件，不存在全局配置变量。
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"projanalyzer/internal/languages"
)

// EnvPrefix 是配置环境变量前缀，例如 PROJANALYZER_LLM_PROVIDER。
const EnvPrefix = "PROJANALYZER"

// DefaultConfigFile 是未显式指定 --config 时在当前目录查找的文件名。
const DefaultConfigFile = "projanalyzer.yaml"

// ProjectConfig 描述被分析项目与输出位置。
type ProjectConfig struct {
	Name   string `mapstructure:"name" yaml:"name"`
	Output string `mapstructure:"output" yaml:"output"`
}

// SourceConfig 描述源码语言画像与文件过滤规则。
type SourceConfig struct {
	Language        string   `mapstructure:"language" yaml:"language"`
	Extensions      []string `mapstructure:"extensions" yaml:"extensions"`
	Include         []string `mapstructure:"include" yaml:"include"`
	Exclude         []string `mapstructure:"exclude" yaml:"exclude"`
	IgnoreDirs      []string `mapstructure:"ignore_dirs" yaml:"ignore_dirs"`
	CommentMarker   string   `mapstructure:"comment_marker" yaml:"comment_marker"`
	StripMode       string   `mapstructure:"strip_mode" yaml:"strip_mode"`
	ReadConcurrency int      `mapstructure:"read_concurrency" yaml:"read_concurrency"`
}

// LLMConfig 描述 LLM 后端。
// 凭据不写在这里，由各 provider 从环境变量读取。
type LLMConfig struct {
	Provider         string        `mapstructure:"provider" yaml:"provider"`
	Model            string        `mapstructure:"model" yaml:"model"`
	Concurrency      int           `mapstructure:"concurrency" yaml:"concurrency"`
	Timeout          time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxTokens        int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	OpenAIBaseURL    string        `mapstructure:"openai_base_url" yaml:"openai_base_url"`
	AnthropicBaseURL string        `mapstructure:"anthropic_base_url" yaml:"anthropic_base_url"`
	OllamaHost       string        `mapstructure:"ollama_host" yaml:"ollama_host"`
}

// OutputConfig 描述结果文件命名。
type OutputConfig struct {
	FileSuffix  string `mapstructure:"file_suffix" yaml:"file_suffix"`
	SummaryFile string `mapstructure:"summary_file" yaml:"summary_file"`
}

// LoggingConfig 描述日志输出。
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// Config 是顶层配置。
type Config struct {
	Project         ProjectConfig `mapstructure:"project" yaml:"project"`
	Source          SourceConfig  `mapstructure:"source" yaml:"source"`
	LLM             LLMConfig     `mapstructure:"llm" yaml:"llm"`
	Output          OutputConfig  `mapstructure:"output" yaml:"output"`
	Logging         LoggingConfig `mapstructure:"logging" yaml:"logging"`
	ExitZeroOnError bool          `mapstructure:"exit_zero_on_error" yaml:"exit_zero_on_error"`
	EnvFile         string        `mapstructure:"env_file" yaml:"env_file"`
}

// Default 返回内置默认配置，后缀与注释标记取自默认语言画像。
func Default() Config {
	cfg := Config{
		Project: ProjectConfig{
			Name:   "MyProject",
			Output: ".",
		},
		Source: SourceConfig{
			Language:        "Python",
			Extensions:      []string{},
			Include:         []string{},
			Exclude:         []string{},
			IgnoreDirs:      []string{},
			CommentMarker:   "",
			StripMode:       "regex",
			ReadConcurrency: 16,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Concurrency: 5,
			Timeout:     5 * time.Minute,
			MaxTokens:   4096,
		},
		Output: OutputConfig{
			FileSuffix:  ".json",
			SummaryFile: "project_summary.md",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		EnvFile: ".env",
	}
	cfg.applyLanguageProfile()
	return cfg
}

// SetDefaults 把 Default() 写入 viper，保证每个键都有值，
// 这样环境变量与配置文件都能按键覆盖。
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("project.name", d.Project.Name)
	v.SetDefault("project.output", d.Project.Output)

	v.SetDefault("source.language", d.Source.Language)
	// 后缀与注释标记默认留空，由 source.language 对应的画像补齐。
	v.SetDefault("source.extensions", []string{})
	v.SetDefault("source.include", d.Source.Include)
	v.SetDefault("source.exclude", d.Source.Exclude)
	v.SetDefault("source.ignore_dirs", d.Source.IgnoreDirs)
	v.SetDefault("source.comment_marker", "")
	v.SetDefault("source.strip_mode", d.Source.StripMode)
	v.SetDefault("source.read_concurrency", d.Source.ReadConcurrency)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.concurrency", d.LLM.Concurrency)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	v.SetDefault("llm.openai_base_url", d.LLM.OpenAIBaseURL)
	v.SetDefault("llm.anthropic_base_url", d.LLM.AnthropicBaseURL)
	v.SetDefault("llm.ollama_host", d.LLM.OllamaHost)

	v.SetDefault("output.file_suffix", d.Output.FileSuffix)
	v.SetDefault("output.summary_file", d.Output.SummaryFile)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)

	v.SetDefault("exit_zero_on_error", d.ExitZeroOnError)
	v.SetDefault("env_file", d.EnvFile)
}

// Load 从 viper 读取配置。
// path 为空时尝试当前目录下的 projanalyzer.yaml，文件不存在不算错误；
// 显式指定的 path 不存在则返回错误。
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultConfigFile
	}
	if _, statErr := os.Stat(path); statErr == nil || explicit {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadEnvFile 把 .env 中的凭据注入进程环境，已存在的环境变量不会被覆盖。
// 文件不存在时静默跳过。
func LoadEnvFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// normalize 清理用户输入中的空白并补齐扩展名的点号。
func (c *Config) normalize() {
	c.Project.Name = strings.TrimSpace(c.Project.Name)
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	c.Source.StripMode = strings.ToLower(strings.TrimSpace(c.Source.StripMode))

	extensions := make([]string, 0, len(c.Source.Extensions))
	for _, ext := range c.Source.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions = append(extensions, ext)
	}
	c.Source.Extensions = extensions
	c.Source.CommentMarker = strings.TrimSpace(c.Source.CommentMarker)
	c.applyLanguageProfile()
}

// applyLanguageProfile 用内置语言画像补齐未显式配置的后缀与注释标记。
// 未知语言保持原样，由 Validate 报告缺失项。
func (c *Config) applyLanguageProfile() {
	profile, ok := languages.NewRegistry().Lookup(c.Source.Language)
	if !ok {
		return
	}
	c.Source.Language = profile.Name
	if len(c.Source.Extensions) == 0 {
		c.Source.Extensions = profile.Extensions
	}
	if c.Source.CommentMarker == "" {
		c.Source.CommentMarker = profile.CommentMarker
	}
}

// Validate 检查配置中不依赖外部系统的约束。
// provider 名称的合法性由 llm 包在构造时校验。
func (c Config) Validate() error {
	if c.Project.Name == "" {
		return errors.New("project name must not be empty")
	}
	if len(c.Source.Extensions) == 0 {
		return fmt.Errorf("at least one source extension is required for language %q", c.Source.Language)
	}
	if c.Source.CommentMarker == "" {
		return fmt.Errorf("comment marker must not be empty for language %q", c.Source.Language)
	}
	if c.Source.ReadConcurrency <= 0 {
		return errors.New("read concurrency must be greater than 0")
	}
	if c.LLM.Concurrency <= 0 {
		return errors.New("concurrency must be greater than 0")
	}
	if c.LLM.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	if c.Output.SummaryFile == "" {
		return errors.New("summary file name must not be empty")
	}
	return nil
}

// YAML 把配置渲染为 YAML，供 config 子命令展示。
func (c Config) YAML() ([]byte, error) {
	content, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return content, nil
}
