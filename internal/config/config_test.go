package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadDefaults 验证无配置文件时使用内置默认值。
func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "MyProject", cfg.Project.Name)
	assert.Equal(t, ".", cfg.Project.Output)
	assert.Equal(t, "Python", cfg.Source.Language)
	assert.Equal(t, []string{".py"}, cfg.Source.Extensions)
	assert.Equal(t, "#", cfg.Source.CommentMarker)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 5, cfg.LLM.Concurrency)
	assert.Equal(t, ".json", cfg.Output.FileSuffix)
	assert.Equal(t, "project_summary.md", cfg.Output.SummaryFile)
}

// TestLoadFileAndEnvOverride 验证配置文件与环境变量的覆盖顺序。
func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	content := "project:\n" +
		"  name: Demo\n" +
		"source:\n" +
		"  extensions: [rb]\n" +
		"  comment_marker: \"#\"\n" +
		"llm:\n" +
		"  provider: Claude\n" +
		"  timeout: 30s\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("PROJANALYZER_LLM_CONCURRENCY", "9")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "Demo", cfg.Project.Name)
	assert.Equal(t, []string{".rb"}, cfg.Source.Extensions)
	assert.Equal(t, "claude", cfg.LLM.Provider)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 9, cfg.LLM.Concurrency)
}

// TestLoadMissingExplicitFile 验证显式指定但不存在的配置文件会报错。
func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

// TestValidate 验证关键约束。
func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	broken := Default()
	broken.LLM.Concurrency = 0
	assert.EqualError(t, broken.Validate(), "concurrency must be greater than 0")

	broken = Default()
	broken.Source.ReadConcurrency = -1
	assert.EqualError(t, broken.Validate(), "read concurrency must be greater than 0")

	broken = Default()
	broken.Project.Name = ""
	assert.EqualError(t, broken.Validate(), "project name must not be empty")
}

// TestLoadEnvFile 验证 .env 注入且不覆盖已有变量。
func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PROJANALYZER_TEST_A=from-file\nPROJANALYZER_TEST_B=from-file\n"), 0o644))

	t.Setenv("PROJANALYZER_TEST_B", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("PROJANALYZER_TEST_A") })

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("PROJANALYZER_TEST_A"))
	assert.Equal(t, "from-env", os.Getenv("PROJANALYZER_TEST_B"))

	require.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}

// TestYAML 验证配置可以渲染为 YAML。
func TestYAML(t *testing.T) {
	content, err := Default().YAML()
	require.NoError(t, err)
	assert.Contains(t, string(content), "provider: openai")
	assert.Contains(t, string(content), "file_suffix: .json")
}

// TestLoadLanguageProfile 验证语言画像补齐后缀与注释标记，显式配置优先。
func TestLoadLanguageProfile(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("PROJANALYZER_SOURCE_LANGUAGE", "go")
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "Go", cfg.Source.Language)
	assert.Equal(t, []string{".go"}, cfg.Source.Extensions)
	assert.Equal(t, "//", cfg.Source.CommentMarker)

	t.Setenv("PROJANALYZER_SOURCE_COMMENT_MARKER", "#")
	cfg, err = Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "#", cfg.Source.CommentMarker)

	t.Setenv("PROJANALYZER_SOURCE_LANGUAGE", "Cobol")
	t.Setenv("PROJANALYZER_SOURCE_COMMENT_MARKER", "")
	_, err = Load(viper.New(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cobol")
}
