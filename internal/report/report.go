// Package report 负责分析结果的落盘与控制台展示。
// 落盘布局固定为 <output>/<name>_analysis/，展示支持 table 与 JSON 两种格式。
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"projanalyzer/internal/model"
)

// 默认输出命名。
const (
	DefaultFileSuffix  = ".json"
	DefaultSummaryFile = "project_summary.md"
	dirSuffix          = "_analysis"
)

// WriteOptions 描述输出目录与文件命名。
// Root 是条目路径的参照目录（目录模式下为收集根目录）；为空时取全部条目的公共父目录。
type WriteOptions struct {
	Output      string
	ProjectName string
	Root        string
	FileSuffix  string
	SummaryFile string
}

// OutputDir 返回 <output>/<name>_analysis。
func OutputDir(output string, projectName string) string {
	return filepath.Join(output, projectName+dirSuffix)
}

// EntryFileName 返回单文件结果的文件名：取 path 相对 root 的路径，分隔符替换为 "_"，再加后缀。
// 例如 root 为 src 时，src/pkg_a/__init__.py 对应 pkg_a___init__.py.json。
// path 不在 root 之下或 root 为空时，使用清理后的原路径（去掉卷名和开头的分隔符）。
func EntryFileName(path string, root string, suffix string) string {
	name := filepath.Clean(path)
	if root != "" {
		if rel, ok := relativeTo(root, path); ok {
			name = rel
		}
	}
	name = strings.TrimPrefix(name, filepath.VolumeName(name))
	name = strings.TrimLeft(name, string(filepath.Separator)+"/")
	name = strings.ReplaceAll(name, string(filepath.Separator), "_")
	name = strings.ReplaceAll(name, "/", "_")
	return name + suffix
}

// CommonDir 返回 paths 的最深公共父目录；无法确定时（如绝对与相对路径混用）返回空串。
func CommonDir(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	common := filepath.Dir(filepath.Clean(paths[0]))
	for _, path := range paths[1:] {
		dir := filepath.Dir(filepath.Clean(path))
		for {
			if _, ok := relativeTo(common, dir); ok {
				break
			}
			parent := filepath.Dir(common)
			if parent == common {
				return ""
			}
			common = parent
		}
	}
	return common
}

// relativeTo 返回 path 相对 root 的路径，path 不在 root 之下时 ok 为 false。
func relativeTo(root string, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

// WriteResults 创建输出目录并写入每个映射条目以及项目总结。
// 已存在的同名文件被静默覆盖；返回输出目录路径。
func WriteResults(mapping *model.AnalysisMapping, summary string, options WriteOptions) (string, error) {
	suffix := options.FileSuffix
	if suffix == "" {
		suffix = DefaultFileSuffix
	}
	summaryFile := options.SummaryFile
	if summaryFile == "" {
		summaryFile = DefaultSummaryFile
	}

	entries := mapping.Entries()
	root := strings.TrimSpace(options.Root)
	if root == "" {
		paths := make([]string, 0, len(entries))
		for _, entry := range entries {
			paths = append(paths, entry.Path)
		}
		root = CommonDir(paths)
	}

	directory := OutputDir(options.Output, options.ProjectName)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	for _, entry := range entries {
		target := filepath.Join(directory, EntryFileName(entry.Path, root, suffix))
		if err := os.WriteFile(target, []byte(entry.Text), 0o644); err != nil {
			return "", fmt.Errorf("write result for %s: %w", entry.Path, err)
		}
	}

	if err := os.WriteFile(filepath.Join(directory, summaryFile), []byte(summary), 0o644); err != nil {
		return "", fmt.Errorf("write project summary: %w", err)
	}
	return directory, nil
}

// PrintTable 使用表格展示一次运行的汇总。
func PrintTable(writer io.Writer, result model.RunReport) error {
	tw := tabwriter.NewWriter(writer, 0, 4, 2, ' ', 0)

	header := [][2]string{
		{"RUN ID", result.RunID},
		{"PROJECT", result.ProjectName},
		{"PROVIDER", result.Provider},
		{"MODEL", result.Model},
		{"OUTPUT", result.OutputDir},
	}
	for _, row := range header {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1]); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(tw, "\nFILE\tSTATUS\tBYTES\tERROR"); err != nil {
		return err
	}
	for _, item := range result.Files {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", item.Path, item.Status, item.Bytes, item.Error); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(
		tw,
		"\nCOLLECTED\t%d\nKEPT\t%d\nPROMPT BYTES\t%d\nELAPSED\t%s\n",
		result.Collected,
		result.Kept,
		result.PromptBytes,
		result.Elapsed.Round(time.Millisecond),
	); err != nil {
		return err
	}

	return tw.Flush()
}

// PrintJSON 把运行汇总按易读 JSON 输出到任意 writer。
func PrintJSON(writer io.Writer, result model.RunReport) error {
	content, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if _, err := writer.Write(append(content, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// Print 按 format 选择输出格式；未知格式返回错误。
func Print(writer io.Writer, format string, result model.RunReport) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "table":
		return PrintTable(writer, result)
	case "json":
		return PrintJSON(writer, result)
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}
