// Package model 定义 projanalyzer 的核心数据模型。
// 这些结构会被收集器、净化器、流水线和输出层共同使用。
package model

import (
	"errors"
	"time"
)

// ErrEmptyContent 表示文件可读，但净化后没有剩余内容。
// 与读取失败区分开，便于在报告中分别展示。
var ErrEmptyContent = errors.New("file produced no content")

// FileResult 表示单文件读取 + 净化的结果。
//
// 约束：
// - Err 为 nil 且 Text 非空时视为成功
// - 读取失败时 Err 保存原始错误，Text 为空
type FileResult struct {
	Path string
	Text string
	Err  error
}

// Ok 判断该文件是否可以进入 AnalysisMapping。
func (r FileResult) Ok() bool {
	return r.Err == nil && r.Text != ""
}

// Entry 是 AnalysisMapping 中的一条记录。
type Entry struct {
	Path string `json:"path"`
	Text string `json:"text"`
}

// AnalysisMapping 是“路径 -> 净化文本”的有序映射。
// 迭代顺序固定为首次插入顺序，也就是收集器的枚举顺序，
// 以保证同样的输入得到同样的 prompt。
type AnalysisMapping struct {
	entries []Entry
	index   map[string]int
}

// NewAnalysisMapping 创建空映射。
func NewAnalysisMapping() *AnalysisMapping {
	return &AnalysisMapping{index: make(map[string]int)}
}

// Add 写入一条记录。空文本会被拒绝并返回 false。
// 同一路径重复写入时覆盖文本，但保留第一次出现的位置。
func (m *AnalysisMapping) Add(path string, text string) bool {
	if text == "" {
		return false
	}
	if position, ok := m.index[path]; ok {
		m.entries[position].Text = text
		return true
	}
	m.index[path] = len(m.entries)
	m.entries = append(m.entries, Entry{Path: path, Text: text})
	return true
}

// Get 按路径查询净化文本。
func (m *AnalysisMapping) Get(path string) (string, bool) {
	position, ok := m.index[path]
	if !ok {
		return "", false
	}
	return m.entries[position].Text, true
}

// Len 返回记录数。
func (m *AnalysisMapping) Len() int {
	return len(m.entries)
}

// Entries 按插入顺序返回全部记录的副本。
func (m *AnalysisMapping) Entries() []Entry {
	return append([]Entry(nil), m.entries...)
}

// MappingFromResults 从扇出结果构建映射，只保留成功项，顺序与输入一致。
func MappingFromResults(results []FileResult) *AnalysisMapping {
	mapping := NewAnalysisMapping()
	for _, item := range results {
		if item.Ok() {
			mapping.Add(item.Path, item.Text)
		}
	}
	return mapping
}

// FileStatus 是报告中单文件的展示行。
type FileStatus struct {
	Path   string `json:"path"`
	Bytes  int    `json:"bytes"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// 文件状态取值。
const (
	StatusKept   = "kept"
	StatusEmpty  = "empty"
	StatusFailed = "failed"
)

// StatusFromResult 把 FileResult 转换为报告行。
func StatusFromResult(result FileResult) FileStatus {
	status := FileStatus{Path: result.Path, Bytes: len(result.Text)}
	switch {
	case result.Ok():
		status.Status = StatusKept
	case result.Err == nil, errors.Is(result.Err, ErrEmptyContent):
		status.Status = StatusEmpty
	default:
		status.Status = StatusFailed
		status.Error = result.Err.Error()
	}
	return status
}

// RunReport 是一次完整运行的汇总信息。
// 仅在 LLM 调用与落盘都成功后生成。
type RunReport struct {
	RunID       string        `json:"run_id"`
	ProjectName string        `json:"project_name"`
	Provider    string        `json:"provider"`
	Model       string        `json:"model"`
	OutputDir   string        `json:"output_dir"`
	Collected   int           `json:"collected"`
	Kept        int           `json:"kept"`
	PromptBytes int           `json:"prompt_bytes"`
	Files       []FileStatus  `json:"files"`
	Elapsed     time.Duration `json:"elapsed"`
}
