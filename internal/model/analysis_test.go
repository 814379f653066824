package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMappingRejectsEmptyText 验证空文本不会进入映射。
func TestMappingRejectsEmptyText(t *testing.T) {
	mapping := NewAnalysisMapping()

	assert.False(t, mapping.Add("a.py", ""))
	assert.True(t, mapping.Add("b.py", "print(2)"))
	assert.Equal(t, 1, mapping.Len())

	_, ok := mapping.Get("a.py")
	assert.False(t, ok)
}

// TestMappingKeepsFirstPosition 验证重复路径覆盖文本但保持原有顺序。
func TestMappingKeepsFirstPosition(t *testing.T) {
	mapping := NewAnalysisMapping()
	mapping.Add("a.py", "one")
	mapping.Add("b.py", "two")
	mapping.Add("a.py", "three")

	entries := mapping.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Path: "a.py", Text: "three"}, entries[0])
	assert.Equal(t, Entry{Path: "b.py", Text: "two"}, entries[1])
}

// TestMappingFromResultsFiltersFailures 验证失败与空内容被过滤，且保持输入顺序。
func TestMappingFromResultsFiltersFailures(t *testing.T) {
	results := []FileResult{
		{Path: "z.py", Text: "z = 1"},
		{Path: "missing.py", Err: errors.New("open missing.py: no such file")},
		{Path: "empty.py", Err: ErrEmptyContent},
		{Path: "a.py", Text: "a = 1"},
	}

	mapping := MappingFromResults(results)

	entries := mapping.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "z.py", entries[0].Path)
	assert.Equal(t, "a.py", entries[1].Path)
}

// TestStatusFromResult 验证报告行的状态分类。
func TestStatusFromResult(t *testing.T) {
	assert.Equal(t, StatusKept, StatusFromResult(FileResult{Path: "a", Text: "x"}).Status)
	assert.Equal(t, StatusEmpty, StatusFromResult(FileResult{Path: "a", Err: ErrEmptyContent}).Status)

	failed := StatusFromResult(FileResult{Path: "a", Err: errors.New("boom")})
	assert.Equal(t, StatusFailed, failed.Status)
	assert.Equal(t, "boom", failed.Error)
}
