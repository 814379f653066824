package sanitizer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projanalyzer/internal/model"
)

// allSanitizers 返回两种实现，便于对共同行为做表驱动测试。
func allSanitizers() []Sanitizer {
	return []Sanitizer{NewRegexSanitizer("#"), NewLexSanitizer("#")}
}

// TestTrailingComment 验证行尾注释被删除、代码保留。
func TestTrailingComment(t *testing.T) {
	for _, s := range allSanitizers() {
		t.Run(s.Name(), func(t *testing.T) {
			assert.Equal(t, "print(1)  ", s.Sanitize("print(1)  # note"))
			assert.Equal(t, "print(1)  \n", s.Sanitize("print(1)  # note\n"))
		})
	}
}

// TestLeadingCommentBlock 验证文件开头的注释块整体删除。
func TestLeadingCommentBlock(t *testing.T) {
	for _, s := range allSanitizers() {
		t.Run(s.Name(), func(t *testing.T) {
			assert.Equal(t, "print(2)", s.Sanitize("# header\nprint(2)"))
			assert.Equal(t, "print(2)\n", s.Sanitize("#!/usr/bin/env python\n# license\n\n# more\nprint(2)\n"))
		})
	}
}

// TestLaterCommentLineKept 验证第一行代码之后的整行注释只清空内容，行本身保留。
func TestLaterCommentLineKept(t *testing.T) {
	content := "# license\n" +
		"# more\n" +
		"\n" +
		"import os\n" +
		"# later comment\n" +
		"x = 1\n"

	for _, s := range allSanitizers() {
		t.Run(s.Name(), func(t *testing.T) {
			assert.Equal(t, "\nimport os\n\nx = 1\n", s.Sanitize(content))
		})
	}
}

// TestQuoteGuardedMarker 验证紧跟引号的 # 不会被当作注释。
func TestQuoteGuardedMarker(t *testing.T) {
	for _, s := range allSanitizers() {
		t.Run(s.Name(), func(t *testing.T) {
			assert.Equal(t, `tag = "#main"  `, s.Sanitize(`tag = "#main"  # pick`))
			assert.Equal(t, `sep = '#'`, s.Sanitize(`sep = '#'`))
			assert.Equal(t, `pat = "\#"`, s.Sanitize(`pat = "\#"`))
		})
	}
}

// TestMarkerInsideStringBody 对比两种实现：启发式会截断字符串，状态机不会。
func TestMarkerInsideStringBody(t *testing.T) {
	line := `s = "a # b"  # c`

	assert.Equal(t, `s = "a `, NewRegexSanitizer("#").Sanitize(line))
	assert.Equal(t, `s = "a # b"  `, NewLexSanitizer("#").Sanitize(line))
	assert.Equal(t, `s = "a\"#"  `, NewLexSanitizer("#").Sanitize(`s = "a\"#"  # c`))
}

// TestDocstringPreserved 验证多行字符串原样保留。
func TestDocstringPreserved(t *testing.T) {
	content := "def f():\n" +
		"    \"\"\"Return one.\n" +
		"\n" +
		"    Extra detail.\n" +
		"    \"\"\"\n" +
		"    return 1\n"

	for _, s := range allSanitizers() {
		t.Run(s.Name(), func(t *testing.T) {
			assert.Equal(t, content, s.Sanitize(content))
		})
	}

	withMarker := "def f():\n" +
		"    '''Usage:\n" +
		"    run # twice\n" +
		"    '''\n" +
		"    return 1  # one\n"
	expected := "def f():\n" +
		"    '''Usage:\n" +
		"    run # twice\n" +
		"    '''\n" +
		"    return 1  \n"
	assert.Equal(t, expected, NewLexSanitizer("#").Sanitize(withMarker))
}

// TestIdempotent 验证 Sanitize(Sanitize(x)) == Sanitize(x)。
func TestIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"x = 1\ny = 2\n",
		"# a\n# b\nprint(1)  # c\n# d\nz = '#'\n",
		"  \n# trailing without newline",
		"'#a\n#b\n",
		"def f():\n    \"\"\"doc\"\"\"\n    return 1\n",
	}

	for _, s := range allSanitizers() {
		for _, input := range inputs {
			once := s.Sanitize(input)
			assert.Equal(t, once, s.Sanitize(once), "%s: input %q", s.Name(), input)
		}
	}
}

// TestCommentOnlyFileBecomesEmpty 验证纯注释文件净化后为空。
func TestCommentOnlyFileBecomesEmpty(t *testing.T) {
	for _, s := range allSanitizers() {
		assert.Equal(t, "", s.Sanitize("# one\n# two\n"), s.Name())
		assert.Equal(t, "", s.Sanitize("# only"), s.Name())
	}
}

// TestCustomMarker 验证可配置的注释标记。
func TestCustomMarker(t *testing.T) {
	s, err := New(ModeRegex, "//")
	require.NoError(t, err)
	assert.Equal(t, "x := 1 \n", s.Sanitize("// header\nx := 1 // note\n"))
}

// TestNewModes 验证模式注册表。
func TestNewModes(t *testing.T) {
	assert.Equal(t, []string{ModeLexer, ModeRegex}, Modes())

	s, err := New("LEXER", "#")
	require.NoError(t, err)
	assert.Equal(t, ModeLexer, s.Name())

	_, err = New("ast", "#")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported strip mode")

	_, err = New(ModeRegex, "")
	require.Error(t, err)
}

// TestReadSourceNormalizes 验证 BOM 去除与换行统一。
func TestReadSourceNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.py")
	require.NoError(t, os.WriteFile(path, []byte("\xef\xbb\xbfx = 1\r\ny = 2\r\n"), 0o644))

	text, err := ReadSource(path)
	require.NoError(t, err)
	assert.Equal(t, "x = 1\ny = 2\n", text)
}

// TestReadSourceErrors 验证不存在与非法编码的文件返回错误。
func TestReadSourceErrors(t *testing.T) {
	_, err := ReadSource(filepath.Join(t.TempDir(), "missing.py"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	path := filepath.Join(t.TempDir(), "latin1.py")
	require.NoError(t, os.WriteFile(path, []byte("name = 'caf\xe9'\n"), 0o644))
	_, err = ReadSource(path)
	assert.True(t, errors.Is(err, ErrInvalidEncoding))
}

// TestProcess 验证 FileResult 的三种结果。
func TestProcess(t *testing.T) {
	dir := t.TempDir()
	s := NewRegexSanitizer("#")

	code := filepath.Join(dir, "a.py")
	require.NoError(t, os.WriteFile(code, []byte("print(1)  # note"), 0o644))
	result := Process(code, s)
	assert.True(t, result.Ok())
	assert.Equal(t, "print(1)  ", result.Text)

	comments := filepath.Join(dir, "c.py")
	require.NoError(t, os.WriteFile(comments, []byte("# nothing\n"), 0o644))
	result = Process(comments, s)
	assert.False(t, result.Ok())
	assert.True(t, errors.Is(result.Err, model.ErrEmptyContent))

	result = Process(filepath.Join(dir, "missing.py"), s)
	assert.False(t, result.Ok())
	assert.True(t, errors.Is(result.Err, os.ErrNotExist))
}
