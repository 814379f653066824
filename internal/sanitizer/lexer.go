package sanitizer

import (
	"regexp"
	"strings"
)

// LexSanitizer 是基于状态机的净化器。
// 它跨行跟踪单引号、双引号与三引号字符串，只删除字符串之外的注释，
// 因此 "a # b" 这类字符串不会被截断。
type LexSanitizer struct {
	marker  string
	leading *regexp.Regexp
}

// NewLexSanitizer 创建状态机净化器。
func NewLexSanitizer(marker string) *LexSanitizer {
	return &LexSanitizer{
		marker:  marker,
		leading: leadingBlockPattern(marker),
	}
}

// Name 返回实现名称。
func (s *LexSanitizer) Name() string {
	return ModeLexer
}

// Sanitize 去掉开头注释块后，逐行运行状态机。
func (s *LexSanitizer) Sanitize(text string) string {
	if text == "" {
		return ""
	}

	text = s.leading.ReplaceAllString(text, "")

	engine := &lexEngine{marker: s.marker}
	var builder strings.Builder
	builder.Grow(len(text))
	for _, line := range splitLines(text) {
		body, newline := cutNewline(line)
		builder.WriteString(engine.processLine(body))
		builder.WriteString(newline)
	}
	return builder.String()
}

// lexEngine 保存跨行的字符串状态。
type lexEngine struct {
	marker            string
	inSingleQuotedStr bool
	inDoubleQuotedStr bool
	inTripleSingleStr bool
	inTripleDoubleStr bool
}

// processLine 返回去除注释后的行内容。
// 按字节扫描即可：引号、反斜杠和注释标记都是 ASCII，不会与多字节 UTF-8 冲突。
func (e *lexEngine) processLine(line string) string {
	for idx := 0; idx < len(line); {
		current := line[idx]

		if e.inTripleSingleStr {
			// 三单引号字符串只有遇到 ''' 才会退出。
			if strings.HasPrefix(line[idx:], "'''") {
				e.inTripleSingleStr = false
				idx += 3
				continue
			}
			idx++
			continue
		}

		if e.inTripleDoubleStr {
			if strings.HasPrefix(line[idx:], `"""`) {
				e.inTripleDoubleStr = false
				idx += 3
				continue
			}
			idx++
			continue
		}

		if e.inSingleQuotedStr || e.inDoubleQuotedStr {
			// 普通字符串里反斜杠会转义下一个字符。
			if current == '\\' && idx+1 < len(line) {
				idx += 2
				continue
			}
			if (e.inSingleQuotedStr && current == '\'') || (e.inDoubleQuotedStr && current == '"') {
				e.inSingleQuotedStr = false
				e.inDoubleQuotedStr = false
			}
			idx++
			continue
		}

		if strings.HasPrefix(line[idx:], e.marker) {
			return line[:idx]
		}

		switch current {
		case '\'':
			if strings.HasPrefix(line[idx:], "'''") {
				e.inTripleSingleStr = true
				idx += 3
				continue
			}
			e.inSingleQuotedStr = true
		case '"':
			if strings.HasPrefix(line[idx:], `"""`) {
				e.inTripleDoubleStr = true
				idx += 3
				continue
			}
			e.inDoubleQuotedStr = true
		}
		idx++
	}

	// 普通字符串不能跨行，除非行尾是续行反斜杠。
	if !strings.HasSuffix(line, "\\") {
		e.inSingleQuotedStr = false
		e.inDoubleQuotedStr = false
	}
	return line
}
