package sanitizer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"projanalyzer/internal/model"
)

// ErrInvalidEncoding 表示文件内容不是合法的 UTF-8。
var ErrInvalidEncoding = errors.New("file is not valid UTF-8")

// ReadSource 以 UTF-8 读取源码文件。
// 去掉 BOM，并把 \r\n 与 \r 统一为 \n。
func ReadSource(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("read %s: %w", path, ErrInvalidEncoding)
	}

	decoded, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), raw)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}

	text := strings.ReplaceAll(string(decoded), "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n"), nil
}

// Process 读取并净化一个文件，把结果封装为 FileResult。
// 读取失败不会向上抛出，而是记录在 Err 中，由调用方决定如何处理。
func Process(path string, sanitizer Sanitizer) model.FileResult {
	text, err := ReadSource(path)
	if err != nil {
		return model.FileResult{Path: path, Err: err}
	}

	text = sanitizer.Sanitize(text)
	if text == "" {
		return model.FileResult{Path: path, Err: model.ErrEmptyContent}
	}
	return model.FileResult{Path: path, Text: text}
}
