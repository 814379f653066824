// Package languages 维护内置的源码语言画像。
// 画像决定目录模式下匹配哪些后缀，以及净化时使用哪个行注释标记。
package languages

import (
	"sort"
	"strings"
)

// Profile 描述一种语言的过滤与净化参数。
type Profile struct {
	// Name 是展示名称，同时出现在 prompt 中（例如 Python）。
	Name string
	// Extensions 是该语言的后缀列表（包含点号，如 .py）。
	Extensions []string
	// CommentMarker 是行注释起始标记。
	CommentMarker string
}

// Registry 管理语言画像与名称映射。
type Registry struct {
	profiles []Profile
	byName   map[string]Profile
}

// NewRegistry 创建并注册所有内置语言画像。
func NewRegistry() *Registry {
	profiles := []Profile{
		{Name: "Python", Extensions: []string{".py"}, CommentMarker: "#"},
		{Name: "Ruby", Extensions: []string{".rb"}, CommentMarker: "#"},
		{Name: "Shell", Extensions: []string{".sh", ".bash"}, CommentMarker: "#"},
		{Name: "Go", Extensions: []string{".go"}, CommentMarker: "//"},
		{Name: "JavaScript", Extensions: []string{".js", ".mjs", ".cjs"}, CommentMarker: "//"},
		{Name: "TypeScript", Extensions: []string{".ts", ".tsx"}, CommentMarker: "//"},
		{Name: "Rust", Extensions: []string{".rs"}, CommentMarker: "//"},
		{Name: "Java", Extensions: []string{".java"}, CommentMarker: "//"},
		{Name: "C/C++", Extensions: []string{".c", ".cc", ".cpp", ".cxx", ".h", ".hh", ".hpp", ".hxx"}, CommentMarker: "//"},
		{Name: "SQL", Extensions: []string{".sql"}, CommentMarker: "--"},
	}

	registry := &Registry{
		profiles: profiles,
		byName:   make(map[string]Profile, len(profiles)),
	}
	for _, profile := range profiles {
		registry.byName[strings.ToLower(profile.Name)] = profile
	}
	return registry
}

// Lookup 按名称查找画像，大小写不敏感。
// 返回的 Extensions 是副本，调用方可以自由修改。
func (r *Registry) Lookup(name string) (Profile, bool) {
	profile, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Profile{}, false
	}
	profile.Extensions = append([]string(nil), profile.Extensions...)
	return profile, true
}

// Profiles 返回全部画像，按名称排序。
func (r *Registry) Profiles() []Profile {
	result := make([]Profile, 0, len(r.profiles))
	for _, profile := range r.profiles {
		extensions := append([]string(nil), profile.Extensions...)
		sort.Strings(extensions)
		profile.Extensions = extensions
		result = append(result, profile)
	}

	sort.Slice(result, func(i int, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}
