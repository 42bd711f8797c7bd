package availability

import (
	"strings"
	"unicode"
)

// Normalize 生成房间名称的规范化键：小写并去除空白、"."、"&"、"-"。
// 房间表与课表的房间名称必须经过同一函数处理后再比较。
func Normalize(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		switch r {
		case '.', '&', '-':
			return -1
		}
		return unicode.ToLower(r)
	}, name)
}

// NameMatcher 在规范化之后应用别名表，把课表中的缩写映射到房间名称
type NameMatcher struct {
	aliases map[string]string // 规范化别名 → 规范化房间名
}

// NewNameMatcher 创建 NameMatcher；aliases 的键与值都会先规范化
func NewNameMatcher(aliases map[string]string) *NameMatcher {
	m := &NameMatcher{aliases: make(map[string]string, len(aliases))}
	for alias, target := range aliases {
		a, t := Normalize(alias), Normalize(target)
		if a == "" || t == "" || a == t {
			continue
		}
		m.aliases[a] = t
	}
	return m
}

// Key 返回名称的匹配键（nil matcher 等价于无别名）
func (m *NameMatcher) Key(name string) string {
	key := Normalize(name)
	if m == nil || key == "" {
		return key
	}
	if target, ok := m.aliases[key]; ok {
		return target
	}
	return key
}
