// Package i18n 提供 id/en/zh 三语消息目录与 Accept-Language 协商。
// 语言以显式参数传递，不存在全局可变的"当前语言"。
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
)

// 支持的语言代码
const (
	Indonesian = "id"
	English    = "en"
	Chinese    = "zh"
)

// Default 未协商出结果且调用方未指定时使用的语言
const Default = Indonesian

var (
	supported = []language.Tag{language.Indonesian, language.English, language.Chinese}
	codes     = []string{Indonesian, English, Chinese}
	matcher   = language.NewMatcher(supported)
)

// Supported 判断语言代码是否受支持
func Supported(lang string) bool {
	for _, c := range codes {
		if c == lang {
			return true
		}
	}
	return false
}

// Negotiate 根据 Accept-Language 头选择语言；无法匹配时返回 fallback
func Negotiate(acceptLanguage, fallback string) string {
	if !Supported(fallback) {
		fallback = Default
	}
	if acceptLanguage == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	return codes[idx]
}

// T 返回 key 在 lang 下的消息；缺失时依次回退到默认语言与 key 本身
func T(lang, key string, args ...interface{}) string {
	msg, ok := catalog[lang][key]
	if !ok {
		msg, ok = catalog[Default][key]
	}
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

// Fallback 后端原始消息优先；为空时使用 key 的本地化消息
func Fallback(raw, lang, key string) string {
	if raw != "" {
		return raw
	}
	return T(lang, key)
}
