package services

import (
	"strings"

	"golang.org/x/text/language"
)

const (
	LangEN = "en"
	LangKH = "kh"
	LangZH = "zh"
)

// SupportedLangs is the order the menu offers languages in.
var SupportedLangs = []string{LangEN, LangKH, LangZH}

// Index positions match SupportedLangs.
var langMatcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Khmer,
	language.Chinese,
})

// normalizeLangParam maps an explicit ?lang= value to a menu language.
// Both the ISO code "km" and the legacy "kh" select Khmer.
func normalizeLangParam(raw string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case v == "":
		return "", false
	case v == LangKH || v == "km" || strings.HasPrefix(v, "km-"):
		return LangKH, true
	case v == LangZH || strings.HasPrefix(v, "zh-"):
		return LangZH, true
	case v == LangEN || strings.HasPrefix(v, "en-"):
		return LangEN, true
	}
	return "", false
}

// ResolveLang picks the menu language: an explicit query value wins, then the
// Accept-Language header, then English.
func ResolveLang(query, acceptLanguage string) string {
	if lang, ok := normalizeLangParam(query); ok {
		return lang
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return LangEN
	}
	_, idx, conf := langMatcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(SupportedLangs) {
		return LangEN
	}
	return SupportedLangs[idx]
}

// localized returns the translation for lang, falling back to English when empty.
func localized(lang, en, kh, zh string) string {
	switch lang {
	case LangKH:
		if s := strings.TrimSpace(kh); s != "" {
			return s
		}
	case LangZH:
		if s := strings.TrimSpace(zh); s != "" {
			return s
		}
	}
	return en
}

var menuLabels = map[string]map[string]string{
	LangEN: {
		"search_placeholder": "Search your favorite food",
		"add_to_cart":        "Add to Cart",
		"total":              "Total",
		"category":           "Category",
		"settings":           "Settings",
		"all":                "All",
		"popular":            "Popular",
		"no_results":         "No results found",
	},
	LangKH: {
		"search_placeholder": "ស្វែងរកអាហារដែលអ្នកចូលចិត្ត",
		"add_to_cart":        "ដាក់ចូលកន្ត្រក",
		"total":              "សរុប",
		"category":           "ប្រភេទ",
		"settings":           "ការកំណត់",
	},
	LangZH: {
		"search_placeholder": "搜索你最喜欢的食物",
		"add_to_cart":        "加入购物车",
		"total":              "总计",
		"category":           "类别",
		"settings":           "设置",
	},
}

// Labels returns the static UI strings for lang, filling gaps from English.
func Labels(lang string) map[string]string {
	out := make(map[string]string, len(menuLabels[LangEN]))
	for k, v := range menuLabels[LangEN] {
		out[k] = v
	}
	for k, v := range menuLabels[lang] {
		out[k] = v
	}
	return out
}
