package i18n

import "sync"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"invalid_type":       "invalid type",
		"required":           "required property missing",
		"unknown_key":        "unknown key",
		"duplicate_key":      "duplicate key",
		"too_small":          "too small",
		"overflow":           "value out of range",
		"parse_error":        "parse error",
		"truncated":          "truncated",
		"unknown_variant":    "unknown variant",
		"invalid_identifier": "invalid identifier",
		"invalid_url":        "invalid url",
		"invalid_duration":   "invalid duration",
		"invalid_timestamp":  "invalid timestamp",
		"render_error":       "value cannot be rendered in target format",
	},
	"ja": {
		"invalid_type":       "型が不正です",
		"required":           "必須プロパティが不足しています",
		"unknown_key":        "未知のキーです",
		"duplicate_key":      "キーが重複しています",
		"too_small":          "小さすぎます",
		"overflow":           "値が範囲外です",
		"parse_error":        "解析エラー",
		"truncated":          "打ち切られました",
		"unknown_variant":    "未知のバリアントです",
		"invalid_identifier": "識別子が不正です",
		"invalid_url":        "URLが不正です",
		"invalid_duration":   "期間が不正です",
		"invalid_timestamp":  "日時が不正です",
		"render_error":       "出力形式で表現できない値です",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	if msg, ok := dictionaries[t.lang][code]; ok {
		return msg
	}
	return code
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores English.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
