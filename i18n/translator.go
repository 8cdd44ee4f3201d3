package i18n

import (
	"strings"
	"sync/atomic"
)

// Translator retrieves localized messages for error codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator. Templates
// reference data entries as {name}; entries a template does not mention are
// ignored.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"string_expected":      "expected a string",
		"int32_expected":       "expected a 32-bit integer",
		"int64_expected":       "expected a 64-bit integer",
		"bigint_expected":      "expected an integer",
		"bigdecimal_expected":  "expected a decimal number",
		"double_expected":      "expected a number",
		"bool_expected":        "expected a boolean",
		"timestamp_expected":   "expected an RFC 3339 timestamp",
		"binary_expected":      "expected base64 data",
		"array_expected":       "expected an array",
		"object_expected":      "expected an object",
		"any_condition":        "predicate failed{?predicate}",
		"string_condition":     "string does not satisfy{?predicate}{?pattern}",
		"int32_condition":      "value out of bounds{?min}{?max}{?predicate}",
		"int64_condition":      "value out of bounds{?min}{?max}{?predicate}",
		"bigint_condition":     "value out of bounds{?min}{?max}{?predicate}",
		"bigdecimal_condition": "value out of bounds{?min}{?max}{?predicate}",
		"double_condition":     "value out of bounds{?min}{?max}{?predicate}",
		"bool_condition":       "predicate failed{?predicate}",
		"timestamp_condition":  "timestamp out of bounds{?min}{?max}{?predicate}",
		"binary_condition":     "binary does not satisfy{?predicate}{?min}{?max}",
		"array_condition":      "array does not satisfy predicate{?predicate}",
		"object_condition":     "object does not satisfy predicate{?predicate}",
		"map_condition":        "map does not satisfy predicate{?predicate}",
		"required":             "required property {key} missing",
		"spec_missing":         "unknown key {key}",
		"null_not_expected":    "null is not allowed",
		"constant_condition":   "value must be {expected}",
		"array_too_small":      "array has {got} elements, at least {min} required",
		"array_too_big":        "array has {got} elements, at most {max} allowed",
		"tuple_size":           "tuple must have exactly {expected} elements",
		"string_too_short":     "string has {got} characters, at least {min} required",
		"string_too_long":      "string has {got} characters, at most {max} allowed",
		"object_too_small":     "object has {got} properties, at least {min} required",
		"object_too_big":       "object has {got} properties, at most {max} allowed",
		"overflow":             "number does not fit {expected}",
		"syntax_error":         "syntax error: {detail}",
		"duplicate_key":        "duplicate key: {detail}",
		"limit_exceeded":       "limit exceeded: {detail}",
		"unresolved_ref":       "no spec named {name}",
	},
	"ja": {
		"string_expected":      "文字列が必要です",
		"int32_expected":       "32ビット整数が必要です",
		"int64_expected":       "64ビット整数が必要です",
		"bigint_expected":      "整数が必要です",
		"bigdecimal_expected":  "10進数が必要です",
		"double_expected":      "数値が必要です",
		"bool_expected":        "真偽値が必要です",
		"timestamp_expected":   "RFC 3339 形式の日時が必要です",
		"binary_expected":      "base64 データが必要です",
		"array_expected":       "配列が必要です",
		"object_expected":      "オブジェクトが必要です",
		"any_condition":        "条件を満たしていません{?predicate}",
		"string_condition":     "文字列が条件を満たしていません{?predicate}{?pattern}",
		"int32_condition":      "値が範囲外です{?min}{?max}{?predicate}",
		"int64_condition":      "値が範囲外です{?min}{?max}{?predicate}",
		"bigint_condition":     "値が範囲外です{?min}{?max}{?predicate}",
		"bigdecimal_condition": "値が範囲外です{?min}{?max}{?predicate}",
		"double_condition":     "値が範囲外です{?min}{?max}{?predicate}",
		"bool_condition":       "条件を満たしていません{?predicate}",
		"timestamp_condition":  "日時が範囲外です{?min}{?max}{?predicate}",
		"binary_condition":     "バイナリが条件を満たしていません{?predicate}{?min}{?max}",
		"array_condition":      "配列が条件を満たしていません{?predicate}",
		"object_condition":     "オブジェクトが条件を満たしていません{?predicate}",
		"map_condition":        "マップが条件を満たしていません{?predicate}",
		"required":             "必須プロパティ {key} が不足しています",
		"spec_missing":         "未知のキーです: {key}",
		"null_not_expected":    "null は許可されていません",
		"constant_condition":   "値は {expected} でなければなりません",
		"array_too_small":      "配列の要素数 {got} は最小 {min} 未満です",
		"array_too_big":        "配列の要素数 {got} は最大 {max} を超えています",
		"tuple_size":           "タプルの要素数は {expected} でなければなりません",
		"string_too_short":     "文字数 {got} は最小 {min} 未満です",
		"string_too_long":      "文字数 {got} は最大 {max} を超えています",
		"object_too_small":     "プロパティ数 {got} は最小 {min} 未満です",
		"object_too_big":       "プロパティ数 {got} は最大 {max} を超えています",
		"overflow":             "数値が {expected} に収まりません",
		"syntax_error":         "構文エラー: {detail}",
		"duplicate_key":        "キーが重複しています: {detail}",
		"limit_exceeded":       "上限を超えました: {detail}",
		"unresolved_ref":       "{name} という名前の定義がありません",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	return expand(tmpl, data)
}

// expand substitutes {name} placeholders with data entries. {?name} renders
// as " name=value" when the entry is present and disappears otherwise.
func expand(tmpl string, data map[string]string) string {
	var b strings.Builder
	for {
		i := strings.IndexByte(tmpl, '{')
		j := strings.IndexByte(tmpl, '}')
		if i < 0 || j < i {
			b.WriteString(tmpl)
			break
		}
		b.WriteString(tmpl[:i])
		name := tmpl[i+1 : j]
		if opt, ok := strings.CutPrefix(name, "?"); ok {
			if v, has := data[opt]; has {
				b.WriteString(" " + opt + "=" + v)
			}
		} else {
			b.WriteString(data[name])
		}
		tmpl = tmpl[j+1:]
	}
	return strings.TrimSpace(b.String())
}

var currentTranslator atomic.Value

func init() { currentTranslator.Store(holder{dictTranslator{lang: "en"}}) }

type holder struct{ Translator }

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	currentTranslator.Store(holder{dictTranslator{lang: lang}})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores the English dictionary.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	currentTranslator.Store(holder{tr})
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	return currentTranslator.Load().(holder).Message(code, data)
}
