package i18n

var english = map[string]string{
	"invalid_type":          "expected {expected}",
	"required":              "is required",
	"required.notnull":      "must not be null",
	"unknown_key":           "unknown key {key}",
	"duplicate_key":         "duplicate key {key}",
	"discriminator_missing": "discriminator {field} is missing",
	"discriminator_unknown": "unknown discriminator value {value}",
	"custom":                "{message}",

	"length":     "has an invalid length",
	"length.min": "must be at least {param} characters long",
	"length.max": "must be at most {param} characters long",
	"length.len": "must be exactly {param} characters long",
	"length.gt":  "must be longer than {param} characters",
	"length.gte": "must be at least {param} characters long",
	"length.lt":  "must be shorter than {param} characters",
	"length.lte": "must be at most {param} characters long",

	"range":     "is out of range",
	"range.min": "must be greater than or equal to {param}",
	"range.max": "must be less than or equal to {param}",
	"range.len": "must equal {param}",
	"range.eq":  "must equal {param}",
	"range.ne":  "must not equal {param}",
	"range.gt":  "must be greater than {param}",
	"range.gte": "must be greater than or equal to {param}",
	"range.lt":  "must be less than {param}",
	"range.lte": "must be less than or equal to {param}",

	"size":     "has an invalid number of items",
	"size.min": "must contain at least {param} items",
	"size.max": "must contain at most {param} items",
	"size.len": "must contain exactly {param} items",
	"size.gt":  "must contain more than {param} items",
	"size.gte": "must contain at least {param} items",
	"size.lt":  "must contain fewer than {param} items",
	"size.lte": "must contain at most {param} items",

	"pattern":                      "must match {param}",
	"format":                       "must be a valid {format}",
	"enum":                         "must be one of [{param}]",
	"enum.eq":                      "must equal {param}",
	"enum.ne":                      "must not equal {param}",
	"divisibility":                 "must be a multiple of {param}",
	"precision":                    "must have at most {param} decimal places",
	"precision.max_digits":         "must have at most {param} digits",
	"uniqueness":                   "duplicates the item at index {first}",
	"cross_field":                  "does not match {field}",
	"cross_field.eqfield":          "must equal {field}",
	"cross_field.nefield":          "must not equal {field}",
	"cross_field.gtfield":          "must be greater than {field}",
	"cross_field.gtefield":         "must be greater than or equal to {field}",
	"cross_field.ltfield":          "must be less than {field}",
	"cross_field.ltefield":         "must be less than or equal to {field}",
	"conditional":                  "violates a conditional requirement",
	"conditional.required_if":      "is required when {field} is {value}",
	"conditional.required_unless":  "is required unless {field} is {value}",
	"conditional.required_with":    "is required when {field} is set",
	"conditional.required_without": "is required when {field} is not set",
	"conditional.excluded_if":      "must be empty when {field} is {value}",
	"conditional.excluded_unless":  "must be empty unless {field} is {value}",
	"conditional.excluded_with":    "must be empty when {field} is set",
	"conditional.excluded_without": "must be empty when {field} is not set",
}

var japanese = map[string]string{
	"invalid_type":          "型が不正です（期待: {expected}）",
	"required":              "必須項目です",
	"required.notnull":      "null は指定できません",
	"unknown_key":           "未知のキーです: {key}",
	"duplicate_key":         "キーが重複しています: {key}",
	"discriminator_missing": "判別子 {field} がありません",
	"discriminator_unknown": "未知の判別子の値です: {value}",

	"length.min": "{param} 文字以上である必要があります",
	"length.max": "{param} 文字以下である必要があります",
	"length.len": "{param} 文字である必要があります",
	"range.min":  "{param} 以上である必要があります",
	"range.max":  "{param} 以下である必要があります",
	"range.gt":   "{param} より大きい必要があります",
	"range.lt":   "{param} より小さい必要があります",
	"size.min":   "{param} 件以上必要です",
	"size.max":   "{param} 件以下である必要があります",

	"pattern":      "パターン {param} に一致しません",
	"format":       "{format} の形式ではありません",
	"enum":         "[{param}] のいずれかである必要があります",
	"divisibility": "{param} の倍数である必要があります",
	"precision":    "小数点以下は {param} 桁までです",
	"uniqueness":   "インデックス {first} の要素と重複しています",
	"cross_field":  "{field} との関係が不正です",
	"conditional":  "条件付きの必須条件を満たしていません",
}
