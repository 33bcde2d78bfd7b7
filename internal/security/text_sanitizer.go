// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer はタスクのタイトルや説明に含まれるHTMLマークアップを除去し、
// 保存されるテキストをプレーンテキストに限定する。
// bluemondayのStrictPolicyを使用し、全てのタグと属性を除去する。
package security

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService はプレーンテキスト化のインターフェースを定義する。
// タスクの保存前に使用される。
type TextSanitizerService interface {
	// Sanitize は入力から全てのHTMLタグを除去したプレーンテキストを返す。
	// script、styleタグは内容ごと除去される。
	// 通常の文字（&、<を含まない記号や日本語）はそのまま保持される。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのポリシーはスレッドセーフに共有できる。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// maxSanitizePasses は実体参照の多重エンコードを展開する最大回数。
const maxSanitizePasses = 8

// Sanitize はタグを除去し、bluemondayが付与した実体参照を元の文字に戻す。
// 出力はHTMLではなくJSON文字列として返すため、エスケープは保持しない。
// 実体参照で表現されたタグ（&lt;b&gt;等）は展開後に再度除去し、出力が変化しなくなるまで繰り返す。
func (s *textSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	out := raw
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(s.policy.Sanitize(out))
		if next == out {
			return out
		}
		out = next
	}
	// 収束しない入力はエスケープしたまま返し、タグを残さない
	return s.policy.Sanitize(out)
}
