package reconcile

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks NFD 分解後移除所有結合符號，再重組回 NFC
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize 名稱正規化：小寫、去除變音符號、修剪前後空白
// 純函數且冪等：Normalize(Normalize(x)) == Normalize(x)
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		// 轉換失敗時退回小寫字串，查表寧可少匹配也不中斷
		return s
	}
	return out
}
