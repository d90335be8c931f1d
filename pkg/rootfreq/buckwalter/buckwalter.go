// Package buckwalter converts between extended Buckwalter transliteration, as
// used by the Quranic Arabic Corpus, and Arabic script.
package buckwalter

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

type mapping struct {
	bw rune
	ar string // empty: dropped on conversion
}

// table follows https://corpus.quran.com/java/buckwalter.jsp. Order matters
// for the reverse direction: the first Buckwalter letter listed for an
// Arabic letter wins.
var table = []mapping{
	// hamza and alif forms
	{'\'', "ء"},
	{'>', "أ"},
	{'&', "ؤ"},
	{'<', "إ"},
	{'}', "ئ"},
	{'A', "ا"},
	{'{', "ٱ"},

	// consonants
	{'b', "ب"},
	{'p', "ة"},
	{'t', "ت"},
	{'v', "ث"},
	{'j', "ج"},
	{'H', "ح"},
	{'x', "خ"},
	{'d', "د"},
	{'*', "ذ"},
	{'r', "ر"},
	{'z', "ز"},
	{'s', "س"},
	{'$', "ش"},
	{'S', "ص"},
	{'D', "ض"},
	{'T', "ط"},
	{'Z', "ظ"},
	{'E', "ع"},
	{'g', "غ"},
	{'f', "ف"},
	{'q', "ق"},
	{'k', "ك"},
	{'l', "ل"},
	{'m', "م"},
	{'n', "ن"},
	{'h', "ه"},
	{'w', "و"},
	{'Y', "ى"},
	{'y', "ي"},

	// diacritics
	{'F', "ً"},
	{'N', "ٌ"},
	{'K', "ٍ"},
	{'a', "َ"},
	{'u', "ُ"},
	{'i', "ِ"},
	{'~', "ّ"},
	{'o', "ْ"},
	{'^', "ٓ"},
	{'#', "ٔ"},
	{'`', "ٰ"},

	// Quranic annotation marks; not rendered
	{'|', ""},
	{']', ""},
	{'[', ""},
	{'@', ""},
	{':', ""},
	{';', ""},
	{',', ""},
	{'.', ""},
	{'!', ""},
	{'-', ""},
	{'+', ""},
	{'%', ""},
	{'"', ""},
	{'_', ""},
}

var (
	toArabic     = make(map[rune]string, len(table))
	toBuckwalter = map[rune]string{
		'آ': "A^", // NFC composes alif + maddah
	}
)

func init() {
	for _, m := range table {
		toArabic[m.bw] = m.ar
		if m.ar == "" {
			continue
		}
		r := []rune(m.ar)[0]
		if _, ok := toBuckwalter[r]; !ok {
			toBuckwalter[r] = string(m.bw)
		}
	}
}

// ToArabic renders a Buckwalter string in Arabic script. Characters outside
// the table pass through unchanged. The result is NFC, so alif followed by
// maddah becomes U+0622.
func ToArabic(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s) * 2)
	for _, r := range s {
		if ar, ok := toArabic[r]; ok {
			b.WriteString(ar)
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}

// ToBuckwalter transliterates Arabic script back to Buckwalter. Input is
// brought to NFC first so it matches what ToArabic produces.
func ToBuckwalter(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if bw, ok := toBuckwalter[r]; ok {
			b.WriteString(bw)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
