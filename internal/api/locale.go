package api

import (
	"net/http"
	"time"

	"golang.org/x/text/language"
)

// Lang is a response language for calendar names.
type Lang string

const (
	LangEnglish Lang = "en"
	LangKorean  Lang = "ko"
)

// English first: it is the fallback for unmatched preferences.
var languageMatcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Korean,
})

// requestLang picks the response language. ?lang= wins over Accept-Language.
func requestLang(r *http.Request) Lang {
	pref := r.URL.Query().Get("lang")
	if pref == "" {
		pref = r.Header.Get("Accept-Language")
	}
	if pref == "" {
		return LangEnglish
	}

	tags, _, err := language.ParseAcceptLanguage(pref)
	if err != nil || len(tags) == 0 {
		return LangEnglish
	}

	tag, _, _ := languageMatcher.Match(tags...)
	if base, _ := tag.Base(); base.String() == "ko" {
		return LangKorean
	}
	return LangEnglish
}

var weekdaysKorean = [7]string{"일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일"}

func weekdayName(d time.Weekday, lang Lang) string {
	if lang == LangKorean {
		return weekdaysKorean[d]
	}
	return d.String()
}
