package api

import (
	"fmt"

	"github.com/zapponejosh/lunar-api/internal/lunar"
)

// PillarView is a sexagenary cycle position with names in the request language.
type PillarView struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Hanja  string `json:"hanja"`
	Animal string `json:"animal"`
}

func newPillarView(s lunar.Sexagenary, lang Lang) PillarView {
	v := PillarView{Index: s.Index, Hanja: s.Hanja()}
	if lang == LangKorean {
		v.Name = s.Korean()
		v.Animal = s.AnimalKorean()
	} else {
		v.Name = s.Romanized()
		v.Animal = s.Animal()
	}
	return v
}

// LunarDateView is a lunar date plus its display form (2023-L02-01).
type LunarDateView struct {
	lunar.LunarDate
	Text string `json:"text"`
}

// ConversionView describes one day in both calendars.
type ConversionView struct {
	Solar      string        `json:"solar"`
	Weekday    string        `json:"weekday"`
	Lunar      LunarDateView `json:"lunar"`
	YearPillar PillarView    `json:"year_pillar"`
	DayPillar  PillarView    `json:"day_pillar"`
}

func newConversionView(solar lunar.SolarDate, ld lunar.LunarDate, lang Lang) ConversionView {
	return ConversionView{
		Solar:      solar.String(),
		Weekday:    weekdayName(solar.Weekday(), lang),
		Lunar:      LunarDateView{LunarDate: ld, Text: ld.String()},
		YearPillar: newPillarView(lunar.YearPillar(ld.Year), lang),
		DayPillar:  newPillarView(lunar.DayPillar(solar), lang),
	}
}

// RangeView is the response of a solar date range conversion.
type RangeView struct {
	Start string           `json:"start"`
	End   string           `json:"end"`
	Count int              `json:"count"`
	Days  []ConversionView `json:"days"`
}

// MonthView is one chronological month of a lunar year.
type MonthView struct {
	lunar.MonthSlot
	Name  string `json:"name"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func monthName(month int, leap bool, lang Lang) string {
	switch {
	case lang == LangKorean && leap:
		return fmt.Sprintf("윤%d월", month)
	case lang == LangKorean:
		return fmt.Sprintf("%d월", month)
	case leap:
		return fmt.Sprintf("Leap month %d", month)
	default:
		return fmt.Sprintf("Month %d", month)
	}
}

// YearView describes the structure of a lunar year.
type YearView struct {
	Year      int         `json:"year"`
	NewYear   string      `json:"new_year"`
	LeapMonth int         `json:"leap_month"`
	Days      int         `json:"days"`
	Pillar    PillarView  `json:"pillar"`
	Months    []MonthView `json:"months"`
}

// RangeInfoView is the supported range of the live table.
type RangeInfoView struct {
	lunar.Range
	lunar.Metadata
}
