package lunar

import "fmt"

var (
	stemsKorean   = [10]string{"갑", "을", "병", "정", "무", "기", "경", "신", "임", "계"}
	stemsHanja    = [10]string{"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸"}
	stemsRoman    = [10]string{"Gap", "Eul", "Byeong", "Jeong", "Mu", "Gi", "Gyeong", "Sin", "Im", "Gye"}
	branchKorean  = [12]string{"자", "축", "인", "묘", "진", "사", "오", "미", "신", "유", "술", "해"}
	branchHanja   = [12]string{"子", "丑", "寅", "卯", "辰", "巳", "午", "未", "申", "酉", "戌", "亥"}
	branchRoman   = [12]string{"ja", "chuk", "in", "myo", "jin", "sa", "o", "mi", "sin", "yu", "sul", "hae"}
	animalEnglish = [12]string{"Rat", "Ox", "Tiger", "Rabbit", "Dragon", "Snake", "Horse", "Goat", "Monkey", "Rooster", "Dog", "Pig"}
	animalKorean  = [12]string{"쥐", "소", "호랑이", "토끼", "용", "뱀", "말", "양", "원숭이", "닭", "개", "돼지"}
)

// Sexagenary is a position in the sixty-term stem/branch cycle (gapja).
// Index 0 is 갑자 (甲子).
type Sexagenary struct {
	Index  int `json:"index"`
	Stem   int `json:"stem"`
	Branch int `json:"branch"`
}

func sexagenary(index int) Sexagenary {
	index = ((index % 60) + 60) % 60
	return Sexagenary{Index: index, Stem: index % 10, Branch: index % 12}
}

// YearPillar returns the cycle position of a lunar year. 4 CE was a 갑자 year.
func YearPillar(lunarYear int) Sexagenary {
	return sexagenary(lunarYear - 4)
}

// DayPillar returns the cycle position of a solar day.
func DayPillar(d SolarDate) Sexagenary {
	return sexagenary(d.julianDay() + 49)
}

// Korean returns the hangul name, e.g. 계묘.
func (s Sexagenary) Korean() string {
	return stemsKorean[s.Stem] + branchKorean[s.Branch]
}

// Hanja returns the Chinese-character name, e.g. 癸卯.
func (s Sexagenary) Hanja() string {
	return stemsHanja[s.Stem] + branchHanja[s.Branch]
}

// Romanized returns the revised-romanization name, e.g. Gye-myo.
func (s Sexagenary) Romanized() string {
	return stemsRoman[s.Stem] + "-" + branchRoman[s.Branch]
}

// Animal returns the English zodiac animal of the branch.
func (s Sexagenary) Animal() string {
	return animalEnglish[s.Branch]
}

// AnimalKorean returns the Korean zodiac animal of the branch.
func (s Sexagenary) AnimalKorean() string {
	return animalKorean[s.Branch]
}

// String returns e.g. "Gye-myo (癸卯)".
func (s Sexagenary) String() string {
	return fmt.Sprintf("%s (%s)", s.Romanized(), s.Hanja())
}
