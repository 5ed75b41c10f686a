package normalize

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
)

// KST 所有时间窗口比较统一使用的参考时区（Asia/Seoul）
var KST *time.Location

func init() {
	KST, _ = time.LoadLocation("Asia/Seoul")
	if KST == nil {
		KST = time.FixedZone("KST", 9*3600)
	}
}

var (
	isoLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05Z0700",
		"2006-01-02T15:04:05.000Z0700",
		"2006-01-02T15:04Z07:00",
	}
	// 空格分隔、带时区的 ISO 时间，必须在按 KST 解释之前尝试
	isoSpaceLayouts = []string{
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02 15:04:05Z0700",
		"2006-01-02 15:04:05 Z07:00",
		"2006-01-02 15:04:05 -0700",
		"2006-01-02 15:04Z07:00",
	}
	// 不带时区的 ISO 时间按 KST 解释
	isoNaiveLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05.000",
		"2006-01-02T15:04",
	}
	rfc2822Layouts = []string{
		time.RFC1123Z,
		time.RFC1123,
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"Mon, 2 Jan 2006 15:04:05 MST",
		"2 Jan 2006 15:04:05 -0700",
	}
	localLayouts = []string{
		"2006-1-2 15:04:05",
		"2006-1-2 15:04",
		"2006-1-2",
		"2006.1.2 15:04:05",
		"2006.1.2 15:04",
		"2006.1.2",
		"2006/1/2 15:04:05",
		"2006/1/2",
	}

	compactDateRe = regexp.MustCompile(`^\d{8}$`)
	// 门户站点常见的 "2024.10.12. 15:04"、"2024. 10. 12."
	dottedDateRe  = regexp.MustCompile(`^(\d{4})\.\s*(\d{1,2})\.\s*(\d{1,2})\.?(?:\s+(\d{1,2}:\d{2}(?::\d{2})?))?$`)
	koreanDateRe  = regexp.MustCompile(`^(\d{4})년\s*(\d{1,2})월\s*(\d{1,2})일`)
	relativeRe    = regexp.MustCompile(`(?i)^(\d+\s*(초|분|시간)\s*전|방금\s*전?|\d+\s+(seconds?|minutes?|mins?|hours?)\s+ago|just now)$`)
)

// DateParser 把各种来源的日期字符串解析成统一时区的时间
type DateParser struct {
	Loc *time.Location
	Now func() time.Time
}

var defaultParser = DateParser{}

// Date 使用默认参数（KST、当前时间）解析日期
func Date(s string) (time.Time, bool) {
	return defaultParser.Parse(s)
}

func (p DateParser) loc() *time.Location {
	if p.Loc != nil {
		return p.Loc
	}
	return KST
}

func (p DateParser) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Parse 依次尝试 ISO-8601、RFC-2822、YYYYMMDD、本地日期格式、相对时间，首个匹配即返回。
// 无法识别时返回 false，调用方必须丢弃该条目而不是猜测日期。
func (p DateParser) Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	loc := p.loc()

	if strings.Contains(s, "T") {
		for _, layout := range isoLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.In(loc), true
			}
		}
		for _, layout := range isoNaiveLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t, true
			}
		}
	}

	for _, layout := range isoSpaceLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(loc), true
		}
	}

	if t, err := mail.ParseDate(s); err == nil {
		return t.In(loc), true
	}
	for _, layout := range rfc2822Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(loc), true
		}
	}

	if compactDateRe.MatchString(s) {
		if t, err := time.ParseInLocation("20060102", s, loc); err == nil {
			return t, true
		}
	}

	local := strings.TrimSuffix(s, ".")
	if m := dottedDateRe.FindStringSubmatch(s); m != nil {
		local = m[1] + "." + m[2] + "." + m[3]
		if m[4] != "" {
			local += " " + m[4]
		}
	}
	if len(local) > 19 {
		local = strings.TrimSpace(local[:19])
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, local, loc); err == nil {
			return t, true
		}
	}
	if m := koreanDateRe.FindStringSubmatch(s); m != nil {
		if t, err := time.ParseInLocation("2006-1-2", m[1]+"-"+m[2]+"-"+m[3], loc); err == nil {
			return t, true
		}
	}

	// 相对时间不按 N 精确计算，统一视为“现在”
	if relativeRe.MatchString(s) {
		return p.now().In(loc), true
	}

	return time.Time{}, false
}

// StartOfDay 返回 t 所在 KST 自然日的零点
func StartOfDay(t time.Time) time.Time {
	t = t.In(KST)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, KST)
}
