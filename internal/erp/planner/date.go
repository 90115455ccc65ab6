package planner

import "time"

// 所有计划日期统一为UTC零点的"自然日"。混用带时区时间和自然日
// 是历史上差一天bug的主要来源，入口处一律先过CivilDate。

// CivilDate 截断到UTC零点
func CivilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AddDays 自然日加减
func AddDays(d time.Time, days int) time.Time {
	return CivilDate(d).AddDate(0, 0, days)
}

// AddMonths 按日历月加减
func AddMonths(d time.Time, months int) time.Time {
	return CivilDate(d).AddDate(0, months, 0)
}

// DaysBetween 返回 b - a 的自然日数
func DaysBetween(a, b time.Time) int {
	return int(CivilDate(b).Sub(CivilDate(a)).Hours() / 24)
}

// ParseDate 解析 YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return CivilDate(t), nil
}

// FormatDate 输出 YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
