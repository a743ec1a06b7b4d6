package scheduling

import (
	"fmt"
	"strings"
	"time"
)

// Weekday 星期（ISO 编号：1=周一 … 7=周日）
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Weekdays 按周一到周日排列的全部星期
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseWeekday 解析星期：支持英文全称、三字母缩写（大小写不敏感）及数字 1-7
func ParseWeekday(s string) (Weekday, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return 0, fmt.Errorf("星期不能为空")
	}
	for d := Monday; d <= Sunday; d++ {
		name := strings.ToLower(weekdayNames[d])
		if v == name || v == name[:3] {
			return d, nil
		}
	}
	if len(v) == 1 && v[0] >= '1' && v[0] <= '7' {
		return Weekday(v[0] - '0'), nil
	}
	return 0, fmt.Errorf("无效的星期 %q", s)
}

// Valid 是否为合法星期
func (d Weekday) Valid() bool { return d >= Monday && d <= Sunday }

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// Short 三字母缩写（Mon、Tue …）
func (d Weekday) Short() string {
	if !d.Valid() {
		return d.String()
	}
	return weekdayNames[d][:3]
}

// Time 转换为标准库 time.Weekday
func (d Weekday) Time() time.Weekday {
	return time.Weekday(int(d) % 7)
}

// MarshalText 以英文全称序列化
func (d Weekday) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("无效的星期 %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText 接受 ParseWeekday 支持的所有格式
func (d *Weekday) UnmarshalText(text []byte) error {
	v, err := ParseWeekday(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// FromTime 由标准库 time.Weekday 转换（Sunday=0 → 7）
func FromTime(d time.Weekday) Weekday {
	if d == time.Sunday {
		return Sunday
	}
	return Weekday(d)
}
