package scheduling

import (
	"fmt"
	"strconv"
	"strings"
)

// Clock 一天内的挂钟时间，以当天 0 点起的秒数表示，不含时区
type Clock int

// ParseClock 解析 HH:MM:SS 或 HH:MM 格式；PostgreSQL time 列返回的小数秒部分被忽略
func ParseClock(s string) (Clock, error) {
	v := strings.TrimSpace(s)
	if i := strings.IndexByte(v, '.'); i >= 0 {
		v = v[:i]
	}
	parts := strings.Split(v, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("无效的时间 %q，应为 HH:MM:SS", s)
	}
	limits := []int{23, 59, 59}
	total := 0
	for i, p := range parts {
		if len(p) != 2 {
			return 0, fmt.Errorf("无效的时间 %q，应为 HH:MM:SS", s)
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] {
			return 0, fmt.Errorf("无效的时间 %q，应为 HH:MM:SS", s)
		}
		total = total*60 + n
	}
	if len(parts) == 2 {
		total *= 60
	}
	return Clock(total), nil
}

// MustClock 解析失败时 panic，仅用于常量与测试数据
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", int(c)/3600, int(c)%3600/60, int(c)%60)
}

// Hour 小时部分
func (c Clock) Hour() int { return int(c) / 3600 }

// Minute 分钟部分
func (c Clock) Minute() int { return int(c) % 3600 / 60 }

// Second 秒部分
func (c Clock) Second() int { return int(c) % 60 }

// NormalizeClock 将 HH:MM 或 HH:MM:SS 统一为 HH:MM:SS
func NormalizeClock(s string) (string, error) {
	c, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}
