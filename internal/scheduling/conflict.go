package scheduling

import (
	"errors"
	"fmt"
)

// ── 排课冲突检测 ──────────────────────────────────────────────
//
// 两条排课记录冲突，当且仅当：
//   - 同一天（DayOfWeek 相同）
//   - 同一教师 或 同一班级分组（Section）
//   - 时间段按半开区间 [start, end) 相交
//
// 首尾相接（一条的结束时间等于另一条的开始时间）不算冲突。
// ─────────────────────────────────────────────────────────────

// ErrInvalidRange 开始时间不早于结束时间
var ErrInvalidRange = errors.New("开始时间必须早于结束时间")

// Entry 参与冲突检测的排课记录
type Entry struct {
	ID        uint
	CourseID  uint
	FacultyID uint
	ClassID   uint
	SectionID uint
	Day       Weekday
	Start     Clock
	End       Clock
}

// Validate 校验时间区间与星期
func (e Entry) Validate() error {
	if !e.Day.Valid() {
		return fmt.Errorf("无效的星期 %d", int(e.Day))
	}
	if e.Start >= e.End {
		return ErrInvalidRange
	}
	return nil
}

// Overlaps 半开区间相交判定：a.start < b.end && b.start < a.end
func Overlaps(aStart, aEnd, bStart, bEnd Clock) bool {
	return aStart < bEnd && bStart < aEnd
}

// Conflicts 判断候选记录与已有记录是否冲突
func Conflicts(candidate, existing Entry) bool {
	if candidate.Day != existing.Day {
		return false
	}
	if candidate.FacultyID != existing.FacultyID && candidate.SectionID != existing.SectionID {
		return false
	}
	return Overlaps(existing.Start, existing.End, candidate.Start, candidate.End)
}

// FindConflict 返回第一条与候选记录冲突的已有记录；excludeID 非 0 时跳过该记录（更新场景）
func FindConflict(candidate Entry, existing []Entry, excludeID uint) (*Entry, bool) {
	for i := range existing {
		if excludeID != 0 && existing[i].ID == excludeID {
			continue
		}
		if Conflicts(candidate, existing[i]) {
			return &existing[i], true
		}
	}
	return nil, false
}

// ConflictPair 一对互相冲突的记录
type ConflictPair struct {
	A Entry
	B Entry
}

// Reason 冲突维度：faculty、section 或两者皆有
func (p ConflictPair) Reason() string {
	switch {
	case p.A.FacultyID == p.B.FacultyID && p.A.SectionID == p.B.SectionID:
		return "faculty+section"
	case p.A.FacultyID == p.B.FacultyID:
		return "faculty"
	default:
		return "section"
	}
}

// FindAllConflicts 全量扫描，返回所有冲突对（用于巡检任务）
func FindAllConflicts(entries []Entry) []ConflictPair {
	byDay := make(map[Weekday][]Entry)
	for _, e := range entries {
		byDay[e.Day] = append(byDay[e.Day], e)
	}

	var pairs []ConflictPair
	for _, d := range Weekdays {
		list := byDay[d]
		for i := 0; i < len(list); i++ {
			for j := i + 1; j < len(list); j++ {
				if Conflicts(list[i], list[j]) {
					pairs = append(pairs, ConflictPair{A: list[i], B: list[j]})
				}
			}
		}
	}
	return pairs
}
