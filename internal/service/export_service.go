package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"edusync/backend/internal/dto"
	"edusync/backend/internal/model"
	"edusync/backend/internal/repository"
	"edusync/backend/internal/scheduling"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成导出文件失败")

// importHeader 导出与导入共用的列名；导出额外附带可读列，导入时忽略
var importHeader = []string{"course_id", "faculty_id", "class_id", "section_id", "day_of_week", "start_time", "end_time"}

// ExportService 导出业务接口
//
// 导出范围与列表接口使用同一组筛选条件（不分页）。
//   - Excel：一行一条排课，前 7 列可直接回传给导入接口
//   - ICS：每条排课生成一个每周重复的事件，锚定在当前周
type ExportService interface {
	ExportXLSX(ctx context.Context, req *dto.ScheduleExportRequest) (*bytes.Buffer, string, error)
	ExportICS(ctx context.Context, req *dto.ScheduleExportRequest) ([]byte, string, error)
}

type exportService struct {
	repo     *repository.Repository
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewExportService 创建 ExportService 实例；loc 为 ICS 事件使用的时区
func NewExportService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) ExportService {
	if loc == nil {
		loc = time.UTC
	}
	return &exportService{repo: repo, location: loc, now: time.Now, logger: logger}
}

func (s *exportService) list(ctx context.Context, req *dto.ScheduleExportRequest) ([]model.ClassSchedule, error) {
	f, err := buildScheduleFilter(req.ViewType, req.DepartmentID, req.ClassID, req.SectionID, req.FacultyID, req.Day)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.ClassSchedule.ListAll(ctx, f)
	if err != nil {
		s.logger.Error("查询导出排课失败", zap.Error(err))
		return nil, err
	}
	return list, nil
}

// ═══════════════════════════════════════════════════════════
// ExportXLSX — 导出为 Excel
// ═══════════════════════════════════════════════════════════
//
// 表头：course_id | faculty_id | class_id | section_id | day_of_week | start_time | end_time
//       | course | faculty | class | section | room
// 行顺序与列表接口一致（星期 → 开始时间 → ID）

func (s *exportService) ExportXLSX(ctx context.Context, req *dto.ScheduleExportRequest) (*bytes.Buffer, string, error) {
	list, err := s.list(ctx, req)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Timetable"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	header := append(append([]string(nil), importHeader...), "course", "faculty", "class", "section", "room")

	f.SetColWidth(sheetName, "A", colName(len(importHeader)-1), 12)
	f.SetColWidth(sheetName, colName(len(importHeader)), colName(len(header)-1), 24)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range header {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(header)-1), 1), headerStyle)

	row := 2
	for i := range list {
		m := &list[i]
		values := []interface{}{
			m.CourseID, m.FacultyID, m.ClassID, m.SectionID,
			m.DayOfWeek.String(), normalizeClock(m.StartTime), normalizeClock(m.EndTime),
		}
		course, faculty, class, section, room := "", "", "", "", ""
		if m.Course != nil {
			course = fmt.Sprintf("%s %s", m.Course.CourseCode, m.Course.Name)
		}
		if m.Faculty != nil {
			faculty = m.Faculty.Name
		}
		if m.Class != nil {
			class = m.Class.Name
		}
		if m.Section != nil {
			section = m.Section.Name
			room = m.Section.RoomNo
		}
		values = append(values, course, faculty, class, section, room)

		for col, v := range values {
			f.SetCellValue(sheetName, cell(colName(col), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("timetable_%s.xlsx", s.now().In(s.location).Format("20060102"))
	s.logger.Info("排课已导出为 Excel", zap.Int("rows", len(list)))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportICS — 导出为 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 每条排课 → 一个 VEVENT：DTSTART 为当前周对应星期的开始时间，RRULE:FREQ=WEEKLY。

func (s *exportService) ExportICS(ctx context.Context, req *dto.ScheduleExportRequest) ([]byte, string, error) {
	list, err := s.list(ctx, req)
	if err != nil {
		return nil, "", err
	}

	now := s.now().In(s.location)
	monday := weekStart(now)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//EduSync//Timetable//EN")
	cal.SetXWRCalName("EduSync Timetable")
	cal.SetXWRTimezone(s.location.String())

	for i := range list {
		m := &list[i]
		e, err := m.Entry()
		if err != nil {
			s.logger.Warn("排课时间格式无效，已跳过导出", zap.Uint("id", m.ClassScheduleID), zap.Error(err))
			continue
		}

		day := monday.AddDate(0, 0, int(e.Day)-1)
		event := cal.AddEvent(fmt.Sprintf("class-schedule-%d@edusync", m.ClassScheduleID))
		event.SetDtStampTime(now)
		event.SetStartAt(atClock(day, e.Start))
		event.SetEndAt(atClock(day, e.End))
		event.AddProperty(ics.ComponentPropertyRrule, "FREQ=WEEKLY")
		event.SetSummary(eventSummary(m))
		if m.Section != nil && m.Section.RoomNo != "" {
			event.SetLocation(m.Section.RoomNo)
		}
		if m.Faculty != nil {
			event.SetDescription("Faculty: " + m.Faculty.Name)
		}
	}

	filename := fmt.Sprintf("timetable_%s.ics", now.Format("20060102"))
	s.logger.Info("排课已导出为 ICS", zap.Int("events", len(list)))
	return []byte(cal.Serialize()), filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// weekStart t 所在周的周一 0 点（同一时区）
func weekStart(t time.Time) time.Time {
	offset := int(scheduling.FromTime(t.Weekday())) - 1
	d := t.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
}

func atClock(day time.Time, c scheduling.Clock) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), c.Second(), 0, day.Location())
}

func eventSummary(m *model.ClassSchedule) string {
	summary := fmt.Sprintf("Course #%d", m.CourseID)
	if m.Course != nil {
		summary = m.Course.Name
	}
	if m.Class != nil && m.Section != nil {
		summary += fmt.Sprintf(" (%s %s)", m.Class.Name, m.Section.Name)
	}
	return summary
}
