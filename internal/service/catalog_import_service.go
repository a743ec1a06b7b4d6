package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"edusync/backend/internal/dto"
)

// 基础数据导入类型
const (
	ImportStudents = "students"
	ImportFaculty  = "faculty"
	ImportCourses  = "courses"
)

// ErrImportBadType 导入类型不是 students / faculty / courses
var ErrImportBadType = errors.New("导入类型必须为 students、faculty 或 courses")

// catalogImportColumns 各导入类型的必需列；列名匹配忽略大小写与下划线（departmentId 同 department_id）
var catalogImportColumns = map[string][]string{
	ImportStudents: {"name", "email", "password", "department_id", "class_id", "section_id"},
	ImportFaculty:  {"name", "email", "password", "department_id"},
	ImportCourses:  {"name", "course_code", "department_id", "credit_hours"},
}

// IsCatalogImportType 判断导入类型是否受支持
func IsCatalogImportType(kind string) bool {
	_, ok := catalogImportColumns[kind]
	return ok
}

// CatalogImportRow 基础数据导入解析后的单行；Person 与 Course 按导入类型二选一
type CatalogImportRow struct {
	Row    int
	Person *dto.PersonRequest
	Course *dto.CourseRequest
	Err    string // 解析或格式校验失败原因，非空时该行不写入
}

// CatalogImportService 学生 / 教师 / 课程批量导入业务接口
//
// 每一行走与单条创建相同的校验流程；失败行记录原因后继续，不回滚已成功的行。
type CatalogImportService interface {
	ParseImportFile(kind string, reader io.Reader) ([]CatalogImportRow, error)
	Import(ctx context.Context, kind string, rows []CatalogImportRow, callerID uint) (*dto.ImportResult, error)
}

type catalogImportService struct {
	people  PeopleService
	courses CourseService
	logger  *zap.Logger
}

// NewCatalogImportService 创建 CatalogImportService 实例
func NewCatalogImportService(people PeopleService, courses CourseService, logger *zap.Logger) CatalogImportService {
	return &catalogImportService{people: people, courses: courses, logger: logger}
}

// ────────────────────── ParseImportFile ──────────────────────

func (s *catalogImportService) ParseImportFile(kind string, reader io.Reader) ([]CatalogImportRow, error) {
	columns, ok := catalogImportColumns[kind]
	if !ok {
		return nil, ErrImportBadType
	}

	excelRows, err := readFirstSheet(reader)
	if err != nil {
		return nil, err
	}
	colIndex := parseHeaderIndex(excelRows[0], columns)
	if err := requireColumns(colIndex, columns); err != nil {
		return nil, err
	}

	var rows []CatalogImportRow
	for i := 1; i < len(excelRows); i++ {
		raw := excelRows[i]
		values := make(map[string]string, len(columns))
		empty := true
		for _, key := range columns {
			if idx := colIndex[key]; idx < len(raw) {
				values[key] = strings.TrimSpace(raw[idx])
			}
			if values[key] != "" {
				empty = false
			}
		}
		// 跳过全空行
		if empty {
			continue
		}

		item := CatalogImportRow{Row: i + 1}
		if err := fillCatalogRow(kind, columns, values, &item); err != nil {
			item.Err = err.Error()
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

// fillCatalogRow 将一行的列值转换为创建请求，并按请求结构的 binding 规则校验
func fillCatalogRow(kind string, columns []string, values map[string]string, item *CatalogImportRow) error {
	for _, key := range columns {
		if values[key] == "" {
			return fmt.Errorf("%s 必填", key)
		}
	}

	ids := make(map[string]uint)
	for _, key := range []string{"department_id", "class_id", "section_id"} {
		v, ok := values[key]
		if !ok {
			continue
		}
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil || n == 0 {
			return fmt.Errorf("%s 无效: %q", key, v)
		}
		ids[key] = uint(n)
	}

	var req interface{}
	switch kind {
	case ImportCourses:
		credits, err := strconv.Atoi(values["credit_hours"])
		if err != nil {
			return fmt.Errorf("credit_hours 无效: %q", values["credit_hours"])
		}
		item.Course = &dto.CourseRequest{
			Name:         values["name"],
			CourseCode:   values["course_code"],
			DepartmentID: ids["department_id"],
			CreditHours:  credits,
		}
		req = item.Course
	default:
		role := dto.RoleFaculty
		if kind == ImportStudents {
			role = dto.RoleStudent
		}
		item.Person = &dto.PersonRequest{
			Role:         role,
			Name:         values["name"],
			Email:        values["email"],
			Password:     values["password"],
			DepartmentID: ids["department_id"],
			ClassID:      ids["class_id"],
			SectionID:    ids["section_id"],
		}
		req = item.Person
	}

	if err := binding.Validator.ValidateStruct(req); err != nil {
		return errors.New(dto.ValidationDetails(err))
	}
	return nil
}

// ────────────────────── Import ──────────────────────

func (s *catalogImportService) Import(ctx context.Context, kind string, rows []CatalogImportRow, callerID uint) (*dto.ImportResult, error) {
	if !IsCatalogImportType(kind) {
		return nil, ErrImportBadType
	}
	result := &dto.ImportResult{Total: len(rows), Errors: []dto.ImportRowError{}}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if row.Err == "" && row.Course == nil && row.Person == nil {
			row.Err = "缺少导入数据"
		}
		if row.Err != "" {
			result.Failed++
			result.Errors = append(result.Errors, dto.ImportRowError{Row: row.Row, Reason: row.Err})
			continue
		}

		var err error
		if row.Course != nil {
			_, err = s.courses.Create(ctx, row.Course, callerID)
		} else {
			_, err = s.people.Create(ctx, row.Person, callerID)
		}
		if err != nil {
			if !isCatalogRowError(err) {
				s.logger.Error("导入基础数据中断", zap.String("kind", kind), zap.Int("row", row.Row), zap.Error(err))
				return nil, err
			}
			result.Failed++
			result.Errors = append(result.Errors, dto.ImportRowError{Row: row.Row, Reason: err.Error()})
			continue
		}
		result.Success++
	}

	s.logger.Info("基础数据导入完成",
		zap.String("kind", kind),
		zap.Int("total", result.Total),
		zap.Int("success", result.Success),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// isCatalogRowError 单行业务错误记入结果，其余错误终止导入
func isCatalogRowError(err error) bool {
	return errors.Is(err, ErrPersonEmailExists) ||
		errors.Is(err, ErrCourseCodeExists) ||
		errors.Is(err, ErrCatalogInvalidRef) ||
		errors.Is(err, ErrPersonBadRole)
}
