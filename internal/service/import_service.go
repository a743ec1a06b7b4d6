package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"edusync/backend/internal/dto"
)

// ── 导入模块业务错误 ──

const maxImportRows = 1000

var (
	ErrImportBadFile     = errors.New("无法解析 Excel 文件")
	ErrImportNoData      = errors.New("Excel 文件无数据行（第一行为表头）")
	ErrImportTooManyRows = fmt.Errorf("数据行数超过上限 %d 行", maxImportRows)
	ErrImportBadHeader   = errors.New("Excel 表头缺少必要列")
)

// ImportScheduleRow Excel 导入解析后的单行数据
type ImportScheduleRow struct {
	Row int // Excel 行号
	Req dto.ScheduleRequest
	Err string // 解析阶段的错误，非空时该行不写入
}

// ImportService 排课批量导入业务接口
//
// 每一行独立走与单条创建相同的校验与冲突检测流程；
// 失败的行记录原因后继续处理后续行，不回滚已成功的行。
type ImportService interface {
	ParseImportFile(reader io.Reader) ([]ImportScheduleRow, error)
	Import(ctx context.Context, rows []ImportScheduleRow, callerID uint) (*dto.ImportResult, error)
}

type importService struct {
	schedule ScheduleService
	logger   *zap.Logger
}

// NewImportService 创建 ImportService 实例
func NewImportService(schedule ScheduleService, logger *zap.Logger) ImportService {
	return &importService{schedule: schedule, logger: logger}
}

// ────────────────────── ParseImportFile ──────────────────────

func (s *importService) ParseImportFile(reader io.Reader) ([]ImportScheduleRow, error) {
	excelRows, err := readFirstSheet(reader)
	if err != nil {
		return nil, err
	}

	colIndex := parseHeaderIndex(excelRows[0], importHeader)
	if err := requireColumns(colIndex, importHeader); err != nil {
		return nil, err
	}

	var rows []ImportScheduleRow
	for i := 1; i < len(excelRows); i++ {
		raw := excelRows[i]
		get := func(key string) string {
			if idx := colIndex[key]; idx < len(raw) {
				return strings.TrimSpace(raw[idx])
			}
			return ""
		}

		// 跳过全空行
		empty := true
		for _, key := range importHeader {
			if get(key) != "" {
				empty = false
				break
			}
		}
		if empty {
			continue
		}

		item := ImportScheduleRow{Row: i + 1}
		item.Req.DayOfWeek = get("day_of_week")
		item.Req.StartTime = get("start_time")
		item.Req.EndTime = get("end_time")

		ids := []struct {
			key string
			dst *uint
		}{
			{"course_id", &item.Req.CourseID},
			{"faculty_id", &item.Req.FacultyID},
			{"class_id", &item.Req.ClassID},
			{"section_id", &item.Req.SectionID},
		}
		for _, id := range ids {
			v, err := strconv.ParseUint(get(id.key), 10, 64)
			if err != nil || v == 0 {
				item.Err = fmt.Sprintf("%s 无效: %q", id.key, get(id.key))
				break
			}
			*id.dst = uint(v)
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

// readFirstSheet 读取第一个工作表的全部行；至少包含表头与一行数据
func readFirstSheet(reader io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportBadFile, err)
	}
	defer f.Close()

	excelRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("%w: 读取工作表失败: %v", ErrImportBadFile, err)
	}
	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}
	return excelRows, nil
}

// normalizeHeader 列名比较时忽略大小写、下划线与空格（department_id == departmentId）
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer("_", "", " ", "").Replace(h)
}

// parseHeaderIndex 解析 Excel 表头，返回 keys 中每个列名 -> 列索引映射，缺失的列为 -1
func parseHeaderIndex(header, keys []string) map[string]int {
	idx := make(map[string]int, len(keys))
	for _, key := range keys {
		idx[key] = -1
	}
	for i, h := range header {
		n := normalizeHeader(h)
		for _, key := range keys {
			if idx[key] < 0 && normalizeHeader(key) == n {
				idx[key] = i
			}
		}
	}
	return idx
}

// requireColumns 缺少任一列时返回包含缺失列名的 ErrImportBadHeader
func requireColumns(colIndex map[string]int, keys []string) error {
	var missing []string
	for _, key := range keys {
		if colIndex[key] < 0 {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w（%s）", ErrImportBadHeader, strings.Join(missing, "/"))
	}
	return nil
}

// ────────────────────── Import ──────────────────────

func (s *importService) Import(ctx context.Context, rows []ImportScheduleRow, callerID uint) (*dto.ImportResult, error) {
	result := &dto.ImportResult{Total: len(rows), Errors: []dto.ImportRowError{}}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if row.Err != "" {
			result.Failed++
			result.Errors = append(result.Errors, dto.ImportRowError{Row: row.Row, Reason: row.Err})
			continue
		}

		req := row.Req
		if _, err := s.schedule.Create(ctx, &req, callerID); err != nil {
			if !isRowError(err) {
				s.logger.Error("导入排课中断", zap.Int("row", row.Row), zap.Error(err))
				return nil, err
			}
			result.Failed++
			result.Errors = append(result.Errors, dto.ImportRowError{Row: row.Row, Reason: err.Error()})
			continue
		}
		result.Success++
	}

	s.logger.Info("排课导入完成",
		zap.Int("total", result.Total),
		zap.Int("success", result.Success),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// isRowError 单行业务错误记入结果，其余错误（数据库故障等）终止导入
func isRowError(err error) bool {
	return errors.Is(err, ErrScheduleConflict) ||
		errors.Is(err, ErrScheduleInvalidRef) ||
		errors.Is(err, ErrScheduleValidation) ||
		errors.Is(err, ErrScheduleLockTimeout)
}
