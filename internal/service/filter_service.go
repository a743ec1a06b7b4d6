package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"edusync/backend/internal/dto"
	"edusync/backend/internal/filter"
	"edusync/backend/internal/repository"
	"edusync/backend/internal/scheduling"
)

// ── 筛选模块业务错误 ──

var ErrFilterViewNotFound = errors.New("筛选视图不存在")

// 筛选视图
const (
	FilterViewStudent = "student" // 院系 → 班级 → 分组，星期
	FilterViewFaculty = "faculty" // 院系 → 教师，星期
	FilterViewForm    = "form"    // 排课表单：班级 → 分组
)

// FilterService 级联筛选业务接口
//
// 字段选项来自基础数据，每次调用时重新构建解析器；
// State 的 key 与排课列表查询参数一致，可直接用于 GET /timetable。
type FilterService interface {
	// Describe 返回字段定义、当前可选项与禁用状态；active 中失效的取值会被清除
	Describe(ctx context.Context, view string, active filter.State) (*dto.FilterResponse, error)
	// Change 修改单个字段并级联清空其全部后代
	Change(ctx context.Context, view string, req *dto.FilterChangeRequest) (*dto.FilterResponse, error)
	// Reset 所有字段恢复默认值
	Reset(ctx context.Context, view string) (*dto.FilterResponse, error)
}

type filterService struct {
	repo     *repository.Repository
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewFilterService 创建 FilterService 实例；loc 用于计算“今天”作为星期字段默认值
func NewFilterService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) FilterService {
	if loc == nil {
		loc = time.UTC
	}
	return &filterService{repo: repo, location: loc, now: time.Now, logger: logger}
}

// ────────────────────── Describe / Change / Reset ──────────────────────

func (s *filterService) Describe(ctx context.Context, view string, active filter.State) (*dto.FilterResponse, error) {
	r, err := s.resolver(ctx, view)
	if err != nil {
		return nil, err
	}
	return s.respond(view, r, r.Prune(active)), nil
}

func (s *filterService) Change(ctx context.Context, view string, req *dto.FilterChangeRequest) (*dto.FilterResponse, error) {
	r, err := s.resolver(ctx, view)
	if err != nil {
		return nil, err
	}
	next, err := r.ApplyChange(req.Key, req.Value, r.Prune(req.State))
	if err != nil {
		return nil, err
	}
	return s.respond(view, r, next), nil
}

func (s *filterService) Reset(ctx context.Context, view string) (*dto.FilterResponse, error) {
	r, err := s.resolver(ctx, view)
	if err != nil {
		return nil, err
	}
	return s.respond(view, r, r.Reset()), nil
}

func (s *filterService) respond(view string, r *filter.Resolver, state filter.State) *dto.FilterResponse {
	return &dto.FilterResponse{
		View:   view,
		Fields: r.Views(state),
		State:  state,
	}
}

// ── 字段构建 ──

func (s *filterService) resolver(ctx context.Context, view string) (*filter.Resolver, error) {
	var (
		fields []filter.Field
		err    error
	)
	switch view {
	case FilterViewStudent:
		fields, err = s.studentFields(ctx)
	case FilterViewFaculty:
		fields, err = s.facultyFields(ctx)
	case FilterViewForm:
		fields, err = s.formFields(ctx)
	default:
		return nil, fmt.Errorf("%w: %s", ErrFilterViewNotFound, view)
	}
	if err != nil {
		return nil, err
	}

	r, err := filter.NewResolver(fields)
	if err != nil {
		s.logger.Error("构建筛选解析器失败", zap.String("view", view), zap.Error(err))
		return nil, err
	}
	return r, nil
}

func (s *filterService) studentFields(ctx context.Context) ([]filter.Field, error) {
	dept, err := s.departmentField(ctx)
	if err != nil {
		return nil, err
	}
	class, err := s.classField(ctx, []string{"department_id"})
	if err != nil {
		return nil, err
	}
	section, err := s.sectionField(ctx)
	if err != nil {
		return nil, err
	}
	return []filter.Field{dept, class, section, s.dayField()}, nil
}

func (s *filterService) facultyFields(ctx context.Context) ([]filter.Field, error) {
	dept, err := s.departmentField(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.repo.Faculty.ListAll(ctx, 0)
	if err != nil {
		s.logger.Error("查询教师列表失败", zap.Error(err))
		return nil, err
	}
	opts := make([]filter.Option, 0, len(list))
	for _, f := range list {
		opts = append(opts, filter.Option{
			Value:   idValue(f.FacultyID),
			Label:   f.Name,
			Parents: map[string]string{"department_id": idValue(f.DepartmentID)},
		})
	}
	faculty := filter.Field{
		Key: "faculty_id", Label: "Faculty", Type: filter.TypeSelect,
		Placeholder: "Select faculty",
		Options:     opts,
		DependsOn:   []string{"department_id"},
	}
	return []filter.Field{dept, faculty, s.dayField()}, nil
}

func (s *filterService) formFields(ctx context.Context) ([]filter.Field, error) {
	class, err := s.classField(ctx, nil)
	if err != nil {
		return nil, err
	}
	section, err := s.sectionField(ctx)
	if err != nil {
		return nil, err
	}
	return []filter.Field{class, section}, nil
}

func (s *filterService) departmentField(ctx context.Context) (filter.Field, error) {
	list, err := s.repo.Department.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询院系列表失败", zap.Error(err))
		return filter.Field{}, err
	}
	opts := make([]filter.Option, 0, len(list))
	for _, d := range list {
		opts = append(opts, filter.Option{Value: idValue(d.DepartmentID), Label: d.Name})
	}
	return filter.Field{
		Key: "department_id", Label: "Department", Type: filter.TypeSelect,
		Placeholder: "All departments",
		Options:     opts,
	}, nil
}

// classField dependsOn 为空时班级为根字段（表单视图）
func (s *filterService) classField(ctx context.Context, dependsOn []string) (filter.Field, error) {
	list, err := s.repo.Class.ListAll(ctx, 0)
	if err != nil {
		s.logger.Error("查询班级列表失败", zap.Error(err))
		return filter.Field{}, err
	}
	opts := make([]filter.Option, 0, len(list))
	for _, c := range list {
		opts = append(opts, filter.Option{
			Value:   idValue(c.ClassID),
			Label:   c.Name,
			Parents: map[string]string{"department_id": idValue(c.DepartmentID)},
		})
	}
	return filter.Field{
		Key: "class_id", Label: "Class", Type: filter.TypeSelect,
		Placeholder: "Select class",
		Options:     opts,
		DependsOn:   dependsOn,
	}, nil
}

func (s *filterService) sectionField(ctx context.Context) (filter.Field, error) {
	list, err := s.repo.Section.ListAll(ctx, 0)
	if err != nil {
		s.logger.Error("查询分组列表失败", zap.Error(err))
		return filter.Field{}, err
	}
	opts := make([]filter.Option, 0, len(list))
	for _, sec := range list {
		label := sec.Name
		if sec.RoomNo != "" {
			label = fmt.Sprintf("%s (%s)", sec.Name, sec.RoomNo)
		}
		opts = append(opts, filter.Option{
			Value:   idValue(sec.SectionID),
			Label:   label,
			Parents: map[string]string{"class_id": idValue(sec.ClassID)},
		})
	}
	return filter.Field{
		Key: "section_id", Label: "Section", Type: filter.TypeSelect,
		Placeholder: "Select section",
		Options:     opts,
		DependsOn:   []string{"class_id"},
	}, nil
}

// dayField 默认值为当前时区的今天
func (s *filterService) dayField() filter.Field {
	opts := make([]filter.Option, 0, len(scheduling.Weekdays))
	for _, d := range scheduling.Weekdays {
		opts = append(opts, filter.Option{Value: d.String(), Label: d.String()})
	}
	today := s.now().In(s.location).Weekday()
	return filter.Field{
		Key: "day", Label: "Day", Type: filter.TypeSelect,
		Options: opts,
		Default: filter.Single(scheduling.FromTime(today).String()),
	}
}

func idValue(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
