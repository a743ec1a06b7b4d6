package service

import (
	"context"
	"sort"
	"sync"

	"gorm.io/gorm"

	"edusync/backend/internal/model"
	"edusync/backend/internal/repository"
	"edusync/backend/internal/scheduling"
	pkgerrors "edusync/backend/pkg/errors"
)

// ── 测试数据 ──
//
// 院系 1: 班级 1（分组 1、2）、班级 2（分组 3）；教师 1、2；课程 1
// 院系 2: 班级 3（分组 4）；教师 3；课程 2

func newTestRepository() (*repository.Repository, *mockClassScheduleRepo, *mockUserRepo) {
	schedules := newMockClassScheduleRepo()
	users := newMockUserRepo()
	return &repository.Repository{
		User: users,
		Department: &mockDepartmentRepo{
			items: []model.Department{
				{DepartmentID: 1, Name: "Computer Science", Code: "CS"},
				{DepartmentID: 2, Name: "Mathematics", Code: "MATH"},
			},
			refs: map[uint]int64{1: 5, 2: 3},
		},
		Class: &mockClassRepo{items: []model.Class{
			{ClassID: 1, Name: "CS 1st Year", DepartmentID: 1},
			{ClassID: 2, Name: "CS 2nd Year", DepartmentID: 1},
			{ClassID: 3, Name: "Math 1st Year", DepartmentID: 2},
		}},
		Section: &mockSectionRepo{items: []model.Section{
			{SectionID: 1, Name: "A", ClassID: 1, RoomNo: "R101"},
			{SectionID: 2, Name: "B", ClassID: 1, RoomNo: "R102"},
			{SectionID: 3, Name: "A", ClassID: 2},
			{SectionID: 4, Name: "A", ClassID: 3, RoomNo: "M201"},
		}},
		Faculty: &mockFacultyRepo{items: []model.Faculty{
			{FacultyID: 1, Name: "Dr. Smith", Email: "smith@example.edu", DepartmentID: 1},
			{FacultyID: 2, Name: "Dr. Jones", Email: "jones@example.edu", DepartmentID: 1},
			{FacultyID: 3, Name: "Dr. Brown", Email: "brown@example.edu", DepartmentID: 2},
		}},
		Course: &mockCourseRepo{items: []model.Course{
			{CourseID: 1, Name: "Data Structures", CourseCode: "CS201", DepartmentID: 1},
			{CourseID: 2, Name: "Linear Algebra", CourseCode: "MA101", DepartmentID: 2},
		}},
		Student:       &mockStudentRepo{},
		LeaveRequest:  &mockLeaveRepo{},
		ClassSchedule: schedules,
		Attendance:    &mockAttendanceRepo{},
		Invoice:       &mockInvoiceRepo{},
		Event:         &mockEventRepo{},
		Message:       &mockMessageRepo{},
		Analytics:     &mockAnalyticsRepo{},
	}, schedules, users
}

// ── Mock DepartmentRepository ──

type mockDepartmentRepo struct {
	items []model.Department
	refs  map[uint]int64 // 院系 ID -> 引用数
	err   error
}

func (m *mockDepartmentRepo) Create(_ context.Context, d *model.Department) error {
	var maxID uint
	for _, it := range m.items {
		if it.DepartmentID > maxID {
			maxID = it.DepartmentID
		}
	}
	d.DepartmentID = maxID + 1
	m.items = append(m.items, *d)
	return nil
}

func (m *mockDepartmentRepo) GetByCode(_ context.Context, code string) (*model.Department, error) {
	for i := range m.items {
		if m.items[i].Code == code {
			d := m.items[i]
			return &d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDepartmentRepo) Update(_ context.Context, d *model.Department) error {
	for i := range m.items {
		if m.items[i].DepartmentID == d.DepartmentID {
			m.items[i] = *d
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockDepartmentRepo) Delete(_ context.Context, id uint) error {
	for i := range m.items {
		if m.items[i].DepartmentID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockDepartmentRepo) CountReferences(_ context.Context, id uint) (int64, error) {
	return m.refs[id], nil
}

func (m *mockDepartmentRepo) GetByID(_ context.Context, id uint) (*model.Department, error) {
	for i := range m.items {
		if m.items[i].DepartmentID == id {
			d := m.items[i]
			return &d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDepartmentRepo) ListAll(_ context.Context) ([]model.Department, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]model.Department(nil), m.items...), nil
}

// ── Mock ClassRepository / SectionRepository ──

type mockClassRepo struct {
	items []model.Class
}

func (m *mockClassRepo) GetByID(_ context.Context, id uint) (*model.Class, error) {
	for i := range m.items {
		if m.items[i].ClassID == id {
			c := m.items[i]
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) ListAll(_ context.Context, departmentID uint) ([]model.Class, error) {
	var result []model.Class
	for _, c := range m.items {
		if departmentID == 0 || c.DepartmentID == departmentID {
			result = append(result, c)
		}
	}
	return result, nil
}

type mockSectionRepo struct {
	items []model.Section
}

func (m *mockSectionRepo) GetByID(_ context.Context, id uint) (*model.Section, error) {
	for i := range m.items {
		if m.items[i].SectionID == id {
			s := m.items[i]
			return &s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSectionRepo) ListAll(_ context.Context, classID uint) ([]model.Section, error) {
	var result []model.Section
	for _, s := range m.items {
		if classID == 0 || s.ClassID == classID {
			result = append(result, s)
		}
	}
	return result, nil
}

// ── Mock FacultyRepository / CourseRepository ──

type mockFacultyRepo struct {
	items []model.Faculty
}

func (m *mockFacultyRepo) Create(_ context.Context, f *model.Faculty) error {
	var maxID uint
	for _, it := range m.items {
		if it.FacultyID > maxID {
			maxID = it.FacultyID
		}
	}
	f.FacultyID = maxID + 1
	m.items = append(m.items, *f)
	return nil
}

func (m *mockFacultyRepo) GetByEmail(_ context.Context, email string) (*model.Faculty, error) {
	for i := range m.items {
		if m.items[i].Email == email {
			f := m.items[i]
			return &f, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// List 搜索条件不参与 mock 过滤
func (m *mockFacultyRepo) List(ctx context.Context, f repository.PersonFilter) ([]model.Faculty, error) {
	return m.ListAll(ctx, f.DepartmentID)
}

func (m *mockFacultyRepo) Update(_ context.Context, f *model.Faculty) error {
	for i := range m.items {
		if m.items[i].FacultyID == f.FacultyID {
			m.items[i] = *f
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockFacultyRepo) Delete(_ context.Context, id uint) error {
	for i := range m.items {
		if m.items[i].FacultyID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockFacultyRepo) GetByID(_ context.Context, id uint) (*model.Faculty, error) {
	for i := range m.items {
		if m.items[i].FacultyID == id {
			f := m.items[i]
			return &f, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFacultyRepo) ListAll(_ context.Context, departmentID uint) ([]model.Faculty, error) {
	var result []model.Faculty
	for _, f := range m.items {
		if departmentID == 0 || f.DepartmentID == departmentID {
			result = append(result, f)
		}
	}
	return result, nil
}

type mockCourseRepo struct {
	items []model.Course
}

func (m *mockCourseRepo) Create(_ context.Context, c *model.Course) error {
	var maxID uint
	for _, it := range m.items {
		if it.CourseID > maxID {
			maxID = it.CourseID
		}
	}
	c.CourseID = maxID + 1
	m.items = append(m.items, *c)
	return nil
}

func (m *mockCourseRepo) GetByCode(_ context.Context, code string) (*model.Course, error) {
	for i := range m.items {
		if m.items[i].CourseCode == code {
			c := m.items[i]
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// List 搜索条件不参与 mock 过滤
func (m *mockCourseRepo) List(_ context.Context, f repository.CourseFilter) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.items {
		if f.DepartmentID != 0 && c.DepartmentID != f.DepartmentID {
			continue
		}
		if f.CreditHours != 0 && c.CreditHours != f.CreditHours {
			continue
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CourseCode < result[j].CourseCode })
	return result, nil
}

func (m *mockCourseRepo) Update(_ context.Context, c *model.Course) error {
	for i := range m.items {
		if m.items[i].CourseID == c.CourseID {
			m.items[i] = *c
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) Delete(_ context.Context, id uint) error {
	for i := range m.items {
		if m.items[i].CourseID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) GetByID(_ context.Context, id uint) (*model.Course, error) {
	for i := range m.items {
		if m.items[i].CourseID == id {
			c := m.items[i]
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) ListAll(_ context.Context, departmentID uint) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.items {
		if departmentID == 0 || c.DepartmentID == departmentID {
			result = append(result, c)
		}
	}
	return result, nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	mu     sync.Mutex
	users  map[uint]*model.User
	nextID uint
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uint]*model.User), nextID: 1}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.UserID == 0 {
		user.UserID = m.nextID
		m.nextID++
	}
	u := *user
	m.users[user.UserID] = &u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uint) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock ClassScheduleRepository ──

type mockClassScheduleRepo struct {
	mu     sync.Mutex
	items  map[uint]*model.ClassSchedule
	nextID uint

	// createErr 非空时 Create 直接返回该错误（模拟存储层约束）
	createErr error
}

func newMockClassScheduleRepo() *mockClassScheduleRepo {
	return &mockClassScheduleRepo{items: make(map[uint]*model.ClassSchedule), nextID: 1}
}

// seed 直接写入一条记录，返回其 ID
func (m *mockClassScheduleRepo) seed(courseID, facultyID, classID, sectionID uint, day scheduling.Weekday, start, end string) uint {
	s := &model.ClassSchedule{
		CourseID: courseID, FacultyID: facultyID, ClassID: classID, SectionID: sectionID,
		DayOfWeek: day, StartTime: start, EndTime: end,
	}
	_ = m.Create(context.Background(), s)
	return s.ClassScheduleID
}

func (m *mockClassScheduleRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *mockClassScheduleRepo) Create(_ context.Context, s *model.ClassSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	s.ClassScheduleID = m.nextID
	m.nextID++
	if s.Version == 0 {
		s.Version = 1
	}
	c := *s
	m.items[s.ClassScheduleID] = &c
	return nil
}

func (m *mockClassScheduleRepo) GetByID(_ context.Context, id uint) (*model.ClassSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.items[id]; ok {
		c := *s
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassScheduleRepo) List(ctx context.Context, f repository.ScheduleFilter, offset, limit int) ([]model.ClassSchedule, int64, error) {
	all, _ := m.ListAll(ctx, f)
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ListAll 院系条件不参与 mock 过滤
func (m *mockClassScheduleRepo) ListAll(_ context.Context, f repository.ScheduleFilter) ([]model.ClassSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.ClassSchedule
	for _, s := range m.items {
		if f.ClassID != 0 && s.ClassID != f.ClassID {
			continue
		}
		if f.SectionID != 0 && s.SectionID != f.SectionID {
			continue
		}
		if f.FacultyID != 0 && s.FacultyID != f.FacultyID {
			continue
		}
		if f.CourseID != 0 && s.CourseID != f.CourseID {
			continue
		}
		if f.Day != 0 && s.DayOfWeek != f.Day {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek < b.DayOfWeek
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ClassScheduleID < b.ClassScheduleID
	})
	return result, nil
}

func (m *mockClassScheduleRepo) Count(ctx context.Context, f repository.ScheduleFilter) (int64, error) {
	all, _ := m.ListAll(ctx, f)
	return int64(len(all)), nil
}

func (m *mockClassScheduleRepo) ListForSlot(_ context.Context, day scheduling.Weekday, facultyID, sectionID uint) ([]model.ClassSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.ClassSchedule
	for _, s := range m.items {
		if s.DayOfWeek == day && (s.FacultyID == facultyID || s.SectionID == sectionID) {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ClassScheduleID < result[j].ClassScheduleID })
	return result, nil
}

func (m *mockClassScheduleRepo) Update(_ context.Context, s *model.ClassSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.items[s.ClassScheduleID]
	if !ok || cur.Version != s.Version {
		return pkgerrors.ErrOptimisticLock
	}
	s.Version++
	s.CreatedBy = cur.CreatedBy
	c := *s
	m.items[s.ClassScheduleID] = &c
	return nil
}

func (m *mockClassScheduleRepo) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.items, id)
	return nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	items []model.Student
}

func (m *mockStudentRepo) Create(_ context.Context, st *model.Student) error {
	st.StudentID = uint(len(m.items) + 1)
	m.items = append(m.items, *st)
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id uint) (*model.Student, error) {
	for i := range m.items {
		if m.items[i].StudentID == id {
			st := m.items[i]
			return &st, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByEmail(_ context.Context, email string) (*model.Student, error) {
	for i := range m.items {
		if m.items[i].Email == email {
			st := m.items[i]
			return &st, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// List 搜索条件不参与 mock 过滤
func (m *mockStudentRepo) List(_ context.Context, f repository.PersonFilter) ([]model.Student, error) {
	var result []model.Student
	for _, st := range m.items {
		if f.DepartmentID != 0 && st.DepartmentID != f.DepartmentID {
			continue
		}
		if f.ClassID != 0 && st.ClassID != f.ClassID {
			continue
		}
		if f.SectionID != 0 && st.SectionID != f.SectionID {
			continue
		}
		result = append(result, st)
	}
	return result, nil
}

func (m *mockStudentRepo) Update(_ context.Context, st *model.Student) error {
	for i := range m.items {
		if m.items[i].StudentID == st.StudentID {
			m.items[i] = *st
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) Delete(_ context.Context, id uint) error {
	for i := range m.items {
		if m.items[i].StudentID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Mock LeaveRequestRepository ──

type mockLeaveRepo struct {
	items []model.LeaveRequest
}

func (m *mockLeaveRepo) Create(_ context.Context, l *model.LeaveRequest) error {
	l.LeaveRequestID = uint(len(m.items) + 1)
	if l.Status == "" {
		l.Status = model.LeaveStatusPending
	}
	m.items = append(m.items, *l)
	return nil
}

func (m *mockLeaveRepo) GetByID(_ context.Context, id uint) (*model.LeaveRequest, error) {
	for i := range m.items {
		if m.items[i].LeaveRequestID == id {
			l := m.items[i]
			return &l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLeaveRepo) List(_ context.Context, f repository.LeaveFilter) ([]model.LeaveRequest, error) {
	var result []model.LeaveRequest
	for _, l := range m.items {
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		if f.DepartmentID != 0 && l.DepartmentID != f.DepartmentID {
			continue
		}
		if f.FacultyID != 0 && l.FacultyID != f.FacultyID {
			continue
		}
		if f.CourseID != 0 && l.CourseID != f.CourseID {
			continue
		}
		if f.DateFrom != "" && l.LeaveDate < f.DateFrom {
			continue
		}
		if f.DateTo != "" && l.LeaveDate > f.DateTo {
			continue
		}
		result = append(result, l)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Status != result[j].Status {
			return result[i].Status < result[j].Status
		}
		return result[i].LeaveDate < result[j].LeaveDate
	})
	return result, nil
}

func (m *mockLeaveRepo) Count(ctx context.Context, f repository.LeaveFilter) (int64, error) {
	list, _ := m.List(ctx, f)
	return int64(len(list)), nil
}

func (m *mockLeaveRepo) UpdateStatus(_ context.Context, id uint, from, to string, callerID uint) error {
	for i := range m.items {
		if m.items[i].LeaveRequestID == id && m.items[i].Status == from {
			m.items[i].Status = to
			m.items[i].UpdatedBy = &callerID
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}
