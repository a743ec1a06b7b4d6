package database

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"edusync/backend/config"
	"edusync/backend/internal/model"
	"edusync/backend/internal/scheduling"
)

// ── 演示数据 ──

var seedDepartments = []model.Department{
	{DepartmentID: 1, Name: "Computer Science", Code: "CS"},
	{DepartmentID: 2, Name: "Electrical Engineering", Code: "EE"},
	{DepartmentID: 3, Name: "Business Administration", Code: "BA"},
	{DepartmentID: 4, Name: "Mathematics", Code: "MATH"},
	{DepartmentID: 5, Name: "Physics", Code: "PHYS"},
}

var seedClasses = []model.Class{
	{ClassID: 1, Name: "BS Computer Science", DepartmentID: 1},
	{ClassID: 2, Name: "BS Electrical Engineering", DepartmentID: 2},
	{ClassID: 3, Name: "BBA", DepartmentID: 3},
	{ClassID: 4, Name: "BS Mathematics", DepartmentID: 4},
	{ClassID: 5, Name: "BS Physics", DepartmentID: 5},
	{ClassID: 6, Name: "MS Computer Science", DepartmentID: 1},
	{ClassID: 7, Name: "MS Electrical Engineering", DepartmentID: 2},
}

var seedSections = []model.Section{
	{SectionID: 1, Name: "A", ClassID: 1, RoomNo: "R-101"},
	{SectionID: 2, Name: "B", ClassID: 1, RoomNo: "R-102"},
	{SectionID: 3, Name: "A", ClassID: 2, RoomNo: "R-201"},
	{SectionID: 4, Name: "A", ClassID: 3, RoomNo: "R-301"},
	{SectionID: 5, Name: "A", ClassID: 4, RoomNo: "R-401"},
	{SectionID: 6, Name: "A", ClassID: 5, RoomNo: "R-501"},
	{SectionID: 7, Name: "A", ClassID: 6, RoomNo: "R-601"},
	{SectionID: 8, Name: "A", ClassID: 7, RoomNo: "R-701"},
}

var seedFaculty = []model.Faculty{
	{FacultyID: 1, Name: "Dr. Asad Ali", Email: "asad.ali@faculty.edusync.com", DepartmentID: 1},
	{FacultyID: 2, Name: "Prof. Sana Khan", Email: "sana.khan@faculty.edusync.com", DepartmentID: 1},
	{FacultyID: 3, Name: "Dr. Imran Ahmed", Email: "imran.ahmed@faculty.edusync.com", DepartmentID: 2},
	{FacultyID: 4, Name: "Prof. Ayesha Tariq", Email: "ayesha.tariq@faculty.edusync.com", DepartmentID: 3},
	{FacultyID: 5, Name: "Dr. Bilal Hassan", Email: "bilal.hassan@faculty.edusync.com", DepartmentID: 4},
	{FacultyID: 6, Name: "Prof. Fatima Zia", Email: "fatima.zia@faculty.edusync.com", DepartmentID: 5},
	{FacultyID: 7, Name: "Dr. Hasan Raza", Email: "hasan.raza@faculty.edusync.com", DepartmentID: 1},
	{FacultyID: 8, Name: "Prof. Saima Khalid", Email: "saima.khalid@faculty.edusync.com", DepartmentID: 2},
}

var seedCourses = []model.Course{
	{CourseID: 1, Name: "Introduction to Programming", CourseCode: "CS101", DepartmentID: 1, CreditHours: 3},
	{CourseID: 2, Name: "Data Structures", CourseCode: "CS201", DepartmentID: 1, CreditHours: 4},
	{CourseID: 3, Name: "Algorithms", CourseCode: "CS301", DepartmentID: 1, CreditHours: 3},
	{CourseID: 4, Name: "Database Systems", CourseCode: "CS401", DepartmentID: 1, CreditHours: 3},
	{CourseID: 5, Name: "Electric Circuits", CourseCode: "EE101", DepartmentID: 2, CreditHours: 4},
	{CourseID: 6, Name: "Signals and Systems", CourseCode: "EE201", DepartmentID: 2, CreditHours: 3},
	{CourseID: 7, Name: "Principles of Management", CourseCode: "BA101", DepartmentID: 3, CreditHours: 3},
	{CourseID: 8, Name: "Financial Accounting", CourseCode: "BA201", DepartmentID: 3, CreditHours: 3},
	{CourseID: 9, Name: "Calculus I", CourseCode: "MATH101", DepartmentID: 4, CreditHours: 3},
	{CourseID: 10, Name: "Linear Algebra", CourseCode: "MATH201", DepartmentID: 4, CreditHours: 3},
	{CourseID: 11, Name: "Mechanics", CourseCode: "PHYS101", DepartmentID: 5, CreditHours: 4},
	{CourseID: 12, Name: "Electromagnetism", CourseCode: "PHYS201", DepartmentID: 5, CreditHours: 4},
}

func seedSchedule(id, course, faculty, class, section uint, day scheduling.Weekday, start, end string) model.ClassSchedule {
	return model.ClassSchedule{
		ClassScheduleID: id, CourseID: course, FacultyID: faculty, ClassID: class, SectionID: section,
		DayOfWeek: day, StartTime: start, EndTime: end,
		VersionedModel: model.VersionedModel{Version: 1},
	}
}

var seedSchedules = []model.ClassSchedule{
	seedSchedule(1, 1, 1, 1, 1, scheduling.Monday, "09:00:00", "10:30:00"),
	seedSchedule(2, 1, 1, 1, 1, scheduling.Wednesday, "09:00:00", "10:30:00"),
	seedSchedule(3, 2, 2, 1, 1, scheduling.Tuesday, "11:00:00", "12:30:00"),
	seedSchedule(4, 2, 2, 1, 1, scheduling.Thursday, "11:00:00", "12:30:00"),
	seedSchedule(5, 5, 3, 2, 3, scheduling.Monday, "14:00:00", "15:30:00"),
	seedSchedule(6, 6, 3, 2, 3, scheduling.Wednesday, "14:00:00", "15:30:00"),
	seedSchedule(7, 7, 4, 3, 4, scheduling.Tuesday, "09:00:00", "10:30:00"),
	seedSchedule(8, 9, 5, 4, 5, scheduling.Thursday, "09:00:00", "10:30:00"),
	seedSchedule(9, 11, 6, 5, 6, scheduling.Friday, "11:00:00", "12:30:00"),
}

// Seed 空库时写入院系、班级、分组、教师、课程与排课演示数据
// 已有院系数据时跳过，可重复调用
func Seed(db *gorm.DB, driver string, logger *zap.Logger) error {
	var count int64
	if err := db.Model(&model.Department{}).Count(&count).Error; err != nil {
		return fmt.Errorf("检查演示数据失败: %w", err)
	}
	if count > 0 {
		logger.Info("数据库已有数据，跳过演示数据写入")
		return nil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			table string
			rows  interface{}
		}{
			{"departments", &seedDepartments},
			{"classes", &seedClasses},
			{"sections", &seedSections},
			{"faculty", &seedFaculty},
			{"courses", &seedCourses},
			{"class_schedules", &seedSchedules},
		}
		for _, s := range steps {
			if err := tx.Create(s.rows).Error; err != nil {
				return fmt.Errorf("写入 %s 失败: %w", s.table, err)
			}
			if driver == "postgres" {
				// 显式指定了主键，需要同步自增序列
				if err := tx.Exec(fmt.Sprintf(
					"SELECT setval(pg_get_serial_sequence('%s', 'id'), (SELECT MAX(id) FROM %s))", s.table, s.table,
				)).Error; err != nil {
					return fmt.Errorf("同步 %s 序列失败: %w", s.table, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("演示数据写入完成",
		zap.Int("departments", len(seedDepartments)),
		zap.Int("schedules", len(seedSchedules)),
	)
	return nil
}

// EnsureAdmin 不存在同邮箱账号时创建初始管理员；未配置邮箱或密码时跳过
func EnsureAdmin(db *gorm.DB, cfg *config.AdminConfig, logger *zap.Logger) error {
	if cfg.Email == "" || cfg.Password == "" {
		return nil
	}

	var count int64
	if err := db.Model(&model.User{}).Where("email = ?", cfg.Email).Count(&count).Error; err != nil {
		return fmt.Errorf("检查管理员账号失败: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("密码加密失败: %w", err)
	}

	name := cfg.Name
	if name == "" {
		name = "Admin User"
	}
	admin := &model.User{
		Name:         name,
		Email:        cfg.Email,
		PasswordHash: string(hash),
		Role:         "admin",
		IsActive:     true,
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("创建管理员账号失败: %w", err)
	}

	logger.Info("已创建初始管理员账号", zap.String("email", cfg.Email))
	return nil
}
