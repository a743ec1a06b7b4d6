package dto

import (
	"strings"
	"testing"

	"github.com/gin-gonic/gin/binding"
)

func TestRegisterValidators(t *testing.T) {
	// 重复调用返回同一结果
	for i := 0; i < 2; i++ {
		if err := RegisterValidators(); err != nil {
			t.Fatalf("第 %d 次注册失败: %v", i+1, err)
		}
	}

	ok := ScheduleRequest{
		CourseID: 1, FacultyID: 1, ClassID: 1, SectionID: 1,
		DayOfWeek: "Monday", StartTime: "09:00:00", EndTime: "10:30:00",
	}
	if err := binding.Validator.ValidateStruct(&ok); err != nil {
		t.Fatalf("合法请求不应校验失败: %v", err)
	}

	bad := ok
	bad.DayOfWeek = "Funday"
	bad.StartTime = "9am"
	err := binding.Validator.ValidateStruct(&bad)
	if err == nil {
		t.Fatal("非法星期与时间应校验失败")
	}
	details := ValidationDetails(err)
	if !strings.Contains(details, "day_of_week") || !strings.Contains(details, "start_time") {
		t.Errorf("错误明细应使用 json 字段名，实际 %q", details)
	}
}
