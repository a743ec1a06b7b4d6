package service

import (
	"context"
	"fmt"

	"edusync/backend/internal/model"
	"edusync/backend/internal/repository"
)

// nameCache 单次请求内缓存人员姓名与课程代码，查不到时返回占位名
type nameCache struct {
	repo    *repository.Repository
	parties map[string]string
	courses map[uint]string
}

func newNameCache(repo *repository.Repository) *nameCache {
	return &nameCache{
		repo:    repo,
		parties: make(map[string]string),
		courses: make(map[uint]string),
	}
}

func (c *nameCache) party(ctx context.Context, partyType string, id uint) string {
	key := fmt.Sprintf("%s:%d", partyType, id)
	if name, ok := c.parties[key]; ok {
		return name
	}

	name := ""
	switch partyType {
	case model.PartyStudent:
		if st, err := c.repo.Student.GetByID(ctx, id); err == nil {
			name = st.Name
		}
	case model.PartyFaculty:
		if f, err := c.repo.Faculty.GetByID(ctx, id); err == nil {
			name = f.Name
		}
	case model.PartyAdmin:
		if u, err := c.repo.User.GetByID(ctx, id); err == nil {
			name = u.Name
		}
	}
	if name == "" {
		name = "未知用户"
	}
	c.parties[key] = name
	return name
}

func (c *nameCache) courseCode(ctx context.Context, id uint) string {
	if code, ok := c.courses[id]; ok {
		return code
	}
	code := ""
	if course, err := c.repo.Course.GetByID(ctx, id); err == nil {
		code = course.CourseCode
	}
	c.courses[id] = code
	return code
}
