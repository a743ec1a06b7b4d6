package dto

import "edusync/backend/internal/filter"

// ── 级联筛选 DTO ──

// FilterChangeRequest 修改单个筛选字段
type FilterChangeRequest struct {
	Key   string       `json:"key"   binding:"required"`
	Value filter.Value `json:"value"`
	State filter.State `json:"state"` // 修改前的完整状态
}

// FilterResponse 一组筛选字段在某一状态下的完整视图
type FilterResponse struct {
	View   string             `json:"view"`
	Fields []filter.FieldView `json:"fields"`
	State  filter.State       `json:"state"`
}
