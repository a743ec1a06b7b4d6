package filter

import (
	"errors"
	"fmt"
	"time"
)

// ── 级联筛选解析器 ──────────────────────────────────────────
//
// 维护一组相互依赖的筛选字段（如 院系 → 班级 → 分组）：
//   - 依赖字段的选项 = 主列表中父属性与每个父字段当前值匹配的项
//   - 任一父字段未设置时，依赖字段禁用且选项为空
//   - 父字段取值变化时，按拓扑序清空其全部后代字段
//   - Reset 将所有字段恢复为声明的默认值，并只通知一次
// ─────────────────────────────────────────────────────────────

var (
	ErrUnknownField  = errors.New("筛选字段不存在")
	ErrFieldDisabled = errors.New("筛选字段已禁用：父字段未选择")
	ErrInvalidOption = errors.New("选项不在可选范围内")
	ErrInvalidValue  = errors.New("筛选取值格式无效")
	ErrDuplicateKey  = errors.New("筛选字段 key 重复")
)

// FieldType 字段类型
type FieldType string

const (
	TypeText        FieldType = "text"
	TypeDate        FieldType = "date"
	TypeSelect      FieldType = "select"
	TypeMultiSelect FieldType = "multiselect"
)

// Option 下拉选项；Parents 记录该选项在各父字段上的取值，用于级联过滤
type Option struct {
	Value   string            `json:"value"`
	Label   string            `json:"label"`
	Parents map[string]string `json:"-"`
}

// Field 筛选字段描述
type Field struct {
	Key         string    `json:"key"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Placeholder string    `json:"placeholder,omitempty"`
	Options     []Option  `json:"-"` // 主列表；依赖字段在解析时按父字段过滤
	DependsOn   []string  `json:"depends_on,omitempty"`
	Default     Value     `json:"default,omitempty"`
}

// Resolver 一组筛选字段的解析器（不可变，可并发复用）
type Resolver struct {
	fields []Field
	index  map[string]int
	graph  Graph

	// OnChange 每次 ApplyChange / Reset 后回调一次，传入新的完整 State
	OnChange func(State)
}

// NewResolver 校验字段定义并构建依赖图
func NewResolver(fields []Field) (*Resolver, error) {
	r := &Resolver{
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
		graph:  make(Graph, len(fields)),
	}
	copy(r.fields, fields)

	for i, f := range r.fields {
		if f.Key == "" {
			return nil, fmt.Errorf("第 %d 个筛选字段缺少 key", i)
		}
		if _, dup := r.index[f.Key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, f.Key)
		}
		r.index[f.Key] = i
		r.graph[f.Key] = append([]string(nil), f.DependsOn...)
	}
	if err := r.graph.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Fields 字段定义（按声明顺序）
func (r *Resolver) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Graph 依赖图副本
func (r *Resolver) Graph() Graph {
	g := make(Graph, len(r.graph))
	for k, v := range r.graph {
		g[k] = append([]string(nil), v...)
	}
	return g
}

// Initial 以 active 为基础补齐未出现字段的默认值（不覆盖已有取值）
func (r *Resolver) Initial(active State) State {
	st := active.Clone()
	for _, f := range r.fields {
		if _, ok := st[f.Key]; !ok {
			st[f.Key] = f.Default.clone()
		}
	}
	return st
}

// Disabled 任一父字段未设置即禁用
func (r *Resolver) Disabled(key string, state State) bool {
	for _, p := range r.graph[key] {
		if !state.Get(p).IsSet() {
			return true
		}
	}
	return false
}

// ResolveOptions 计算每个字段当前可选项；纯函数，不修改入参
func (r *Resolver) ResolveOptions(state State) map[string][]Option {
	out := make(map[string][]Option, len(r.fields))
	for _, f := range r.fields {
		out[f.Key] = r.optionsFor(f, state)
	}
	return out
}

func (r *Resolver) optionsFor(f Field, state State) []Option {
	parents := r.graph[f.Key]
	if len(parents) == 0 {
		opts := make([]Option, len(f.Options))
		copy(opts, f.Options)
		return opts
	}
	if r.Disabled(f.Key, state) {
		return []Option{}
	}

	opts := make([]Option, 0, len(f.Options))
	for _, o := range f.Options {
		if matchesParents(o, parents, state) {
			opts = append(opts, o)
		}
	}
	return opts
}

func matchesParents(o Option, parents []string, state State) bool {
	for _, p := range parents {
		attr, ok := o.Parents[p]
		if !ok || !state.Get(p).Contains(attr) {
			return false
		}
	}
	return true
}

// ApplyChange 设置字段取值并清空其全部后代字段；返回新 State
func (r *Resolver) ApplyChange(key string, value Value, state State) (State, error) {
	i, ok := r.index[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	f := r.fields[i]
	value = value.compact()

	if value.IsSet() {
		if err := r.checkValue(f, value, state); err != nil {
			return nil, err
		}
	}

	next := ApplyChange(key, value, state, r.graph)
	if r.OnChange != nil {
		r.OnChange(next.Clone())
	}
	return next, nil
}

func (r *Resolver) checkValue(f Field, value Value, state State) error {
	if r.Disabled(f.Key, state) {
		return fmt.Errorf("%w: %s", ErrFieldDisabled, f.Key)
	}

	switch f.Type {
	case TypeSelect, TypeMultiSelect:
		if f.Type == TypeSelect && len(value) > 1 {
			return fmt.Errorf("%w: %s 只能选择一个值", ErrInvalidValue, f.Key)
		}
		allowed := make(map[string]bool)
		for _, o := range r.optionsFor(f, state) {
			allowed[o.Value] = true
		}
		for _, v := range value {
			if !allowed[v] {
				return fmt.Errorf("%w: %s=%s", ErrInvalidOption, f.Key, v)
			}
		}
	case TypeDate:
		if len(value) > 1 {
			return fmt.Errorf("%w: %s 只能填写一个日期", ErrInvalidValue, f.Key)
		}
		if _, err := time.Parse("2006-01-02", value[0]); err != nil {
			return fmt.Errorf("%w: %s 应为 YYYY-MM-DD", ErrInvalidValue, f.Key)
		}
	default:
		if len(value) > 1 {
			return fmt.Errorf("%w: %s 只能填写一个值", ErrInvalidValue, f.Key)
		}
	}
	return nil
}

// Reset 所有字段恢复默认值（无默认值则为未设置），并通知一次
func (r *Resolver) Reset() State {
	st := make(State, len(r.fields))
	for _, f := range r.fields {
		st[f.Key] = f.Default.clone()
	}
	if r.OnChange != nil {
		r.OnChange(st.Clone())
	}
	return st
}

// Prune 清除 state 中已失效的取值（父字段变化后不再合法的子字段），按拓扑序传递
//
// 用于处理外部传入的 activeFilters（如 URL 查询参数），保证返回的 State 自洽。
func (r *Resolver) Prune(state State) State {
	st := r.Initial(state)
	order, _ := r.graph.TopoOrder()
	for _, key := range order {
		v := st.Get(key)
		if !v.IsSet() {
			continue
		}
		f := r.fields[r.index[key]]
		if err := r.checkValue(f, v, st); err != nil {
			st[key] = nil
		}
	}
	// 丢弃未声明的字段
	for k := range st {
		if _, ok := r.index[k]; !ok {
			delete(st, k)
		}
	}
	return st
}

// FieldView 字段在某一 State 下的完整视图（供 API 输出）
type FieldView struct {
	Field
	Options  []Option `json:"options"`
	Value    Value    `json:"value"`
	Disabled bool     `json:"disabled"`
}

// Views 按声明顺序输出每个字段的选项、取值与禁用状态
func (r *Resolver) Views(state State) []FieldView {
	options := r.ResolveOptions(state)
	views := make([]FieldView, 0, len(r.fields))
	for _, f := range r.fields {
		views = append(views, FieldView{
			Field:    f,
			Options:  options[f.Key],
			Value:    state.Get(f.Key).clone(),
			Disabled: r.Disabled(f.Key, state),
		})
	}
	return views
}
