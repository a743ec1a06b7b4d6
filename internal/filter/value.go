package filter

import (
	"encoding/json"
	"strings"
)

// Value 字段取值；空切片表示未设置。单选字段最多一个元素，多选字段可多个。
//
// JSON 兼容两种写法："5" 或 ["5","7"]；空字符串与 null 均视为未设置。
type Value []string

// Single 便捷构造单值；空字符串返回未设置
func Single(v string) Value {
	if v == "" {
		return nil
	}
	return Value{v}
}

// IsSet 是否已设置
func (v Value) IsSet() bool {
	for _, s := range v {
		if s != "" {
			return true
		}
	}
	return false
}

// First 第一个值，未设置时返回空字符串
func (v Value) First() string {
	for _, s := range v {
		if s != "" {
			return s
		}
	}
	return ""
}

// Contains 是否包含指定值
func (v Value) Contains(s string) bool {
	for _, x := range v {
		if x == s {
			return true
		}
	}
	return false
}

// Equal 忽略空元素比较
func (v Value) Equal(o Value) bool {
	a, b := v.compact(), o.compact()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (v Value) compact() Value {
	out := make(Value, 0, len(v))
	for _, s := range v {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (v Value) clone() Value {
	if v == nil {
		return nil
	}
	return append(Value(nil), v...)
}

// String 逗号拼接，便于日志与查询参数
func (v Value) String() string {
	return strings.Join(v.compact(), ",")
}

// MarshalJSON 单值输出字符串，多值输出数组，未设置输出空字符串
func (v Value) MarshalJSON() ([]byte, error) {
	c := v.compact()
	switch len(c) {
	case 0:
		return []byte(`""`), nil
	case 1:
		return json.Marshal(c[0])
	default:
		return json.Marshal([]string(c))
	}
}

// UnmarshalJSON 接受字符串、数字、字符串数组或 null
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*v = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var arr []json.RawMessage
		if err := json.Unmarshal(data, &arr); err != nil {
			return err
		}
		out := make(Value, 0, len(arr))
		for _, raw := range arr {
			var one Value
			if err := one.UnmarshalJSON(raw); err != nil {
				return err
			}
			out = append(out, one...)
		}
		*v = out.compact()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// 前端可能直接传数字 ID
		var n json.Number
		if err2 := json.Unmarshal(data, &n); err2 != nil {
			return err
		}
		s = n.String()
	}
	*v = Single(s)
	return nil
}

// State 字段 key → 当前取值
type State map[string]Value

// Clone 深拷贝
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v.clone()
	}
	return out
}

// Get 读取字段值（不存在时为未设置）
func (s State) Get(key string) Value { return s[key] }
