package filter

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrCycle         = errors.New("筛选字段依赖存在环")
	ErrUnknownParent = errors.New("筛选字段依赖了不存在的字段")
)

// Graph 依赖图：字段 key → 其依赖的父字段 key 列表
type Graph map[string][]string

// Validate 校验所有父字段存在且无环
func (g Graph) Validate() error {
	_, err := g.TopoOrder()
	return err
}

// TopoOrder 按依赖拓扑排序（父在前、子在后）；同层按 key 字典序保证稳定
func (g Graph) TopoOrder() ([]string, error) {
	indegree := make(map[string]int, len(g))
	children := g.children()
	for key, parents := range g {
		if _, ok := indegree[key]; !ok {
			indegree[key] = 0
		}
		for _, p := range parents {
			if _, ok := g[p]; !ok {
				return nil, fmt.Errorf("%w: %s → %s", ErrUnknownParent, key, p)
			}
			indegree[key]++
		}
	}

	var ready []string
	for key, d := range indegree {
		if d == 0 {
			ready = append(ready, key)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g))
	for len(ready) > 0 {
		key := ready[0]
		ready = ready[1:]
		order = append(order, key)

		var next []string
		for _, c := range children[key] {
			indegree[c]--
			if indegree[c] == 0 {
				next = append(next, c)
			}
		}
		sort.Strings(next)
		ready = append(ready, next...)
		sort.Strings(ready)
	}

	if len(order) != len(indegree) {
		return nil, ErrCycle
	}
	return order, nil
}

// Descendants 返回 key 的全部后代（传递闭包），按拓扑序排列，不含 key 本身
func (g Graph) Descendants(key string) []string {
	children := g.children()
	seen := map[string]bool{key: true}
	queue := []string{key}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range children[cur] {
			if !seen[c] {
				seen[c] = true
				queue = append(queue, c)
			}
		}
	}
	delete(seen, key)

	order, err := g.TopoOrder()
	if err != nil {
		// 有环时退化为字典序
		out := make([]string, 0, len(seen))
		for k := range seen {
			out = append(out, k)
		}
		sort.Strings(out)
		return out
	}
	out := make([]string, 0, len(seen))
	for _, k := range order {
		if seen[k] {
			out = append(out, k)
		}
	}
	return out
}

func (g Graph) children() map[string][]string {
	children := make(map[string][]string)
	for key, parents := range g {
		for _, p := range parents {
			children[p] = append(children[p], key)
		}
	}
	for k := range children {
		sort.Strings(children[k])
	}
	return children
}

// ApplyChange 设置 state[key] = value，并清空 key 在依赖图中的全部后代。
//
// 取值未变化时不清空后代。返回新 State，入参不被修改。
func ApplyChange(key string, value Value, state State, graph Graph) State {
	next := state.Clone()
	if next.Get(key).Equal(value) {
		return next
	}
	next[key] = value.compact()
	for _, d := range graph.Descendants(key) {
		next[d] = nil
	}
	return next
}
