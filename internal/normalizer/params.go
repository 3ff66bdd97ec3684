// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package normalizer

import (
	"encoding/json"
	"sort"
	"strings"
)

// ToolParamsInfo 由全部参数片段重新计算得到（非增量）。
type ToolParamsInfo struct {
	Raw     string `json:"raw,omitempty"`
	Parsed  any    `json:"parsed"`
	Summary string `json:"summary,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// paramsPriorityKeys 主字段候选，按固定优先级扫描，取第一个字符串值。
var paramsPriorityKeys = []string{"ques", "query", "question", "input", "prompt", "keywords", "text"}

// summarizeParams 拼接全部片段并压缩空白后做恢复解析，产出摘要与明细。
// 解析失败或结果不是键值对象时退化为原文截断。
func summarizeParams(st *ToolEventState) ToolParamsInfo {
	raw := collapseWhitespace(st.paramsText())
	if raw == "" {
		return ToolParamsInfo{}
	}
	info := ToolParamsInfo{Raw: raw}
	obj, ok := RecoverParse(raw).(map[string]any)
	if !ok {
		info.Summary = truncate(raw, 60)
		return info
	}
	info.Parsed = obj

	primaryKey := ""
	primary := ""
	found := false
	for _, k := range paramsPriorityKeys {
		if s, ok := obj[k].(string); ok {
			primaryKey, primary, found = k, s, true
			break
		}
	}

	// 非主字段按 key 排序，保证输出确定
	rest := make([]string, 0, len(obj))
	for k := range obj {
		if k != primaryKey {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)

	if found {
		var b strings.Builder
		b.WriteString("查询「")
		b.WriteString(truncate(primary, 24))
		b.WriteString("」")
		if len(rest) > 0 {
			pairs := make([]string, 0, len(rest))
			for _, k := range rest {
				pairs = append(pairs, k+"="+truncate(stringifyValue(obj[k]), 16))
			}
			b.WriteString(" ｜ ")
			b.WriteString(strings.Join(pairs, ", "))
		}
		info.Summary = b.String()
	} else {
		info.Summary = truncate(raw, 60)
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"："+truncate(stringifyValue(obj[k]), 40))
	}
	info.Detail = strings.Join(lines, "\n")
	return info
}

// stringifyValue 字符串原样返回，其余 JSON 序列化。
func stringifyValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// collapseWhitespace 将连续空白折叠为单个空格并去掉首尾空白。
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
