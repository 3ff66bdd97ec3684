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
	"strings"
)

// RecoverParse 对可能被截断的 JSON 文本做尽力解析。
//
// 流式工具参数经常在对象中途被 flush，这里按固定顺序尝试几种机械修复：
// 原文、去首尾空白、去掉末尾逗号、补右花括号、补右方括号（括号修复基于
// 去掉逗号之后的文本，`{"a":1,` 才能修成 `{"a":1}`）。第一个能解析的候选
// 即为结果；全部失败返回 nil，从不 panic。
func RecoverParse(v any) any {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	candidates := make([]string, 0, 4)
	candidates = append(candidates, s)
	t := strings.TrimSpace(s)
	if t != s {
		candidates = append(candidates, t)
	}
	if strings.HasSuffix(t, ",") {
		t = strings.TrimSuffix(t, ",")
		candidates = append(candidates, t)
	}
	if strings.HasPrefix(t, "{") && !strings.HasSuffix(t, "}") {
		candidates = append(candidates, t+"}")
	}
	if strings.HasPrefix(t, "[") && !strings.HasSuffix(t, "]") {
		candidates = append(candidates, t+"]")
	}
	for _, c := range candidates {
		var out any
		if err := json.Unmarshal([]byte(c), &out); err == nil {
			return out
		}
	}
	return nil
}
