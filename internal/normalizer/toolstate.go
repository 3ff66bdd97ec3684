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

import "strings"

// ToolEventState 单个工具调用在流内的累积状态。
// paramsChunks 只追加、保持到达顺序，拼接顺序决定最终参数串。
type ToolEventState struct {
	ID           string
	ToolName     string
	FunctionName string

	paramsChunks []string
}

// appendParams 追加一段参数片段，空片段不记录。
func (st *ToolEventState) appendParams(fragment string) {
	if fragment == "" {
		return
	}
	st.paramsChunks = append(st.paramsChunks, fragment)
}

// paramsText 返回全部片段的原始拼接。
func (st *ToolEventState) paramsText() string {
	return strings.Join(st.paramsChunks, "")
}

// Label 展示名：toolName → functionName → 通用文案。
func (st *ToolEventState) Label() string {
	if st.ToolName != "" {
		return st.ToolName
	}
	if st.FunctionName != "" {
		return st.FunctionName
	}
	return "工具调用"
}
