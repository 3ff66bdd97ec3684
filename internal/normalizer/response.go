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
	"fmt"
	"strings"
)

// ToolResponseInfo 工具完成时对响应做一次性分类的结果。
type ToolResponseInfo struct {
	Summary string `json:"summary,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Payload any    `json:"payload,omitempty"`
	IsError bool   `json:"isError"`
}

// responseClass 响应形态，先分类再渲染，每种形态一个渲染分支。
type responseClass int

const (
	respEmpty    responseClass = iota // 无响应
	respPlain                         // 非对象，直接展示原文
	respError                         // 提供方标记的失败
	respDataset                       // 文本块中含知识库命中
	respText                          // 普通文本块
	respFallback                      // 对象但无文本块，只能从字段里捞
)

// classifiedResponse 分类结果与渲染所需的中间量。
type classifiedResponse struct {
	class      responseClass
	rawText    string
	obj        map[string]any
	textBlocks []string
	dataset    *Dataset
}

// analyzeResponse 对工具响应做一次分类 + 渲染；任何输入都不会失败。
func analyzeResponse(raw any) ToolResponseInfo {
	c := classifyResponse(raw)
	switch c.class {
	case respEmpty:
		return ToolResponseInfo{}
	case respPlain:
		return ToolResponseInfo{Summary: truncate(c.rawText, 100)}
	case respError:
		return renderErrorResponse(c.obj)
	case respDataset:
		return renderDatasetResponse(c.obj, c.dataset)
	case respText:
		return renderTextResponse(c.textBlocks)
	default:
		return renderFallbackResponse(c.obj, c.rawText)
	}
}

// classifyResponse 按固定顺序判定响应形态，第一个命中即返回。
func classifyResponse(raw any) classifiedResponse {
	if isFalsy(raw) {
		return classifiedResponse{class: respEmpty}
	}

	var value any
	var rawText string
	if s, ok := raw.(string); ok {
		rawText = s
		value = RecoverParse(s)
	} else {
		value = raw
		if b, err := json.Marshal(raw); err == nil {
			rawText = string(b)
		}
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return classifiedResponse{class: respPlain, rawText: rawText}
	}

	if isTruthy(obj["isError"]) {
		return classifiedResponse{class: respError, obj: obj}
	}

	blocks := contentTextBlocks(obj)
	if ds := extractDataset(blocks); ds != nil {
		return classifiedResponse{class: respDataset, obj: obj, dataset: ds}
	}
	if len(blocks) > 0 {
		return classifiedResponse{class: respText, obj: obj, textBlocks: blocks}
	}
	return classifiedResponse{class: respFallback, obj: obj, rawText: rawText}
}

// contentTextBlocks 收集 content 数组中 type=="text" 条目的文本。
func contentTextBlocks(obj map[string]any) []string {
	entries, ok := obj["content"].([]any)
	if !ok {
		return nil
	}
	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		if t, _ := m["type"].(string); t != "text" {
			continue
		}
		if text, ok := m["text"].(string); ok && text != "" {
			blocks = append(blocks, text)
		}
	}
	return blocks
}

func renderErrorResponse(obj map[string]any) ToolResponseInfo {
	info := ToolResponseInfo{IsError: true}
	info.Summary = firstStringField(obj, "errorMessage", "message")
	if info.Summary == "" {
		info.Summary = "工具调用失败"
	}
	if stack, ok := obj["stack"].(string); ok {
		info.Detail = stack
	}
	return info
}

func renderDatasetResponse(obj map[string]any, ds *Dataset) ToolResponseInfo {
	info := ToolResponseInfo{}
	summary := fmt.Sprintf("命中 %d 条知识库内容", len(ds.Items))
	if len(ds.Items) > 0 {
		title, source := datasetItemFields(ds.Items[0])
		if title != "" {
			summary += "，示例：" + truncate(title, 24)
		}
		if source != "" {
			summary += "，来源：" + truncate(source, 24)
		}
	}
	info.Summary = summary

	lines := make([]string, 0, 3)
	for i, item := range ds.Items {
		if i >= 3 {
			break
		}
		title, source := datasetItemFields(item)
		line := fmt.Sprintf("%d. %s", i+1, truncate(title, 40))
		if source != "" {
			line += "（" + truncate(source, 20) + "）"
		}
		lines = append(lines, line)
	}
	info.Detail = strings.Join(lines, "\n")

	// payload 带上前 5 条预览，原对象不改动
	preview := ds.Items
	if len(preview) > 5 {
		preview = preview[:5]
	}
	payload := make(map[string]any, len(obj)+1)
	for k, v := range obj {
		payload[k] = v
	}
	payload["preview"] = preview
	info.Payload = payload
	return info
}

func renderTextResponse(blocks []string) ToolResponseInfo {
	info := ToolResponseInfo{Summary: truncate(blocks[0], 100)}
	lines := make([]string, 0, 2)
	for _, b := range blocks[1:] {
		if len(lines) >= 2 {
			break
		}
		lines = append(lines, truncate(b, 80))
	}
	info.Detail = strings.Join(lines, "\n")
	return info
}

func renderFallbackResponse(obj map[string]any, rawText string) ToolResponseInfo {
	if s := firstStringField(obj, "result", "message", "summary"); s != "" {
		return ToolResponseInfo{Summary: truncate(s, 100)}
	}
	return ToolResponseInfo{Summary: truncate(rawText, 100)}
}

// datasetItemFields 取命中条目的标题与来源字段。
func datasetItemFields(item any) (title, source string) {
	m, ok := item.(map[string]any)
	if !ok {
		return "", ""
	}
	title = firstStringField(m, "title", "q")
	source = firstStringField(m, "sourceName", "source")
	return title, source
}

// firstStringField 按给定顺序返回第一个非空字符串字段。
func firstStringField(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// isFalsy 判定"无响应"：nil、空串、false、0。
func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	}
	return false
}

// isTruthy isFalsy 的否命题，用于提供方自报的 isError 标记。
func isTruthy(v any) bool {
	return v != nil && !isFalsy(v)
}
