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

import "fmt"

// eventMeta 某个事件种类的展示元数据。summarize 为 nil 时走兜底摘要。
type eventMeta struct {
	label     string
	level     Level
	summarize func(payload any) string
}

// metadataFor 事件种类 → 展示元数据；kindUnknown 返回 false。
func metadataFor(kind eventKind) (eventMeta, bool) {
	switch kind {
	case kindError:
		return eventMeta{"执行出错", LevelError, errorSummary}, true
	case kindFlowStart:
		return eventMeta{"开始处理", LevelInfo, nil}, true
	case kindFlowEnd:
		return eventMeta{"处理完成", LevelSuccess, nil}, true
	case kindNodeStart:
		return eventMeta{"节点运行", LevelInfo, nodeSummary}, true
	case kindNodeEnd:
		return eventMeta{"节点完成", LevelInfo, nodeSummary}, true
	case kindDatasetQuote:
		return eventMeta{"知识库引用", LevelInfo, quoteSummary}, true
	case kindInteractive:
		return eventMeta{"等待输入", LevelInfo, nil}, true
	case kindVariables:
		return eventMeta{"变量更新", LevelInfo, nil}, true
	case kindUsage:
		return eventMeta{"用量统计", LevelInfo, usageSummary}, true
	}
	return eventMeta{}, false
}

// errorSummary 提供方错误字段优先，缺失时退回兜底摘要。
func errorSummary(payload any) string {
	if obj, ok := payload.(map[string]any); ok {
		if s := firstStringField(obj, "errorMessage", "message", "error", "detail", "description"); s != "" {
			return truncate(s, 120)
		}
	}
	return fallbackSummary(payload)
}

// nodeSummary 节点名
func nodeSummary(payload any) string {
	if obj, ok := payload.(map[string]any); ok {
		if s := firstStringField(obj, "name", "moduleName"); s != "" {
			return truncate(s, 40)
		}
	}
	return ""
}

// quoteSummary 引用条数；payload 可能直接是数组，也可能挂在 quoteList 下。
func quoteSummary(payload any) string {
	if items, ok := payload.([]any); ok {
		return fmt.Sprintf("引用 %d 条内容", len(items))
	}
	if obj, ok := payload.(map[string]any); ok {
		if items, ok := obj["quoteList"].([]any); ok {
			return fmt.Sprintf("引用 %d 条内容", len(items))
		}
	}
	return ""
}

// usageSummary token 用量
func usageSummary(payload any) string {
	obj, ok := payload.(map[string]any)
	if !ok {
		return ""
	}
	for _, k := range []string{"totalTokens", "tokens"} {
		if n, ok := obj[k].(float64); ok {
			return fmt.Sprintf("消耗 %d tokens", int64(n))
		}
	}
	return ""
}
