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

// eventKind 已知事件种类。同义事件名在 kindOf 中折叠到同一种类，
// 每个同义词只出现在一个 case 里，冲突在编译期即可见。
type eventKind int

const (
	kindUnknown eventKind = iota
	kindError
	kindFlowStart
	kindFlowEnd
	kindNodeStart
	kindNodeEnd
	kindDatasetQuote
	kindInteractive
	kindVariables
	kindUsage
)

// kindOf 规范 key → 事件种类。未收录的 key 返回 kindUnknown。
func kindOf(key string) eventKind {
	switch key {
	case "error", "err", "flowerror", "workflowerror":
		return kindError
	case "workflowstart", "flowstart", "runstart":
		return kindFlowStart
	case "workflowend", "flowend", "workflowfinish", "runend":
		return kindFlowEnd
	case "modulestart", "nodestart":
		return kindNodeStart
	case "moduleend", "nodeend":
		return kindNodeEnd
	case "datasetquote", "quote", "citation":
		return kindDatasetQuote
	case "interactive", "userselect":
		return kindInteractive
	case "updatevariables", "variables":
		return kindVariables
	case "usage", "flowusages":
		return kindUsage
	}
	return kindUnknown
}

// toolBucket 工具生命周期分桶，由规范 key 推导，不单独存状态。
type toolBucket int

const (
	bucketOther toolBucket = iota
	bucketStart
	bucketUpdate
	bucketComplete
)

// toolBucketOf 规范 key → 生命周期分桶。
func toolBucketOf(key string) toolBucket {
	switch key {
	case "tool", "toolcall", "plugincall", "plugin":
		return bucketStart
	case "toolparams":
		return bucketUpdate
	case "toolresponse", "toolresult", "toolend", "toolcomplete", "toolfinish":
		return bucketComplete
	}
	return bucketOther
}

// isIgnoredKey 永不透出的事件：原始 token、纯文本增量、状态心跳、
// 已由工具流覆盖的通用起止标记。
func isIgnoredKey(key string) bool {
	switch key {
	case "chunk", "answer", "fastanswer", "message", "status",
		"flownodestatus", "flowresponses", "start", "end", "ping", "done":
		return true
	}
	return false
}
