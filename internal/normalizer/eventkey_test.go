// Copyright 2026 fanjia1024

package normalizer

import "testing"

func TestCanonicalize(t *testing.T) {
	cases := map[string]string{
		"toolCall":         "toolcall",
		"tool_call":        "toolcall",
		"TOOL-CALL":        "toolcall",
		"flow.node.status": "flownodestatus",
		"Workflow Start":   "workflowstart",
		"":                 "",
	}
	for in, want := range cases {
		if got := Canonicalize(in); got != want {
			t.Errorf("Canonicalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsReasoningEvent(t *testing.T) {
	for _, name := range []string{"reasoning", "reasoningContent", "thinking_start", "chainOfThought"} {
		if !IsReasoningEvent(name) {
			t.Errorf("IsReasoningEvent(%q) should be true", name)
		}
	}
	if IsReasoningEvent("toolCall") {
		t.Error("toolCall is not a reasoning event")
	}
}

func TestIsChunkLikeEvent(t *testing.T) {
	for _, name := range []string{"chunk", "answerChunk", "text_delta", "contentDelta"} {
		if !IsChunkLikeEvent(name) {
			t.Errorf("IsChunkLikeEvent(%q) should be true", name)
		}
	}
	if IsChunkLikeEvent("toolResponse") {
		t.Error("toolResponse is not chunk-like")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("hello", 10); got != "hello" {
		t.Errorf("truncate short: %q", got)
	}
	if got := truncate("hello world", 5); got != "hello"+ellipsis {
		t.Errorf("truncate long: %q", got)
	}
	// 多字节字符按 rune 截断
	if got := truncate("你好世界", 2); got != "你好"+ellipsis {
		t.Errorf("truncate runes: %q", got)
	}
}
