package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"fastgpt-gateway/internal/normalizer"
	"fastgpt-gateway/internal/upstream/fastgpt"
	"fastgpt-gateway/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}
	cmd := os.Args[1]
	args := os.Args[2:]
	switch cmd {
	case "version":
		fmt.Println("fastgpt-gateway replay 0.1.0")
	case "config":
		runConfig()
	case "replay":
		if len(args) < 1 {
			fmt.Fprintf(os.Stderr, "Usage: replay replay <transcript.sse>\n")
			os.Exit(1)
		}
		if err := runReplay(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "回放失败: %v\n", err)
			os.Exit(1)
		}
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: replay <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  replay <file>   回放一份 SSE 录制文件，逐行输出归一化事件 JSON")
	fmt.Println("  config          校验并打印网关配置")
	fmt.Println("  version         打印版本")
}

// runReplay 把录制的 SSE 文本喂进归一化器，非空结果逐行输出
func runReplay(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	stream := normalizer.NewStream()
	defer stream.Close()

	enc := json.NewEncoder(os.Stdout)
	return fastgpt.ParseSSE(context.Background(), f, func(raw fastgpt.RawEvent) error {
		event := stream.Normalize(raw.Event, raw.Data)
		if event == nil {
			return nil
		}
		return enc.Encode(event)
	})
}

func runConfig() {
	cfg, err := config.LoadGatewayConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("upstream.base_url: %s\n", cfg.Upstream.BaseURL)
	fmt.Printf("stream_state.type: %s\n", cfg.StreamState.Type)
	fmt.Printf("api.port: %d\n", cfg.API.Port)
}
