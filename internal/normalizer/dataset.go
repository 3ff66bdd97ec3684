// Copyright 2026 fanjia1024

package normalizer

// Dataset 从工具响应文本块中提取出的知识库命中结果。
type Dataset struct {
	Items []any
	Raw   string
}

// datasetKeys 命中数组的候选字段名
var datasetKeys = []string{"data", "list", "records"}

// extractDataset 逐个对候选文本块做恢复解析，返回第一个在
// data/list/records 下持有数组的块；全部不命中返回 nil。
func extractDataset(blocks []string) *Dataset {
	for _, block := range blocks {
		obj, ok := RecoverParse(block).(map[string]any)
		if !ok {
			continue
		}
		for _, key := range datasetKeys {
			if items, ok := obj[key].([]any); ok {
				return &Dataset{Items: items, Raw: block}
			}
		}
	}
	return nil
}
