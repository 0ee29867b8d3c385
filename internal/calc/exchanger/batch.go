package exchanger

import "fmt"

type BatchInput struct {
	Items []Parameters `json:"items"`
}

type BatchResult struct {
	Results []Result `json:"results"`
}

func CalculateBatch(in BatchInput) (BatchResult, error) {
	if len(in.Items) == 0 {
		return BatchResult{}, fmt.Errorf("no items")
	}
	out := BatchResult{Results: make([]Result, 0, len(in.Items))}
	for i, item := range in.Items {
		res, err := Calculate(item)
		if err != nil {
			return BatchResult{}, fmt.Errorf("item %d: %w", i, err)
		}
		out.Results = append(out.Results, res)
	}
	return out, nil
}
