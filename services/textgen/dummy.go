package textgensvc

import (
	"context"
	"sync"

	"github.com/trezcool/techproject/core"
)

// DummyService replays scripted results and records the prompts it was
// given. Used by tests and local development.
type DummyService struct {
	mu      sync.Mutex
	results []core.TextResult
	err     error

	Prompts []string
}

var _ core.TextGenerator = (*DummyService)(nil)

func NewDummyService(results []core.TextResult, err error) *DummyService {
	return &DummyService{results: results, err: err}
}

func (svc *DummyService) GenerateText(ctx context.Context, prompt string, contextID, userID int) (core.TextResult, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.Prompts = append(svc.Prompts, prompt)
	if svc.err != nil {
		return core.TextResult{}, svc.err
	}
	if len(svc.results) == 0 {
		return core.TextResult{Success: false, ErrorMessage: "no scripted result"}, nil
	}
	res := svc.results[0]
	svc.results = svc.results[1:]
	return res, nil
}
