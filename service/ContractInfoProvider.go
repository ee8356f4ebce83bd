package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/chain-board/model"
)

// ContractInfoProvider fetches the contract connection bundle from the
// backend. Each call hits the backend fresh, the bundle is never cached.
type ContractInfoProvider struct {
	BaseURL string
	Client  *http.Client
}

func NewContractInfoProvider(baseURL string) *ContractInfoProvider {
	return &ContractInfoProvider{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *ContractInfoProvider) Fetch(ctx context.Context) (model.ContractInfo, error) {
	var info model.ContractInfo

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/contractInfo", nil)
	if err != nil {
		return info, err
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return info, fmt.Errorf("fetch contract info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return info, fmt.Errorf("fetch contract info: backend returned %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return info, fmt.Errorf("decode contract info: %w", err)
	}
	return info, nil
}
