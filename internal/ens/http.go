package ens

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPResolver asks an ENS lookup API served at {base}/api/ens/{name}.
type HTTPResolver struct {
	base   string
	client *http.Client
}

func NewHTTPResolver(base string, client *http.Client) *HTTPResolver {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPResolver{base: strings.TrimRight(base, "/"), client: client}
}

type lookupResponse struct {
	Address *string `json:"address"`
	ENSName *string `json:"ensName"`
}

func (r *HTTPResolver) Resolve(ctx context.Context, addressOrName string) (Identity, error) {
	input := Normalize(addressOrName)
	if input == "" {
		return Identity{}, nil
	}
	isAddr, err := classify(input)
	if err != nil {
		return Identity{}, err
	}

	endpoint := r.base + "/api/ens/" + url.PathEscape(input)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Identity{}, fmt.Errorf("create request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("ens lookup %s: %w", input, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Identity{}, fmt.Errorf("ens lookup %s: status %d: %s", input, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Identity{}, fmt.Errorf("decode ens response: %w", err)
	}
	id := Identity{}
	if out.Address != nil {
		id.Address = *out.Address
	}
	if out.ENSName != nil {
		id.ENSName = *out.ENSName
	}
	if !isAddr && id.Address == "" {
		return Identity{}, fmt.Errorf("%w: %s", ErrUnresolved, input)
	}
	return id, nil
}
