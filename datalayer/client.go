package datalayer

import (
	"context"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/saiset-co/sai-datalayer-gateway/types"
	"github.com/saiset-co/sai-datalayer-gateway/utils"
)

// Client talks to the upstream data layer node over its JSON RPC
// surface. Every call is bounded by the configured timeout linked with
// the caller's context; failures are returned as-is, the gateway layer
// decides what absence means.
type Client struct {
	ctx     context.Context
	cancel  context.CancelFunc
	logger  types.Logger
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	retries int
	breaker *CircuitBreaker
}

func NewClient(ctx context.Context, logger types.Logger, config *types.DataLayerConfig) *Client {
	clientCtx, cancel := context.WithCancel(ctx)

	timeout := utils.ParseDurationOrDefault(config.Timeout, 30*time.Second)

	return &Client{
		ctx:    clientCtx,
		cancel: cancel,
		logger: logger,
		client: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		baseURL: config.BaseURL,
		timeout: timeout,
		retries: config.Retries,
		breaker: NewCircuitBreaker(config.CircuitBreaker, logger),
	}
}

type subscriptionsResponse struct {
	StoreIDs []string `json:"store_ids"`
	Success  bool     `json:"success"`
	Error    string   `json:"error"`
}

type rootHistoryResponse struct {
	RootHistory []types.RootEntry `json:"root_history"`
	Success     bool              `json:"success"`
	Error       string            `json:"error"`
}

type keysResponse struct {
	Keys    []string `json:"keys"`
	Success bool     `json:"success"`
	Error   string   `json:"error"`
}

type valueResponse struct {
	Value   string `json:"value"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type proofResponse struct {
	Proof   interface{} `json:"proof"`
	Success bool        `json:"success"`
	Error   string      `json:"error"`
}

func (c *Client) ListSubscriptions(ctx context.Context) ([]string, error) {
	var resp subscriptionsResponse
	if err := c.call(ctx, "/subscriptions", map[string]interface{}{}, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, types.Errorf(types.ErrDataLayerBadResponse, "subscriptions: %s", resp.Error)
	}
	return resp.StoreIDs, nil
}

func (c *Client) GetRootHistory(ctx context.Context, storeID string) ([]types.RootEntry, error) {
	var resp rootHistoryResponse
	if err := c.call(ctx, "/get_root_history", map[string]interface{}{"id": storeID}, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, types.Errorf(types.ErrDataLayerBadResponse, "get_root_history: %s", resp.Error)
	}
	return resp.RootHistory, nil
}

func (c *Client) GetKeys(ctx context.Context, storeID, rootHash string) ([]string, error) {
	params := map[string]interface{}{"id": storeID}
	if rootHash != "" {
		params["root_hash"] = rootHash
	}

	var resp keysResponse
	if err := c.call(ctx, "/get_keys", params, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, types.Errorf(types.ErrDataLayerBadResponse, "get_keys: %s", resp.Error)
	}
	return resp.Keys, nil
}

func (c *Client) GetValue(ctx context.Context, storeID, hexKey, rootHash string) (string, error) {
	params := map[string]interface{}{"id": storeID, "key": hexKey}
	if rootHash != "" {
		params["root_hash"] = rootHash
	}

	var resp valueResponse
	if err := c.call(ctx, "/get_value", params, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", types.Errorf(types.ErrDataLayerBadResponse, "get_value: %s", resp.Error)
	}
	return resp.Value, nil
}

func (c *Client) GetProof(ctx context.Context, storeID string, hexKeys []string) (string, error) {
	params := map[string]interface{}{"store_id": storeID, "keys": hexKeys}

	var resp proofResponse
	if err := c.call(ctx, "/get_proof", params, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", types.Errorf(types.ErrDataLayerBadResponse, "get_proof: %s", resp.Error)
	}

	serialized, err := utils.Marshal(resp.Proof)
	if err != nil {
		return "", types.WrapError(err, "failed to serialize proof")
	}
	return string(serialized), nil
}

func (c *Client) call(ctx context.Context, path string, params interface{}, out interface{}) error {
	if !c.breaker.CanExecute() {
		return types.ErrCircuitBreakerOpen
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")

	body, err := utils.Marshal(params)
	if err != nil {
		return types.WrapError(err, "failed to marshal rpc params")
	}
	req.SetBody(body)

	var callErr error
	var responseBody []byte

	done := make(chan struct{})
	go func() {
		defer close(done)
		callErr = c.executeWithRetries(req, resp)
		if callErr == nil {
			responseBody = append([]byte(nil), resp.Body()...)
		}
	}()

	select {
	case <-done:
	case <-callCtx.Done():
		c.breaker.RecordFailure()
		return callCtx.Err()
	case <-c.ctx.Done():
		return types.ErrDataLayerUnavailable
	}

	if callErr != nil {
		c.breaker.RecordFailure()
		c.logger.Error("Data layer call failed",
			zap.String("path", path),
			zap.String("breaker", c.breaker.StateString()),
			zap.Error(callErr))
		return types.Errorf(types.ErrDataLayerUnavailable, "%s: %v", path, callErr)
	}

	c.breaker.RecordSuccess()

	if err := utils.Unmarshal(responseBody, &out); err != nil {
		return types.Errorf(types.ErrDataLayerBadResponse, "%s: %v", path, err)
	}

	return nil
}

func (c *Client) executeWithRetries(req *fasthttp.Request, resp *fasthttp.Response) error {
	retries := c.retries
	if retries < 0 {
		retries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
		}

		if err := c.client.Do(req, resp); err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode() >= 500 {
			lastErr = types.NewErrorf("upstream status %d", resp.StatusCode())
			continue
		}

		if resp.StatusCode() >= 400 {
			return types.NewErrorf("upstream status %d", resp.StatusCode())
		}

		return nil
	}

	return lastErr
}

func (c *Client) Close() {
	c.cancel()
}
