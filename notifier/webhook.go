package notifier

import (
	"context"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/saiset-co/sai-datalayer-gateway/types"
	"github.com/saiset-co/sai-datalayer-gateway/utils"
)

type webhookPayload struct {
	StoreID   string `json:"store_id"`
	Timestamp int64  `json:"timestamp"`
}

// WebhookDelivery posts registrations to a configured HTTP endpoint.
type WebhookDelivery struct {
	logger types.Logger
	config *types.WebhookConfig
	client *fasthttp.Client
}

func NewWebhookDelivery(logger types.Logger, config *types.WebhookConfig) *WebhookDelivery {
	timeout := utils.ParseDurationOrDefault(config.Timeout, 10*time.Second)

	return &WebhookDelivery{
		logger: logger,
		config: config,
		client: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
	}
}

func (w *WebhookDelivery) Name() string { return "webhook" }

func (w *WebhookDelivery) Deliver(ctx context.Context, storeID string) error {
	body, err := utils.Marshal(webhookPayload{
		StoreID:   storeID,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		return types.WrapError(err, "failed to marshal webhook payload")
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(w.config.URL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	done := make(chan error, 1)
	go func() {
		done <- w.client.Do(req, resp)
	}()

	select {
	case err := <-done:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	if resp.StatusCode() >= 400 {
		return types.NewErrorf("webhook status %d", resp.StatusCode())
	}

	return nil
}

func (w *WebhookDelivery) Close() error { return nil }
