package notify

import (
	"context"
	"fmt"
	"gradewatch/lib/telemetry"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

const pushPlusEndpoint = "http://www.pushplus.plus/send"

// PushPlus delivers to WeChat through pushplus.plus.
type PushPlus struct {
	token    string
	endpoint string
	http     *resty.Client
}

type PushPlusOptions struct {
	Token string
	// Endpoint overrides the public api, for tests.
	Endpoint string
}

func NewPushPlus(opts PushPlusOptions) PushPlus {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = pushPlusEndpoint
	}

	client := resty.New()
	client.SetTimeout(time.Second * 10)
	telemetry.InstrumentResty(client, "lib/notify/pushplus")

	return PushPlus{token: opts.Token, endpoint: endpoint, http: client}
}

type pushPlusRequest struct {
	Token    string `json:"token"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Template string `json:"template"`
}

type pushPlusResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (p PushPlus) Notify(ctx context.Context, msg Message) error {
	ctx, span := tracer.Start(ctx, "PushPlus.Notify")
	defer span.End()

	err := p.send(ctx, msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to push")
		return &Error{Sink: "pushplus", Err: err}
	}
	return nil
}

func (p PushPlus) send(ctx context.Context, msg Message) error {
	if p.token == "" {
		return fmt.Errorf("token is not configured")
	}

	var result pushPlusResponse
	res, err := p.http.R().
		SetContext(ctx).
		SetBody(pushPlusRequest{
			Token:    p.token,
			Title:    msg.Title(),
			Content:  RenderMarkdown(msg),
			Template: "markdown",
		}).
		SetResult(&result).
		ForceContentType("application/json").
		Post(p.endpoint)
	if err != nil {
		return err
	}
	if res.IsError() {
		return fmt.Errorf("unexpected status %d", res.StatusCode())
	}
	if result.Code != 200 {
		return fmt.Errorf("rejected (code %d): %s", result.Code, result.Msg)
	}
	return nil
}
