package utils

import (
	"context"
	"time"

	"github.com/valyala/fasthttp"
)

var NODE_HTTP_CLIENT = &fasthttp.Client{
	Name:                "modulr-api",
	MaxConnsPerHost:     256,
	ReadTimeout:         10 * time.Second,
	WriteTimeout:        10 * time.Second,
	MaxIdleConnDuration: 30 * time.Second,
}

// DoNodeRequest sends one request to a node and returns the status code and a copy of the body.
// The request is bounded by the context deadline, or by fallback when the context has none.
func DoNodeRequest(ctx context.Context, client *fasthttp.Client, method, url string, body []byte, fallback time.Duration) (int, []byte, error) {

	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(fallback)
	}

	if err := client.DoDeadline(req, resp, deadline); err != nil {
		return 0, nil, err
	}

	return resp.StatusCode(), append([]byte(nil), resp.Body()...), nil
}
