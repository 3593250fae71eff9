package httpx

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/valyala/fasthttp"

	"github.com/seuros/vidpulse/internal/logging"
	"go.uber.org/zap"
)

var errCanceled = errors.New("request canceled before send")

// Doer is the subset of *fasthttp.Client used for outbound calls.
type Doer interface {
	Do(req *fasthttp.Request, resp *fasthttp.Response) error
	DoDeadline(req *fasthttp.Request, resp *fasthttp.Response, deadline time.Time) error
}

// Exchange sends one request and returns the status code with a copy of the
// response body. A zero timeout means the context deadline (if any) is the
// only limit.
func Exchange(ctx context.Context, client Doer, method, url string, body []byte, timeout time.Duration) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, errors.Join(errCanceled, err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	var err error
	if deadline, ok := effectiveDeadline(ctx, timeout); ok {
		err = client.DoDeadline(req, resp, deadline)
	} else {
		err = client.Do(req, resp)
	}
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode(), append([]byte(nil), resp.Body()...), nil
}

func effectiveDeadline(ctx context.Context, timeout time.Duration) (time.Time, bool) {
	deadline, ok := ctx.Deadline()
	if timeout > 0 {
		byTimeout := time.Now().Add(timeout)
		if !ok || byTimeout.Before(deadline) {
			return byTimeout, true
		}
	}
	return deadline, ok
}

// Error writes the standard error envelope.
func Error(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

// JSON writes payload with the given status, logging encoder failures.
func JSON(c fiber.Ctx, status int, payload any) error {
	if err := c.Status(status).JSON(payload); err != nil {
		logging.L().Warn("failed to encode JSON response", zap.Error(err))
		return err
	}
	return nil
}
