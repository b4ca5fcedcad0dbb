package middleware

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const RequestIDHeader = "X-Request-ID"

// RequestID keeps an incoming X-Request-ID or assigns a nanoid, and stores it
// in the "requestid" local.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header: RequestIDHeader,
		Generator: func() string {
			id, _ := gonanoid.New()
			return id
		},
	})
}

// AccessLog writes one line per request tagged with the request id. A nil
// writer logs to stdout.
func AccessLog(out io.Writer) fiber.Handler {
	cfg := logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path} ${error}\n",
	}
	if out != nil {
		cfg.Output = out
	}
	return logger.New(cfg)
}
