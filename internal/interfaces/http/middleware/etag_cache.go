package middleware

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/stockwatch/pkg/constants"
)

// bodyCacheWriter is a custom gin.ResponseWriter that intercepts and buffers the response body.
// bodyCacheWriter 是一个自定义的 gin.ResponseWriter，用于拦截和缓冲响应正文。
type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write captures the data written to the response body instead of sending it immediately.
func (w bodyCacheWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

// WriteString 同样写入缓冲区
func (w bodyCacheWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

// ETagCache returns a Gin middleware that implements ETag-based HTTP caching for GET requests.
// A SHA-256 of the body is sent as the ETag and a matching If-None-Match yields 304 Not Modified.
// maxAge sets Cache-Control; responses to authenticated requests are marked private.
// ETagCache 返回一个实现基于 ETag 的 HTTP 缓存的 Gin 中间件。
func ETagCache(maxAge time.Duration) gin.HandlerFunc {
	public := fmt.Sprintf("public, max-age=%d, must-revalidate", int(maxAge.Seconds()))
	private := fmt.Sprintf("private, max-age=%d, must-revalidate", int(maxAge.Seconds()))

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		bcw := &bodyCacheWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = bcw
		defer func() { c.Writer = bcw.ResponseWriter }()

		c.Next()

		responseBody := bcw.body.Bytes()
		if c.Writer.Status() == http.StatusOK && len(responseBody) > 0 {
			etag := fmt.Sprintf(`"%x"`, sha256.Sum256(responseBody))

			cacheControl := public
			if c.GetHeader(constants.AuthorizationHeader) != "" {
				cacheControl = private
			}
			c.Header("ETag", etag)
			c.Header("Cache-Control", cacheControl)

			if etagMatches(c.GetHeader("If-None-Match"), etag) {
				c.Status(http.StatusNotModified)
				bcw.ResponseWriter.WriteHeaderNow()
				return
			}
		}

		_, _ = bcw.ResponseWriter.Write(responseBody)
	}
}

func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == etag || candidate == "*" {
			return true
		}
	}
	return false
}
