package server

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"

	// Bodies below this size are sent uncompressed
	minCompressSize = 1024
)

var gzipPool = sync.Pool{
	New: func() interface{} {
		gz, _ := gzip.NewWriterLevel(io.Discard, gzip.DefaultCompression)
		return gz
	},
}

// securityHeaders sets the response headers every API answer carries
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Next()
	}
}

func acceptsGzip(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		if strings.TrimSpace(strings.SplitN(enc, ";", 2)[0]) == "gzip" {
			return true
		}
	}
	return false
}

func gzipBytes(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzipPool.Get().(*gzip.Writer)
	defer gzipPool.Put(gz)

	gz.Reset(&buf)
	if _, err := gz.Write(body); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeJSON sends an encoded artifact, gzipped when the client accepts it
// and the body is large enough to benefit
func writeJSON(c *gin.Context, body []byte) {
	c.Header("Vary", "Accept-Encoding")
	if len(body) >= minCompressSize && acceptsGzip(c.Request) {
		if compressed, err := gzipBytes(body); err == nil {
			c.Header("Content-Encoding", "gzip")
			c.Data(http.StatusOK, contentTypeJSON, compressed)
			return
		}
	}
	c.Data(http.StatusOK, contentTypeJSON, body)
}
