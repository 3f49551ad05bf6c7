package http

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

const indexFile = "index.html"

// staticHandler serves the browser client from dir. Every file gets a weak
// ETag so browsers revalidate with If-None-Match and receive 304.
func staticHandler(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Status(http.StatusMethodNotAllowed)
			return
		}

		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+c.Request.URL.Path)))
		info, err := os.Stat(name)
		if err == nil && info.IsDir() {
			name = filepath.Join(name, indexFile)
			info, err = os.Stat(name)
		}
		if err != nil || info.IsDir() {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
			return
		}

		c.Header("ETag", weakETag(info))
		c.Header("Cache-Control", "no-cache")
		// http.ServeContent answers If-None-Match against the ETag header.
		c.File(name)
	}
}

func weakETag(info os.FileInfo) string {
	return fmt.Sprintf(`W/"%x-%x"`, info.Size(), info.ModTime().UnixNano())
}
