package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

const termsUpdatedAt = "2025-06-01"

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the HTML pages served by PagesHandler.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

type PagesHandler struct {
	baseURL string
}

func NewPagesHandler(baseURL string) *PagesHandler {
	return &PagesHandler{baseURL: baseURL}
}

func (h *PagesHandler) Terms(c *gin.Context) {
	c.HTML(http.StatusOK, "terms.html", gin.H{
		"UpdatedAt": termsUpdatedAt,
		"BaseURL":   h.baseURL,
	})
}

func (h *PagesHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Server is running"})
}
