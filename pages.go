package main

import (
	"embed"
	"html/template"
	"net/http"

	"adminpanel/pkg/vault"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

func loadTemplates(r *gin.Engine) {
	t := template.Must(template.New("").Funcs(template.FuncMap{
		"previewKind": func(name string) string { return string(vault.PreviewKind(name)) },
	}).ParseFS(templatesFS, "templates/*.html"))
	r.SetHTMLTemplate(t)
}

func aboutHandler(c *gin.Context) {
	c.HTML(http.StatusOK, "about.html", nil)
}

// vaultPageHandler renders the file grid. The page reloads itself when the
// vault change feed fires.
func (a *app) vaultPageHandler(c *gin.Context) {
	files, err := a.vault.ListFiles(c.Request.Context())
	if err != nil {
		a.log.Error(c.Request.Context(), "vault list", "err", err)
		c.String(http.StatusInternalServerError, "could not load files")
		return
	}
	c.HTML(http.StatusOK, "vault.html", gin.H{"Files": files})
}
