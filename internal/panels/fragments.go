package panels

import (
	"bytes"
	"embed"
	"html/template"

	"go.uber.org/zap"

	"github.com/seuros/vidpulse/internal/logging"
	"github.com/seuros/vidpulse/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

var fragments = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type hashtagItem struct {
	Tag   string
	Views string
}

// reportView is the data behind the "report" fragment.
type reportView struct {
	Heading  string
	Wrap     string
	Report   template.HTML
	Hashtags []hashtagItem
	Row      bool
	Mounts   []template.HTML
}

func render(name string, data any) template.HTML {
	var buf bytes.Buffer
	if err := fragments.ExecuteTemplate(&buf, name, data); err != nil {
		logging.L().Error("failed to render fragment", zap.String("fragment", name), zap.Error(err))
		return ""
	}
	return template.HTML(buf.String())
}

func loadingHTML(text string) template.HTML {
	return render("loading", text)
}

func errorHTML(message string) template.HTML {
	return render("error", message)
}

// SelectHTML renders sel as an out-of-band swap of its options.
func SelectHTML(sel *view.Select) template.HTML {
	return render("select", struct {
		ID      string
		Options []view.Option
	}{ID: sel.ID(), Options: sel.Options()})
}
