package handlers

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/ardanlabs/utxochain/foundation/web"
)

//go:embed views/index.html
var views embed.FS

type index struct {
	page []byte
}

// newIndex renders the index page once with the address of the node
// the page streams events from.
func newIndex(nodeHost string) (index, error) {
	tmpl, err := template.ParseFS(views, "views/index.html")
	if err != nil {
		return index{}, err
	}

	data := struct {
		NodeHost string
	}{
		NodeHost: nodeHost,
	}

	var b bytes.Buffer
	if err := tmpl.Execute(&b, data); err != nil {
		return index{}, err
	}

	return index{page: b.Bytes()}, nil
}

func (ig index) handler(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := web.SetStatusCode(ctx, http.StatusOK); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(ig.page)
	return err
}
