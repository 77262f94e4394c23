package mock

import "github.com/fwojciec/elemsel"

var _ elemsel.Converter = (*Converter)(nil)

// Converter is a mock implementation of elemsel.Converter.
type Converter struct {
	ConvertFn func(html, baseURL string) (string, error)
}

func (c *Converter) Convert(html, baseURL string) (string, error) {
	return c.ConvertFn(html, baseURL)
}

var _ elemsel.Renderer = (*Renderer)(nil)

// Renderer is a mock implementation of elemsel.Renderer.
type Renderer struct {
	RenderFn func(n *elemsel.Node) (string, error)
}

func (r *Renderer) Render(n *elemsel.Node) (string, error) {
	return r.RenderFn(n)
}
