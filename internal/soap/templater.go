package soap

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
)

//go:embed templates/*.xml
var templateFS embed.FS

// Templater renders named SOAP request templates. Templates contain
// positional %s placeholders; authenticated renders substitute the four
// security-token fields ahead of any caller-supplied parameters, in fixed
// order: username, password digest, nonce, created timestamp.
type Templater struct {
	fsys fs.FS
}

// NewTemplater returns a Templater backed by the embedded template set.
func NewTemplater() *Templater {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		// The embedded tree always contains templates/.
		panic(err)
	}
	return &Templater{fsys: sub}
}

// NewTemplaterFS returns a Templater backed by an arbitrary filesystem,
// for tests and template overrides.
func NewTemplaterFS(fsys fs.FS) *Templater {
	return &Templater{fsys: fsys}
}

// Render loads the named template and substitutes the given parameters in
// order. The placeholder count must match exactly.
func (t *Templater) Render(name string, params ...string) (string, error) {
	tmpl, err := t.load(name)
	if err != nil {
		return "", err
	}
	return substitute(name, tmpl, params)
}

// RenderAuthenticated loads the named template, builds a fresh digest from
// the given account, and substitutes the security-token fields followed by
// the extra parameters. A digest build failure fails the render: an
// authenticated request must never be sent without its token.
func (t *Templater) RenderAuthenticated(name, username, password string, extra ...string) (string, error) {
	tmpl, err := t.load(name)
	if err != nil {
		return "", err
	}

	digest, err := BuildDigest(username, password)
	if err != nil {
		return "", fmt.Errorf("cannot authenticate %s: %w", name, err)
	}

	params := make([]string, 0, 4+len(extra))
	params = append(params, digest.Username, digest.PasswordDigest, digest.Nonce, digest.Created)
	params = append(params, extra...)

	return substitute(name, tmpl, params)
}

// load reads the raw template text by name.
func (t *Templater) load(name string) (string, error) {
	data, err := fs.ReadFile(t.fsys, name)
	if err != nil {
		return "", fmt.Errorf("failed to load template %s: %w", name, err)
	}
	return string(data), nil
}

// substitute fills the template's %s placeholders with params, enforcing
// an exact count match so a malformed template is caught at render time
// rather than producing a broken request body.
func substitute(name, tmpl string, params []string) (string, error) {
	want := strings.Count(tmpl, "%s")
	if want != len(params) {
		return "", fmt.Errorf("template %s expects %d parameters, got %d", name, want, len(params))
	}

	args := make([]any, len(params))
	for i, p := range params {
		args[i] = p
	}
	return fmt.Sprintf(tmpl, args...), nil
}
