package render

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// dropped elements are removed together with their children.
var dropped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Iframe:   true,
	atom.Object:   true,
	atom.Embed:    true,
	atom.Link:     true,
	atom.Meta:     true,
	atom.Base:     true,
	atom.Form:     true,
	atom.Frame:    true,
	atom.Frameset: true,
}

// Sanitize cleans a rich-text fragment from the content store so it can be
// embedded in a sheet. Markup is kept; active content (scripts, frames,
// event handler attributes and javascript: URLs) is removed. Text and math
// delimiters pass through untouched.
func Sanitize(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return html.EscapeString(fragment)
	}
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return html.EscapeString(fragment)
	}
	var buf bytes.Buffer
	for _, n := range nodes {
		if n.Type == html.CommentNode || (n.Type == html.ElementNode && dropped[n.DataAtom]) {
			continue
		}
		clean(n)
		if err := html.Render(&buf, n); err != nil {
			return html.EscapeString(fragment)
		}
	}
	return buf.String()
}

func clean(n *html.Node) {
	if n.Type == html.ElementNode {
		n.Attr = cleanAttrs(n.Attr)
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.CommentNode || (c.Type == html.ElementNode && dropped[c.DataAtom]) {
			n.RemoveChild(c)
		} else {
			clean(c)
		}
		c = next
	}
}

func cleanAttrs(attrs []html.Attribute) []html.Attribute {
	out := attrs[:0]
	for _, a := range attrs {
		key := strings.ToLower(a.Key)
		if strings.HasPrefix(key, "on") || key == "srcdoc" || key == "formaction" {
			continue
		}
		if (key == "href" || key == "src" || key == "action" || key == "xlink:href") && unsafeURL(a.Val) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func unsafeURL(v string) bool {
	v = strings.ToLower(strings.Join(strings.Fields(v), ""))
	return strings.HasPrefix(v, "javascript:") || strings.HasPrefix(v, "vbscript:") ||
		(strings.HasPrefix(v, "data:") && !strings.HasPrefix(v, "data:image/"))
}
