package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	assert.Equal(t, "Mia", Text("  <b>Mia</b> "))
	assert.Equal(t, "", Text("<script>alert(1)</script>"))
}

func TestText_KeepsApostrophes(t *testing.T) {
	assert.Equal(t, "Zoë's dragon", Text("Zoë's dragon"))
	assert.Equal(t, "Tom & Jerry", Text("Tom &amp; Jerry"))
}

func TestText_EncodedMarkupIsStripped(t *testing.T) {
	for _, in := range []string{
		"&lt;script&gt;alert(1)&lt;/script&gt;",
		"&amp;lt;script&amp;gt;alert(1)&amp;lt;/script&amp;gt;",
		"&lt;img src=x onerror=alert(1)&gt;",
	} {
		out := Text(in)
		assert.NotContains(t, out, "<script", in)
		assert.NotContains(t, out, "<img", in)
	}
	assert.Equal(t, "", Text("&lt;script&gt;alert(1)&lt;/script&gt;"))
}
