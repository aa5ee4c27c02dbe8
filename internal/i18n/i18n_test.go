package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func newBundle(t *testing.T) *Bundle {
	t.Helper()
	b, err := Default("ja", []string{"ja", "en"})
	require.NoError(t, err)
	return b
}

func TestResolveHonorsQValues(t *testing.T) {
	b := newBundle(t)
	require.Equal(t, "en", b.Resolve("ja;q=0.8, en;q=0.9"))
	require.Equal(t, "ja", b.Resolve("ja-JP,en;q=0.5"))
	require.Equal(t, "en", b.Resolve("en-GB"))
}

func TestResolveFallsBack(t *testing.T) {
	b := newBundle(t)
	require.Equal(t, "ja", b.Resolve(""))
	require.Equal(t, "ja", b.Resolve("fr-FR"))
	require.Equal(t, "ja", b.Resolve(";;;"))
}

func TestTranslate(t *testing.T) {
	b := newBundle(t)
	require.Equal(t, "Next", b.T("en", "menu.next"))
	require.Equal(t, "次へ", b.T("ja", "menu.next"))
	require.Equal(t, "次へ", b.T("fr", "menu.next"))
	require.Equal(t, "missing.key", b.T("en", "missing.key"))
	require.Equal(t, "Step 2 of 3", b.Tf("en", "menu.progress", 2, 3))
}

func TestLocalesShareKeys(t *testing.T) {
	b := newBundle(t)
	for key := range b.dict["ja"] {
		_, ok := b.dict["en"][key]
		require.True(t, ok, "en is missing %q", key)
	}
	require.Len(t, b.dict["en"], len(b.dict["ja"]))
}

func TestNormalize(t *testing.T) {
	b := newBundle(t)
	lang, ok := b.Normalize("EN-us")
	require.True(t, ok)
	require.Equal(t, "en", lang)

	_, ok = b.Normalize("de")
	require.False(t, ok)
	_, ok = b.Normalize("<script>")
	require.False(t, ok)
}

func TestLoadRequiresFallback(t *testing.T) {
	fsys := fstest.MapFS{"en.json": {Data: []byte(`{"a":"b"}`)}}
	_, err := Load(fsys, "ja", []string{"en"})
	require.Error(t, err)

	b, err := Load(fsys, "en", []string{"en", "ja"})
	require.NoError(t, err)
	require.Equal(t, []string{"en"}, b.Supported())
}
