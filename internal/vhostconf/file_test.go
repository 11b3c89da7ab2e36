package vhostconf

import (
	"strings"
	"testing"

	"github.com/ksyq12/devhost/internal/config"
	"github.com/ksyq12/devhost/internal/errors"
	"github.com/ksyq12/devhost/internal/ssl"
	"github.com/ksyq12/devhost/internal/textstore"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const confPath = "/etc/apache2/sites-available/devhost.conf"

func newTestFile(t *testing.T, content string) (*File, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	if content != "" {
		require.NoError(t, afero.WriteFile(fs, confPath, []byte(content), 0644))
	}
	return NewFile(textstore.New(fs), confPath), fs
}

func readConf(t *testing.T, fs afero.Fs) string {
	t.Helper()
	data, err := afero.ReadFile(fs, confPath)
	require.NoError(t, err)
	return string(data)
}

func docrootRoute(host string, aliases ...string) *config.Route {
	return &config.Route{Hostname: host, Port: 80, Target: "/var/www/" + host, Aliases: aliases, Address: "127.0.0.1"}
}

func TestFile_Add(t *testing.T) {
	f, fs := newTestFile(t, "Listen 80\n")

	block, err := f.Add(docrootRoute("dev.local"), nil)
	require.NoError(t, err)
	assert.Equal(t, "dev.local", block.ServerName)
	assert.Equal(t, 3, block.StartLine)

	got := readConf(t, fs)
	assert.True(t, strings.HasPrefix(got, "Listen 80\n\n<VirtualHost *:80>\n"))
	assert.True(t, strings.HasSuffix(got, "</VirtualHost>\n\n"))

	exists, err := f.Exists("DEV.local")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFile_AddCreatesMissingFile(t *testing.T) {
	f, fs := newTestFile(t, "")

	_, err := f.Add(docrootRoute("dev.local"), nil)
	require.NoError(t, err)

	got := readConf(t, fs)
	assert.True(t, strings.HasPrefix(got, "\n<VirtualHost *:80>\n"))
}

func TestFile_AddUnterminatedFile(t *testing.T) {
	f, fs := newTestFile(t, "Listen 80")

	_, err := f.Add(docrootRoute("dev.local"), nil)
	require.NoError(t, err)
	got := readConf(t, fs)
	assert.True(t, strings.HasPrefix(got, "Listen 80\n\n<VirtualHost"))
	assert.True(t, strings.HasSuffix(got, "</VirtualHost>"), "the missing final newline is kept")

	_, err = f.Add(docrootRoute("api.local"), nil)
	require.NoError(t, err)
	blocks, err := f.List()
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, "api.local", blocks[1].ServerName)

	_, err = f.Remove("dev.local")
	require.NoError(t, err)
	_, err = f.Remove("api.local")
	require.NoError(t, err)
	assert.Equal(t, "Listen 80", readConf(t, fs))
}

func TestFile_AddWithCert(t *testing.T) {
	f, fs := newTestFile(t, "")
	route := docrootRoute("dev.local")
	route.Port = 443
	route.SSL = true

	block, err := f.Add(route, &ssl.CertPair{Hostname: "dev.local", CertFile: "/c/dev.local.crt", KeyFile: "/c/dev.local.key"})
	require.NoError(t, err)
	assert.True(t, block.SSL())
	assert.Contains(t, readConf(t, fs), `SSLCertificateFile "/c/dev.local.crt"`)
}

func TestFile_AddDuplicate(t *testing.T) {
	tests := []struct {
		name  string
		route *config.Route
	}{
		{"same hostname", docrootRoute("dev.local")},
		{"hostname is an existing alias", docrootRoute("www.dev.local")},
		{"alias is an existing hostname", docrootRoute("other.local", "dev.local")},
		{"different case", docrootRoute("DEV.LOCAL")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, fs := newTestFile(t, "")
			_, err := f.Add(docrootRoute("dev.local", "www.dev.local"), nil)
			require.NoError(t, err)
			f.Cleanup()
			before := readConf(t, fs)

			_, err = f.Add(tt.route, nil)
			assert.True(t, errors.Is(err, errors.ErrDuplicateRoute))
			assert.Equal(t, before, readConf(t, fs))

			backups, err := textstore.New(fs).Backups(confPath)
			require.NoError(t, err)
			assert.Empty(t, backups)
		})
	}
}

func TestFile_AddRemoveRoundTrip(t *testing.T) {
	originals := []string{
		"",
		"Listen 80\n",
		"Listen 80",
		twoBlocks,
		strings.TrimSuffix(twoBlocks, "\n"),
		"# only comments\n\n\n",
		"# no newline",
	}

	for _, original := range originals {
		f, fs := newTestFile(t, original)

		_, err := f.Add(docrootRoute("fresh.local"), nil)
		require.NoError(t, err)
		assert.NotEqual(t, original, readConf(t, fs))

		removed, err := f.Remove("fresh.local")
		require.NoError(t, err)
		require.Len(t, removed, 1)

		assert.Equal(t, original, readConf(t, fs))
	}
}

func TestFile_RemoveEveryMatchingBlock(t *testing.T) {
	content := "<VirtualHost *:80>\nServerName a.local\n</VirtualHost>\n\n" +
		"<VirtualHost *:80>\nServerName b.local\n</VirtualHost>\n\n" +
		"<VirtualHost *:443>\nServerName x.local\nServerAlias a.local\n</VirtualHost>\n"
	f, fs := newTestFile(t, content)

	removed, err := f.Remove("a.local")
	require.NoError(t, err)
	assert.Len(t, removed, 2)
	assert.Equal(t, "<VirtualHost *:80>\nServerName b.local\n</VirtualHost>\n", readConf(t, fs))

	exists, err := f.Exists("a.local")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFile_RemoveNoMatch(t *testing.T) {
	f, fs := newTestFile(t, twoBlocks)

	removed, err := f.Remove("missing.local")
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.Equal(t, twoBlocks, readConf(t, fs))

	backups, err := textstore.New(fs).Backups(confPath)
	require.NoError(t, err)
	assert.Empty(t, backups, "no match means no write")
}

func TestFile_MalformedRefusesEdits(t *testing.T) {
	broken := "<VirtualHost *:80>\nServerName a.local\n"
	f, fs := newTestFile(t, broken)

	_, err := f.Add(docrootRoute("dev.local"), nil)
	assert.True(t, errors.Is(err, errors.ErrMalformedConfig))

	_, err = f.Remove("a.local")
	assert.True(t, errors.Is(err, errors.ErrMalformedConfig))

	assert.Equal(t, broken, readConf(t, fs))
}

func TestFile_ListMissingFile(t *testing.T) {
	f, _ := newTestFile(t, "")

	blocks, err := f.List()
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestReadLog(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/srv/apache/logs/dev.local-error.log", []byte("one\ntwo\nthree\n"), 0644))
	store := textstore.New(fs)

	lines, err := ReadLog(store, "/srv/apache", "logs/dev.local-error.log", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"two", "three"}, lines)

	lines, err = ReadLog(store, "/ignored", "/srv/apache/logs/dev.local-error.log", 0)
	require.NoError(t, err)
	assert.Len(t, lines, 3)

	_, err = ReadLog(store, "/srv/apache", "", 10)
	assert.True(t, errors.Is(err, errors.ErrInvalidRoute))
}
