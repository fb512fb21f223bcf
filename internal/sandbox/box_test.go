package sandbox_test

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/programme-lv/speedwar/internal/sandbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestBoxLifecycle(t *testing.T) {
	root := t.TempDir()
	box, err := sandbox.NewBox(root)
	require.NoError(t, err)
	assert.DirExists(t, box.Path())
	assert.Equal(t, root, filepath.Dir(box.Path()))

	require.NoError(t, box.AddFile("src/main.rs", []byte("fn main() {}")))
	assert.True(t, box.HasFile("src/main.rs"))

	require.NoError(t, box.Close())
	assert.NoDirExists(t, box.Path())
	// already gone
	require.NoError(t, box.Close())
}

func TestBoxesAreDistinct(t *testing.T) {
	root := t.TempDir()
	a, err := sandbox.NewBox(root)
	require.NoError(t, err)
	defer a.Close()
	b, err := sandbox.NewBox(root)
	require.NoError(t, err)
	defer b.Close()
	assert.NotEqual(t, a.Path(), b.Path())
}

func TestUnpack(t *testing.T) {
	box, err := sandbox.NewBox(t.TempDir())
	require.NoError(t, err)
	defer box.Close()

	archive := zipOf(t, map[string]string{
		"Cargo.toml":         "[package]\nname = \"sol\"\n",
		"src/main.rs":        "fn main() {}",
		"tests/1/input.txt":  "forged",
		"tests/1/answer.txt": "forged",
	})
	require.NoError(t, box.Unpack(archive, sandbox.DefaultUnpackLimits()))

	content, err := box.GetFile("src/main.rs")
	require.NoError(t, err)
	assert.Equal(t, "fn main() {}", string(content))
	assert.True(t, box.HasFile("tests/1/input.txt"))

	require.NoError(t, box.Remove("tests"))
	assert.False(t, box.HasFile("tests"))
	assert.True(t, box.HasFile("Cargo.toml"))
}

func TestUnpackRejectsEscapingEntries(t *testing.T) {
	box, err := sandbox.NewBox(t.TempDir())
	require.NoError(t, err)
	defer box.Close()

	archive := zipOf(t, map[string]string{"../../escaped.txt": "x"})
	require.Error(t, box.Unpack(archive, sandbox.DefaultUnpackLimits()))
	assert.NoFileExists(t, filepath.Join(filepath.Dir(box.Path()), "escaped.txt"))
}

func TestUnpackLimits(t *testing.T) {
	box, err := sandbox.NewBox(t.TempDir())
	require.NoError(t, err)
	defer box.Close()

	archive := zipOf(t, map[string]string{"big.txt": string(bytes.Repeat([]byte("a"), 4096))})

	err = box.Unpack(archive, sandbox.UnpackLimits{MaxArchiveBytes: 10})
	require.Error(t, err)

	err = box.Unpack(archive, sandbox.UnpackLimits{MaxUnpackedBytes: 1024})
	require.Error(t, err)

	require.NoError(t, box.Unpack(archive, sandbox.UnpackLimits{}))
}

func TestUnpackInvalidArchive(t *testing.T) {
	box, err := sandbox.NewBox(t.TempDir())
	require.NoError(t, err)
	defer box.Close()

	require.Error(t, box.Unpack([]byte("definitely not a zip"), sandbox.DefaultUnpackLimits()))
}

func TestCopyIn(t *testing.T) {
	fixtures := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(fixtures, "1"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(fixtures, "1", "input.txt"), []byte("official"), 0644))

	box, err := sandbox.NewBox(t.TempDir())
	require.NoError(t, err)
	defer box.Close()

	require.NoError(t, box.CopyIn(fixtures, "tests"))
	content, err := box.GetFile("tests/1/input.txt")
	require.NoError(t, err)
	assert.Equal(t, "official", string(content))

	require.Error(t, box.CopyIn(filepath.Join(fixtures, "missing"), "tests"))
	require.Error(t, box.CopyIn(fixtures, "../outside"))
}
