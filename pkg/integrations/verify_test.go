package integrations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyPages(t *testing.T) {
	dir := t.TempDir()
	createTestImage(t, dir, "001.png")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "002.png"), []byte("<html>503</html>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "003.jpg"), nil, 0644))

	broken, err := VerifyPages(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"002.png", "003.jpg"}, broken)
}

func TestVerifyPagesMissingDir(t *testing.T) {
	_, err := VerifyPages("/non/existent/path")
	assert.Error(t, err)
}
