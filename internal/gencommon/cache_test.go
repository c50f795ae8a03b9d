package gencommon

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationCacheRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/factories/WidgetFactory.go"
	content := []byte("package factories\n")
	require.NoError(t, afero.WriteFile(fs, path, content, 0644))

	cache := NewGenerationCache(fs, "/factories")
	assert.True(t, cache.Modified(path), "unrecorded file counts as modified")

	cache.UpdateGeneratedFileChecksum(path, ComputeChecksum(content))
	assert.False(t, cache.Modified(path))
	cache.MarkGeneration()
	require.NoError(t, cache.Save())

	reloaded := NewGenerationCache(fs, "/factories")
	assert.Equal(t, map[string]string{"WidgetFactory.go": ComputeChecksum(content)}, reloaded.GeneratedFileChecksums)
	assert.False(t, reloaded.LastGeneration.IsZero())
	assert.False(t, reloaded.Modified(path))

	require.NoError(t, afero.WriteFile(fs, path, []byte("// edited\n"), 0644))
	assert.True(t, reloaded.Modified(path))
}

func TestGenerationCacheMissingFile(t *testing.T) {
	cache := NewGenerationCache(afero.NewMemMapFs(), "/factories")
	assert.False(t, cache.Modified("/factories/Nope.go"))
}

func TestGenerationCacheVersionMismatch(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/factories/"+CacheFileName,
		[]byte(`{"version":"0.1","generated_file_checksums":{"A.go":"x"}}`), 0644))

	cache := NewGenerationCache(fs, "/factories")
	assert.Equal(t, cacheVersion, cache.Version)
	assert.Empty(t, cache.GeneratedFileChecksums)
}

func TestGenerationCacheCorrupt(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/factories/"+CacheFileName, []byte("{"), 0644))

	cache := NewGenerationCache(fs, "/factories")
	assert.Error(t, cache.Load())
	assert.NotNil(t, cache.GeneratedFileChecksums)
}

func TestBuilderPool(t *testing.T) {
	b := GetBuilder()
	b.WriteString("hello")
	PutBuilder(b)

	again := GetBuilder()
	assert.Equal(t, 0, again.Len())
	PutBuilder(again)
}
