package build

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/janpfeifer/must"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glbind/glbind/internal/codegen"
	"github.com/glbind/glbind/internal/codegen/cheader"
	"github.com/glbind/glbind/internal/config"
	"github.com/glbind/glbind/internal/errors"
	"github.com/glbind/glbind/internal/fileio"
	"github.com/glbind/glbind/internal/registry"
)

// Test plan for HeaderBuilder:
// 1. Build over the testdata registries matches the golden header
// 2. Registries are merged in configured order
// 3. Missing, malformed and oversized registries fail with their exit codes
// 4. A missing reference fails and writes nothing
// 5. Check passes on a fresh header and fails on a stale one
// 6. features.max_version filters features
// 7. GetArtifacts requires a successful build
// 8. A custom marker table replaces the default generators

func testdataConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	cfg := config.Default()
	cfg.Output = filepath.Join(t.TempDir(), "glbind.h")
	return cfg, "testdata"
}

func newTestBuilder(cfg *config.Config, root string) *HeaderBuilder {
	return NewHeaderBuilder(cfg, root, fileio.OS(0), zerolog.New(os.Stderr).Level(zerolog.ErrorLevel))
}

func TestNewHeaderBuilder(t *testing.T) {
	cfg := config.Default()
	files := fileio.OS(0)

	builder := NewHeaderBuilder(cfg, "/test/project", files, zerolog.Nop())

	assert.NotNil(t, builder)
	assert.Equal(t, cfg, builder.config)
	assert.Equal(t, "/test/project", builder.projectRoot)
	assert.Same(t, files, builder.files)
}

func TestHeaderBuilder_BuildMatchesGolden(t *testing.T) {
	cfg, root := testdataConfig(t)
	builder := newTestBuilder(cfg, root)

	require.NoError(t, builder.Build())

	want := must.M1(os.ReadFile(filepath.Join("testdata", "glbind.h")))
	got := must.M1(os.ReadFile(cfg.Output))
	assert.Equal(t, string(want), string(got))

	artifacts, err := builder.GetArtifacts()
	require.NoError(t, err)
	assert.Equal(t, cfg.Output, artifacts.OutputPath)
	assert.Equal(t, len(want), artifacts.BuildInfo.OutputSize)
	assert.Equal(t, []string{
		filepath.Join("testdata", "resources", "gl.xml"),
		filepath.Join("testdata", "resources", "wgl.xml"),
		filepath.Join("testdata", "resources", "glx.xml"),
	}, artifacts.BuildInfo.Registries)
	assert.False(t, artifacts.BuildInfo.Timestamp.IsZero())
	assert.Len(t, artifacts.Registry.Features, 5)
}

func TestHeaderBuilder_BuildKeepsTemplateLayout(t *testing.T) {
	// Test: the generated text ends in a newline and the template's own
	// newline and blank line after the marker are kept
	cfg, root := testdataConfig(t)
	require.NoError(t, newTestBuilder(cfg, root).Build())

	got := string(must.M1(os.ReadFile(cfg.Output)))
	assert.True(t, strings.HasPrefix(got, "#ifndef GLBIND_H\n#define GLBIND_H\n\n#ifndef GL_VERSION_1_0\n"))
	assert.True(t, strings.HasSuffix(got, "#endif /* GLBIND_GLX */\n\n\n#endif\n"))
}

// fixedGenerator returns the same text for every registry
type fixedGenerator struct {
	text string
}

func (g fixedGenerator) Name() string { return "fixed" }

func (g fixedGenerator) Generate(reg *registry.Registry) ([]byte, error) {
	return []byte(g.text), nil
}

func TestHeaderBuilder_WithMarkers(t *testing.T) {
	// Test: a custom marker table replaces the default generators
	cfg, root := testdataConfig(t)
	markers := codegen.NewMarkers()
	markers.Register(cheader.MainMarker, func(opts codegen.Options) codegen.Generator {
		return fixedGenerator{text: "/* generated */"}
	})

	builder := newTestBuilder(cfg, root).WithMarkers(markers)
	require.NoError(t, builder.Build())

	got := string(must.M1(os.ReadFile(cfg.Output)))
	assert.Equal(t, "#ifndef GLBIND_H\n#define GLBIND_H\n\n/* generated */\n\n#endif\n", got)
}

func TestHeaderBuilder_BuildIsIdempotent(t *testing.T) {
	cfg, root := testdataConfig(t)
	builder := newTestBuilder(cfg, root)

	require.NoError(t, builder.Build())
	first := must.M1(os.ReadFile(cfg.Output))
	require.NoError(t, builder.Build())
	second := must.M1(os.ReadFile(cfg.Output))

	assert.Equal(t, first, second)
}

func TestHeaderBuilder_LoadRegistriesMergesInOrder(t *testing.T) {
	cfg, root := testdataConfig(t)
	cfg.Registries = []string{"resources/glx.xml", "resources/gl.xml"}

	reg, err := newTestBuilder(cfg, root).LoadRegistries()
	require.NoError(t, err)

	require.NotEmpty(t, reg.Types)
	assert.Equal(t, "GLXContext", reg.Types[0].Name)
	assert.Equal(t, "GLX_VERSION_1_0", reg.Features[0].Name)
	assert.Equal(t, "GL_VERSION_1_0", reg.Features[1].Name)
}

func TestHeaderBuilder_Failures(t *testing.T) {
	tests := []struct {
		name        string
		files       map[string]string
		maxSize     uint64
		wantCode    int
		errContains string
	}{
		{
			name:        "missing registry",
			files:       map[string]string{"tmpl.h": "/*<<opengl_main>>*/"},
			wantCode:    errors.ExitLoad,
			errContains: "failed to load registry gl.xml",
		},
		{
			name:        "malformed registry",
			files:       map[string]string{"gl.xml": "<registry api=></registry>", "tmpl.h": ""},
			wantCode:    errors.ExitParse,
			errContains: "failed to parse registry gl.xml",
		},
		{
			name:        "wrong root element",
			files:       map[string]string{"gl.xml": "<vk/>", "tmpl.h": ""},
			wantCode:    errors.ExitParse,
			errContains: `unexpected root element: expected "registry", got "vk"`,
		},
		{
			name:     "registry too large",
			files:    map[string]string{"gl.xml": "<registry>" + string(make([]byte, 64)) + "</registry>", "tmpl.h": ""},
			maxSize:  32,
			wantCode: errors.ExitFileTooLarge,
		},
		{
			name: "missing reference",
			files: map[string]string{
				"gl.xml": `<registry><feature api="gl" name="GL_VERSION_1_0"><require><enum name="GL_NOPE"/></require></feature></registry>`,
				"tmpl.h": "/*<<opengl_main>>*/",
			},
			wantCode:    errors.ExitResolve,
			errContains: `feature GL_VERSION_1_0: enum "GL_NOPE"`,
		},
		{
			name:     "missing template",
			files:    map[string]string{"gl.xml": "<registry/>"},
			wantCode: errors.ExitTemplateRead,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			for name, content := range tt.files {
				require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0644))
			}
			cfg := &config.Config{
				Registries: []string{"gl.xml"},
				Template:   "tmpl.h",
				Output:     "out.h",
			}

			builder := NewHeaderBuilder(cfg, "", fileio.New(fs, tt.maxSize), zerolog.Nop())
			err := builder.Build()

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.ExitCode(err))
			if tt.errContains != "" {
				assert.Contains(t, err.Error(), tt.errContains)
			}

			exists, _ := afero.Exists(fs, "out.h")
			assert.False(t, exists, "nothing is written on failure")

			_, err = builder.GetArtifacts()
			assert.Error(t, err)
		})
	}
}

func TestHeaderBuilder_Check(t *testing.T) {
	cfg, root := testdataConfig(t)
	builder := newTestBuilder(cfg, root)

	// Missing output is stale
	diff, err := builder.Check()
	assert.True(t, errors.Is(err, errors.ErrStale))
	assert.NotEmpty(t, diff)

	require.NoError(t, builder.Build())
	diff, err = builder.Check()
	require.NoError(t, err)
	assert.Empty(t, diff)

	require.NoError(t, os.WriteFile(cfg.Output, []byte("stale\n"), 0644))
	diff, err = builder.Check()
	assert.Equal(t, errors.ExitStale, errors.ExitCode(err))
	assert.Contains(t, diff, "-stale\n")
	assert.Contains(t, diff, "+#ifndef GL_VERSION_1_0\n")
}

func TestHeaderBuilder_MaxVersion(t *testing.T) {
	cfg, root := testdataConfig(t)
	cfg.Features.MaxVersion = "1.0"

	require.NoError(t, newTestBuilder(cfg, root).Build())

	out := string(must.M1(os.ReadFile(cfg.Output)))
	assert.Contains(t, out, "#ifndef GL_VERSION_1_0")
	assert.NotContains(t, out, "GL_VERSION_1_1")
	assert.Contains(t, out, "#ifndef WGL_VERSION_1_0")
	assert.Contains(t, out, "#ifndef GLX_VERSION_1_0")
	assert.Contains(t, out, "#ifndef GL_KHR_debug")
}

func TestHeaderBuilder_GetArtifactsBeforeBuild(t *testing.T) {
	builder := NewHeaderBuilder(config.Default(), "", fileio.OS(0), zerolog.Nop())

	artifacts, err := builder.GetArtifacts()
	assert.Error(t, err)
	assert.Nil(t, artifacts)
}
