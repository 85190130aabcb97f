package profile

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalProfile = `
server:
  name: test-server
  version: 0.0.1
about: hello
workouts:
  - name: One
    exercises: [a]
  - name: Two
`

func TestDefault(t *testing.T) {
	p, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "Erik Personal MCP-Server", p.Server.Name)
	assert.Equal(t, "1.0.0", p.Server.Version)
	assert.Equal(t, "Erik", p.Server.Author)
	assert.Len(t, p.Workouts, 6)
	assert.True(t, strings.HasPrefix(p.About, "I help people and organisations"))
	assert.False(t, strings.HasSuffix(p.About, "\n"))
	assert.Equal(t, "Erik Personal MCP-Server/daemon", p.ProbeName())
	assert.Len(t, p.CV.Experience, 5)
}

func TestLoad(t *testing.T) {
	t.Run("empty path yields default", func(t *testing.T) {
		p, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "Erik Personal MCP-Server", p.Server.Name)
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "profile.yaml")
		require.NoError(t, os.WriteFile(path, []byte(minimalProfile), 0o644))

		p, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "test-server", p.Server.Name)
		assert.Equal(t, "test-server", p.ProbeName())
		assert.Len(t, p.Workouts, 2)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
}

func TestDecode_Validation(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"unknown field", minimalProfile + "bogus: 1\n", "bogus"},
		{"missing server name", "server: {version: '1'}\nabout: x\nworkouts: [{name: a}]\n", "server.name"},
		{"missing about", "server: {name: s, version: '1'}\nworkouts: [{name: a}]\n", "about"},
		{"no workouts", "server: {name: s, version: '1'}\nabout: x\n", "at least one workout"},
		{"duplicate workout", "server: {name: s, version: '1'}\nabout: x\nworkouts: [{name: a}, {name: a}]\n", "duplicate"},
		{"unnamed workout", "server: {name: s, version: '1'}\nabout: x\nworkouts: [{duration: five}]\n", "name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseCVFormat(t *testing.T) {
	for _, s := range []string{"text", "structured", "employers"} {
		f, err := ParseCVFormat(s)
		require.NoError(t, err)
		assert.Equal(t, CVFormat(s), f)
	}

	_, err := ParseCVFormat("pdf")
	require.ErrorIs(t, err, ErrUnknownCVFormat)
}

func TestCV_Document(t *testing.T) {
	p, err := Default()
	require.NoError(t, err)

	t.Run("text lists every employer", func(t *testing.T) {
		doc, err := p.CV.Document(CVFormatText)
		require.NoError(t, err)
		text, ok := doc.(string)
		require.True(t, ok)

		assert.True(t, strings.HasPrefix(text, "name: Erik\n"))
		for _, e := range p.CV.Experience {
			assert.Contains(t, text, e.Employer+":\n")
		}
		assert.Contains(t, text, "- Head of Protective Services (Jul 2023 – Present, Stockholm, Sweden)\n")
		assert.Contains(t, text, "  • Degree: Teknologie kandidatexamen (tekn.kand.)\n")
		assert.Contains(t, text, "- Who dares wins\n")
	})

	t.Run("structured has nested sections", func(t *testing.T) {
		doc, err := p.CV.Document(CVFormatStructured)
		require.NoError(t, err)

		raw, err := json.Marshal(doc)
		require.NoError(t, err)
		var obj map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw, &obj))

		for _, key := range []string{"personalInfo", "experience", "education", "skills", "interests", "mottos"} {
			assert.Contains(t, obj, key)
		}
	})

	t.Run("employers is keyed by employer", func(t *testing.T) {
		doc, err := p.CV.Document(CVFormatEmployers)
		require.NoError(t, err)

		byEmployer, ok := doc.(map[string][]Role)
		require.True(t, ok)
		assert.Len(t, byEmployer, 5)
		assert.Len(t, byEmployer["SRS Security"], 4)
		assert.Equal(t, "Security Operator", byEmployer["Soya Group Support AB"][0].Title)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := p.CV.Document(CVFormat("xml"))
		require.ErrorIs(t, err, ErrUnknownCVFormat)
	})
}
