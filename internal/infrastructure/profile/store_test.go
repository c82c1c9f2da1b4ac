package profile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_EmbeddedSample(t *testing.T) {
	p, err := NewStore("").Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "John", p.PersonalInfo.FirstName)
	assert.Equal(t, "No", p.PersonalInfo.VeteranStatus)
	require.Len(t, p.WorkExperience, 2)
	assert.Equal(t, "Tech Corp", p.WorkExperience[0].Company, "most recent job first")
	require.Len(t, p.Education, 1)
	assert.Contains(t, p.Skills, "Python")
}

func TestStore_JSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "me.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"personalInfo": {"firstName": "Ada", "email": "a@b.com"}, "skills": ["math"], "resumeFile": "resume.pdf"}`), 0o600))

	p, err := NewStore(path).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Ada", p.PersonalInfo.FirstName)
	assert.Equal(t, "a@b.com", p.PersonalInfo.Email)
	assert.Equal(t, []string{"math"}, p.Skills)
	assert.Equal(t, filepath.Join(dir, "resume.pdf"), p.ResumeFile)
}

func TestStore_Errors(t *testing.T) {
	_, err := NewStore(filepath.Join(t.TempDir(), "missing.yaml")).Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("personalInfo: [unclosed"), 0o600))
	_, err = NewStore(path).Load(context.Background())
	assert.ErrorContains(t, err, "decode profile")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewStore("").Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEncode_RoundTripsSample(t *testing.T) {
	p, err := Decode(sampleProfile)
	require.NoError(t, err)

	out, err := Encode(p)
	require.NoError(t, err)
	assert.Contains(t, string(out), "firstName: John")
}
