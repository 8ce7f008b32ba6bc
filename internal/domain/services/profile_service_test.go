package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devilmonastery/jobfinder/internal/domain/entities"
	"github.com/devilmonastery/jobfinder/internal/domain/repositories"
	"github.com/devilmonastery/jobfinder/internal/upload"
)

func validInput() ProfileInput {
	return ProfileInput{
		Name:          "Asha Rao",
		City:          "Pune",
		Education:     "bachelors",
		PreferredRole: "Backend Developer",
		Experience:    "1-2",
		Skills:        []string{" Go ", "go", "SQL", ""},
		Bio:           "I like **distributed** systems",
	}
}

func TestProfileSave(t *testing.T) {
	ctx := context.Background()
	repo := newMemProfiles()
	svc := NewProfileService(repo, nil)

	exists, err := svc.Exists(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, exists)

	p, err := svc.Save(ctx, "u1", validInput())
	require.NoError(t, err)
	assert.Equal(t, "Bachelors", p.Education, "option matched case-insensitively")
	assert.Equal(t, []string{"Go", "SQL"}, p.Skills)

	exists, err = svc.Exists(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", got.Name)
	assert.Contains(t, BioHTML(got), "<strong>distributed</strong>")
}

func TestProfileSaveIncomplete(t *testing.T) {
	svc := NewProfileService(newMemProfiles(), nil)
	in := validInput()
	in.Name = "  "
	in.City = ""

	_, err := svc.Save(context.Background(), "u1", in)
	require.ErrorIs(t, err, ErrProfileIncomplete)

	var incomplete *ProfileIncompleteError
	require.True(t, errors.As(err, &incomplete))
	assert.Equal(t, []string{"name", "city"}, incomplete.Missing)

	exists, _ := svc.Exists(context.Background(), "u1")
	assert.False(t, exists, "an incomplete profile must not be stored")
}

func TestProfileSaveInvalidOption(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*ProfileInput)
		field      string
		suggestion string
	}{
		{"typo in education", func(in *ProfileInput) { in.Education = "Bachelor" }, "education", "Bachelors"},
		{"typo in role", func(in *ProfileInput) { in.PreferredRole = "Backend Developr" }, "preferred_role", "Backend Developer"},
		{"unrelated experience", func(in *ProfileInput) { in.Experience = "forty years of wisdom" }, "experience", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewProfileService(newMemProfiles(), nil)
			in := validInput()
			tt.mutate(&in)

			_, err := svc.Save(context.Background(), "u1", in)
			require.ErrorIs(t, err, ErrInvalidOption)
			var invalid *InvalidOptionError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tt.field, invalid.Field)
			assert.Equal(t, tt.suggestion, invalid.Suggestion)
			if tt.suggestion != "" {
				assert.Contains(t, err.Error(), "did you mean")
			}
		})
	}
}

func TestProfileGetMissing(t *testing.T) {
	svc := NewProfileService(newMemProfiles(), nil)
	_, err := svc.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, repositories.ErrProfileNotFound)
}

func TestProfileSetAvatar(t *testing.T) {
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		svc := NewProfileService(newMemProfiles(), nil)
		_, err := svc.SetAvatar(ctx, "u1", "me.png", strings.NewReader("img"))
		assert.ErrorIs(t, err, upload.ErrNotConfigured)
	})

	t.Run("before setup", func(t *testing.T) {
		svc := NewProfileService(newMemProfiles(), &fakeUploader{})
		_, err := svc.SetAvatar(ctx, "u1", "me.png", strings.NewReader("img"))
		assert.ErrorIs(t, err, repositories.ErrProfileNotFound)
	})

	t.Run("stores url", func(t *testing.T) {
		up := &fakeUploader{}
		svc := NewProfileService(newMemProfiles(), up)
		_, err := svc.Save(ctx, "u1", validInput())
		require.NoError(t, err)

		p, err := svc.SetAvatar(ctx, "u1", "me.png", strings.NewReader("img-bytes"))
		require.NoError(t, err)
		assert.Equal(t, "img-bytes", string(up.got))
		require.True(t, p.HasAvatar())
		assert.Contains(t, *p.AvatarURL, "avatars/me.png")
	})

	t.Run("upload failure", func(t *testing.T) {
		svc := NewProfileService(newMemProfiles(), &fakeUploader{err: &upload.Error{Status: 400, Message: "bad"}})
		_, err := svc.Save(ctx, "u1", validInput())
		require.NoError(t, err)
		_, err = svc.SetAvatar(ctx, "u1", "me.png", strings.NewReader("x"))
		var upErr *upload.Error
		assert.True(t, errors.As(err, &upErr))
	})
}

func TestMatchOption(t *testing.T) {
	canonical, _, ok := matchOption(" phd ", entities.EducationOptions)
	assert.True(t, ok)
	assert.Equal(t, "PhD", canonical)

	_, suggestion, ok := matchOption("Master", entities.EducationOptions)
	assert.False(t, ok)
	assert.Equal(t, "Masters", suggestion)
}
