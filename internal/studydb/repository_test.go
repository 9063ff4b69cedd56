package studydb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwaldhauser/incentiva/internal/vignette"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := NewMemoryDB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(db)
}

func TestGetFactors(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.AddVignetteText(ctx, "visibility", "public", "Everyone can see it."))
	require.NoError(t, repo.AddVignetteText(ctx, "visibility", "private", "Only you can see it."))
	require.NoError(t, repo.AddVignetteText(ctx, "compensation", "money", "You get paid."))

	factors, err := repo.GetFactors(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]map[string]string{
		"visibility":   {"public": "Everyone can see it.", "private": "Only you can see it."},
		"compensation": {"money": "You get paid."},
	}, factors)
}

func TestGetVignetteTemplate(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	study, err := repo.CreateStudy(ctx, "pilot", "pilot study", "Imagine: $visibility")
	require.NoError(t, err)

	template, err := repo.GetVignetteTemplate(ctx, study.ID)
	require.NoError(t, err)
	assert.Equal(t, "Imagine: $visibility", template)

	// Unknown study ids render template-less, not as an error.
	template, err = repo.GetVignetteTemplate(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, template)
}

func TestGeneratorAgainstRepository(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	study, err := repo.CreateStudy(ctx, "pilot", "", "You see: $visibility $compensation")
	require.NoError(t, err)
	require.NoError(t, repo.AddVignetteText(ctx, "visibility", "public", "everything in public."))
	require.NoError(t, repo.AddVignetteText(ctx, "visibility", "private", "only your own data."))
	require.NoError(t, repo.AddVignetteText(ctx, "compensation", "money", "A bonus is paid."))

	gen := vignette.NewGenerator(repo)
	vignettes, err := gen.Enumerate(ctx, study.ID, nil)
	require.NoError(t, err)

	// 2 visibility levels x 1 compensation level.
	require.Len(t, vignettes, 2)
	texts := make(map[string]bool)
	for _, text := range vignettes {
		texts[text] = true
	}
	assert.True(t, texts["You see: everything in public. A bonus is paid."])
	assert.True(t, texts["You see: only your own data. A bonus is paid."])
}

func TestParticipantFlow(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "")
	require.NoError(t, err)
	require.NotEmpty(t, user.UUID)

	fetched, err := repo.GetUser(ctx, user.UUID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, user.UUID, fetched.UUID)

	at, err := repo.CreateAnswerType(ctx, "likert_5", "5 point likert scale", 5, 1)
	require.NoError(t, err)
	q, err := repo.CreateQuestion(ctx, "How acceptable is this scenario?", at.ID)
	require.NoError(t, err)

	vignetteID := vignette.GenerateID(1, map[string]*string{"visibility": nil})
	require.NoError(t, repo.AddQuestionAnswer(ctx, user.UUID, q.ID, vignetteID, "4"))
	require.NoError(t, repo.AddFeedback(ctx, user.UUID, "fine", "", "more tea"))
	require.NoError(t, repo.AddDemographics(ctx, Demographics{
		UserUUID: user.UUID,
		Age:      34,
		Gender:   "non-binary",
		Country:  "DE",
	}))
	require.NoError(t, repo.AddPersonalData(ctx, user.UUID, "occupation", "researcher"))

	answers, err := repo.GetAnsweredQuestions(ctx, user.UUID)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, vignetteID, answers[0].VignetteID)
	assert.Equal(t, "4", answers[0].Answer)
}

func TestGetUserUnknown(t *testing.T) {
	repo := newTestRepository(t)

	user, err := repo.GetUser(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, user)
}
