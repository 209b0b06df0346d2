package imap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateQuerySingleField(t *testing.T) {
	criteria, err := translateQuery("from:alice@example.com")
	require.NoError(t, err)

	assert.Equal(t, []string{"alice@example.com"}, criteria.Header["From"])
	assert.True(t, criteria.Since.IsZero())
	assert.Empty(t, criteria.Or)
}

func TestTranslateQueryWithTimeBound(t *testing.T) {
	criteria, err := translateQuery("from:alice@example.com after:1700000000")
	require.NoError(t, err)

	assert.Equal(t, []string{"alice@example.com"}, criteria.Header["From"])
	assert.Equal(t, time.Unix(1700000000, 0), criteria.Since)
}

func TestTranslateQueryAlternatives(t *testing.T) {
	criteria, err := translateQuery("to:a@b.com OR cc:a@b.com OR bcc:a@b.com")
	require.NoError(t, err)

	// Nested OR tree: ((to OR cc) OR bcc)
	require.Len(t, criteria.Or, 1)
	outer := criteria.Or[0]
	assert.Equal(t, []string{"a@b.com"}, outer[1].Header["Bcc"])

	require.Len(t, outer[0].Or, 1)
	inner := outer[0].Or[0]
	assert.Equal(t, []string{"a@b.com"}, inner[0].Header["To"])
	assert.Equal(t, []string{"a@b.com"}, inner[1].Header["Cc"])
}

func TestTranslateQueryAppliesSinceToAllAlternatives(t *testing.T) {
	criteria, err := translateQuery("to:a@b.com OR cc:a@b.com after:1700000000")
	require.NoError(t, err)

	require.Len(t, criteria.Or, 1)
	for _, alt := range criteria.Or[0] {
		assert.Equal(t, time.Unix(1700000000, 0), alt.Since)
	}
}

func TestTranslateQueryRejectsEmpty(t *testing.T) {
	_, err := translateQuery("free text with no fields")
	assert.Error(t, err)
}

func TestSplitThreadID(t *testing.T) {
	folder, uid, err := splitThreadID("INBOX:42")
	require.NoError(t, err)
	assert.Equal(t, "INBOX", folder)
	assert.Equal(t, uint32(42), uid)

	_, _, err = splitThreadID("no-separator")
	assert.Error(t, err)

	_, _, err = splitThreadID("INBOX:not-a-number")
	assert.Error(t, err)
}
