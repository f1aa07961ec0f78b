package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategory_Valid(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.Valid(), "%q should be valid", c)
	}

	for _, raw := range []string{"", "recipes", "Weekly menu", "Events", " Offers"} {
		assert.False(t, Category(raw).Valid(), "%q should be invalid", raw)
	}
}

func TestPost_TagList(t *testing.T) {
	tags := " vegan, ,quick ,  budget"
	p := &Post{Tags: &tags}
	assert.Equal(t, []string{"vegan", "quick", "budget"}, p.TagList())

	assert.Equal(t, []string{}, (&Post{}).TagList())
}

func TestPost_MarshalJSON(t *testing.T) {
	tags := "soup,winter"
	p := Post{ID: 7, Title: "Lentil soup", Category: CategoryRecipes, Tags: &tags, LikesCount: 3}

	raw, err := json.Marshal(&p)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "Recipes", out["category"])
	assert.Equal(t, float64(3), out["likes_count"])
	assert.Equal(t, []any{"soup", "winter"}, out["tags_list"])
	assert.Nil(t, out["location"])
	assert.NotContains(t, out, "comments")
}
