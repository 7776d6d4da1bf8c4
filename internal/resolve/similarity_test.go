package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	t.Parallel()

	t.Run("identical names score 1", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 1.0, Similarity("STEPHEN CURRY", "STEPHEN CURRY"))
	})

	t.Run("token order is ignored", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 1.0, Similarity("CURRY STEPHEN", "STEPHEN CURRY"))
	})

	t.Run("close spellings score high", func(t *testing.T) {
		t.Parallel()
		s := Similarity("STEPH CURRY", "STEPHEN CURRY")
		assert.Greater(t, s, 0.8)
		assert.Less(t, s, 1.0)
	})

	t.Run("different players score low", func(t *testing.T) {
		t.Parallel()
		assert.Less(t, Similarity("STEPHEN CURRY", "NIKOLA JOKIC"), 0.5)
	})

	t.Run("empty input scores zero", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 0.0, Similarity("", "STEPHEN CURRY"))
		assert.Equal(t, 0.0, Similarity("STEPHEN CURRY", ""))
	})
}
