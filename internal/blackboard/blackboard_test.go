package blackboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStagedWritesInvisibleUntilCommit(t *testing.T) {
	b := New()
	b.StageWrites("intro", map[string]any{"intro_text": "hello"})

	_, ok := b.Get("intro_text")
	assert.False(t, ok, "staged write must not be readable before commit")

	b.CommitBatch([]string{"intro"})

	v, ok := b.Get("intro_text")
	require.True(t, ok)
	assert.Equal(t, "hello", v)
}

func TestCommitAppliesInAscendingIDOrder(t *testing.T) {
	b := New()
	// Stage deliberately out of order; the committer must sort.
	b.StageWrites("zeta", map[string]any{"shared": "from-zeta"})
	b.StageWrites("alpha", map[string]any{"shared": "from-alpha"})
	b.CommitBatch([]string{"zeta", "alpha"})

	// alpha commits first, zeta last: deterministic last-writer-wins.
	assert.Equal(t, "from-zeta", b.GetDefault("shared", ""))
}

func TestGetDefault(t *testing.T) {
	b := New()
	assert.Equal(t, "fallback", b.GetDefault("missing", "fallback"))

	b.StageWrites("m", map[string]any{"present": 42})
	b.CommitBatch([]string{"m"})
	assert.Equal(t, 42, b.GetDefault("present", 0))
}

func TestStageMergesPerModule(t *testing.T) {
	b := New()
	b.StageWrites("m", map[string]any{"a": 1})
	b.StageWrites("m", map[string]any{"b": 2, "a": 3})
	b.CommitBatch([]string{"m"})

	assert.Equal(t, 3, b.GetDefault("a", 0))
	assert.Equal(t, 2, b.GetDefault("b", 0))
}

func TestCommitOnlyAppliesListedModules(t *testing.T) {
	b := New()
	b.StageWrites("committed", map[string]any{"x": 1})
	b.StageWrites("later", map[string]any{"y": 2})
	b.CommitBatch([]string{"committed"})

	_, ok := b.Get("y")
	assert.False(t, ok, "writes of unlisted modules must stay staged")

	b.CommitBatch([]string{"later"})
	assert.Equal(t, 2, b.GetDefault("y", 0))
}

func TestTypedKey(t *testing.T) {
	introText := Key[string]{Name: "intro_text", Owner: "intro"}

	b := New()
	k, v := introText.Write("typed hello")
	b.StageWrites(introText.Owner, map[string]any{k: v})
	b.CommitBatch([]string{introText.Owner})

	got, ok := introText.Get(b)
	require.True(t, ok)
	assert.Equal(t, "typed hello", got)
}

func TestTypedKeyMismatchedType(t *testing.T) {
	count := Key[int]{Name: "count", Owner: "counter"}

	b := New()
	b.StageWrites("counter", map[string]any{"count": "not-an-int"})
	b.CommitBatch([]string{"counter"})

	_, ok := count.Get(b)
	assert.False(t, ok)
	assert.Equal(t, 7, count.GetDefault(b, 7))
}

func TestSnapshotIsACopy(t *testing.T) {
	b := New()
	b.StageWrites("m", map[string]any{"k": "v"})
	b.CommitBatch([]string{"m"})

	snap := b.Snapshot()
	snap["k"] = "mutated"
	assert.Equal(t, "v", b.GetDefault("k", ""))
}
