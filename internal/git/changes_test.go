package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanDiff(t *testing.T) {
	in := "\ufeffdiff --git a/x b/x\r\n+one\x00\r\n+two\r+three\n"
	assert.Equal(t, "diff --git a/x b/x\n+one\n+two\n+three\n", cleanDiff(in))
}

func TestHasBinaryMarker(t *testing.T) {
	assert.True(t, hasBinaryMarker("diff --git a/a b/a\nBinary files a/a and b/a differ\n"))
	assert.False(t, hasBinaryMarker("+// Binary files are skipped\n"))
	assert.False(t, hasBinaryMarker(""))
}

func TestSplitNull(t *testing.T) {
	assert.Equal(t, []string{"a.go", "dir/b c.md"}, splitNull("a.go\x00dir/b c.md\x00"))
	assert.Nil(t, splitNull(""))
	assert.Nil(t, splitNull("\x00\x00"))
}

func TestParseNumstat(t *testing.T) {
	adds, dels := parseNumstat("10\t2\ta.go\n-\t-\timg.png\n0\t7\tREADME.md\n\n")
	assert.Equal(t, 10, adds)
	assert.Equal(t, 9, dels)
}

func TestChangeSetLines(t *testing.T) {
	assert.Equal(t, 0, ChangeSet{}.Lines())
	assert.Equal(t, 1, ChangeSet{Diff: "one"}.Lines())
	assert.Equal(t, 3, ChangeSet{Diff: "one\ntwo\nthree\n"}.Lines())
}
