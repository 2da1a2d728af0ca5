package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/sheetz/internal/problem"
)

func filterCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	addFilterFlags(c)
	require.NoError(t, c.ParseFlags(args))
	return c
}

func TestFilterFromFlags(t *testing.T) {
	c := filterCommand(t,
		"--subject", "math,physics",
		"--chapter", "Calculus / Derivatives/",
		"--min-difficulty", "2",
		"--max-difficulty", "4",
		"--min-rate", "30",
		"--year", "2022,2023",
		"--tag", "graph",
		"-n", "10",
	)

	f, err := filterFromFlags(c)
	require.NoError(t, err)
	assert.Equal(t, []string{"math", "physics"}, f.Subjects)
	assert.Equal(t, []string{"Calculus", "Derivatives"}, f.ChapterPrefix)
	assert.Equal(t, 2, f.MinDifficulty)
	assert.Equal(t, 4, f.MaxDifficulty)
	require.NotNil(t, f.MinCorrectRate)
	assert.Equal(t, 30.0, *f.MinCorrectRate)
	assert.Nil(t, f.MaxCorrectRate)
	assert.Equal(t, []int{2022, 2023}, f.ExamYears)
	assert.Equal(t, []string{"graph"}, f.Tags)
	assert.Equal(t, 10, f.Limit)
}

func TestFilterFromFlags_Defaults(t *testing.T) {
	f, err := filterFromFlags(filterCommand(t))
	require.NoError(t, err)
	assert.Empty(t, f.Subjects)
	assert.Nil(t, f.MinCorrectRate)
	assert.Nil(t, f.MaxCorrectRate)
	assert.Zero(t, f.Limit)
}

func TestFilterFromFlags_RejectsInvertedBounds(t *testing.T) {
	_, err := filterFromFlags(filterCommand(t, "--min-difficulty", "4", "--max-difficulty", "2"))
	assert.Error(t, err)
}

func createCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "create"}
	c.Flags().String("title", "", "")
	c.Flags().String("author", "", "")
	c.Flags().String("sort", "", "")
	c.Flags().Bool("desc", false, "")
	c.Flags().Bool("answers", true, "")
	c.Flags().Bool("badges", false, "")
	addFilterFlags(c)
	require.NoError(t, c.ParseFlags(args))
	return c
}

func TestBuildFileFromFlags_IDs(t *testing.T) {
	c := createCommand(t, "--title", "Review", "--sort", "difficulty", "--answers=false")

	bf, err := buildFileFromFlags(c, []string{"p1", "p2"})
	require.NoError(t, err)
	assert.Equal(t, "Review", bf.Title)
	assert.Equal(t, []string{"p1", "p2"}, bf.Problems)
	assert.Nil(t, bf.Filter)
	assert.False(t, bf.Answers())
	assert.Equal(t, string(problem.SortDifficulty), bf.Sort)
}

func TestBuildFileFromFlags_Filter(t *testing.T) {
	c := createCommand(t, "--title", "Calc", "--subject", "math")

	bf, err := buildFileFromFlags(c, nil)
	require.NoError(t, err)
	require.NotNil(t, bf.Filter)
	assert.Equal(t, []string{"math"}, bf.Filter.Subjects)
	assert.True(t, bf.Answers())
}

func TestBuildFileFromFlags_RequiresTitle(t *testing.T) {
	_, err := buildFileFromFlags(createCommand(t), []string{"p1"})
	assert.Error(t, err)
}

func TestBuildFileFromFlags_RejectsUnknownSort(t *testing.T) {
	_, err := buildFileFromFlags(createCommand(t, "--title", "x", "--sort", "random"), []string{"p1"})
	assert.Error(t, err)
}

func TestIsBuildFile(t *testing.T) {
	assert.True(t, isBuildFile("week1.yaml"))
	assert.True(t, isBuildFile("dir/Week1.YML"))
	assert.False(t, isBuildFile("3f2b8c9e-1d2a-4c5b-9e8f-7a6b5c4d3e2f"))
	assert.False(t, isBuildFile("notes.json"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.0012", formatCost(0.00123))
	assert.Equal(t, "$1.50", formatCost(1.5))
}

func TestPrettyJSON(t *testing.T) {
	assert.Equal(t, "{\n  \"a\": 1\n}", prettyJSON(`{"a":1}`))
	assert.Equal(t, "rate limited", prettyJSON("rate limited"))
}

func TestResolveVersion(t *testing.T) {
	assert.Equal(t, "v1.2.0", resolveVersion("v1.2.0", "v0.9.0"))
	assert.Equal(t, "v0.9.0", resolveVersion("", "v0.9.0"))
	assert.Equal(t, "(devel)", resolveVersion("", "(devel)"))
	assert.Equal(t, "(devel)", resolveVersion("", ""))
}
