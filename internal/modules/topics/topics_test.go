package topics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryansondharva/Aura/internal/platform/logger"
)

func unit(i, dims int) []float32 {
	v := make([]float32, dims)
	v[i] = 1
	return v
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, Cosine([]float32{0, 0}, []float32{1, 1}))
}

func TestCluster_AllSimilarIsOneCluster(t *testing.T) {
	emb := [][]float32{{1, 0.1}, {1, 0.2}, {0.9, 0.15}, {1, 0}}
	got := Cluster(emb, DefaultThreshold)
	require.Len(t, got, 1)
	assert.Equal(t, []int{0, 1, 2, 3}, got[0])
}

func TestCluster_AllDissimilarIsSingletons(t *testing.T) {
	emb := [][]float32{unit(0, 4), unit(1, 4), unit(2, 4), unit(3, 4)}
	got := Cluster(emb, DefaultThreshold)
	assert.Equal(t, [][]int{{0}, {1}, {2}, {3}}, got)
}

func TestCluster_SingleLinkageIsTransitive(t *testing.T) {
	// 0~1 and 1~2 are above threshold, 0~2 is not.
	emb := [][]float32{{1, 0}, {0.7071, 0.7071}, {0, 1}, {-1, 0}}
	got := Cluster(emb, DefaultThreshold)
	assert.Equal(t, [][]int{{0, 1, 2}, {3}}, got)
}

func TestCluster_ThresholdIsStrict(t *testing.T) {
	// cosine is exactly 0.5
	emb := [][]float32{{1, 0}, {0.5, 0.8660254}}
	got := Cluster(emb, 0.5000001)
	assert.Len(t, got, 2)
	assert.Len(t, Cluster(emb, 0.49), 1)
}

func TestCluster_OrderedBySmallestMember(t *testing.T) {
	emb := [][]float32{unit(0, 3), unit(1, 3), unit(0, 3), unit(2, 3), unit(1, 3)}
	got := Cluster(emb, DefaultThreshold)
	assert.Equal(t, [][]int{{0, 2}, {1, 4}, {3}}, got)
}

func TestCluster_Empty(t *testing.T) {
	assert.Empty(t, Cluster(nil, DefaultThreshold))
}

func TestMergeContent(t *testing.T) {
	texts := []string{"a", "b", "c"}
	assert.Equal(t, "a\nc", MergeContent(texts, []int{2, 0}))
}

func TestJaccard(t *testing.T) {
	assert.Equal(t, 1.0, Jaccard("Cell Biology!", "cell, biology"))
	assert.InDelta(t, 1.0/3.0, Jaccard("cell biology", "cell division"), 1e-9)
	assert.Equal(t, 0.0, Jaccard("atoms", "genes"))
	assert.InDelta(t, 0.8, Jaccard("a b c d", "a b c d e"), 1e-9)
}

func TestParseTitleReply(t *testing.T) {
	title, summary := parseTitleReply("Title: The Structure Of Plant Cells Explained Simply\nSummary: Cells have walls. They also have chloroplasts.")
	assert.Equal(t, "The Structure Of Plant Cells", title)
	assert.Equal(t, "Cells have walls. They also have chloroplasts.", summary)

	title, summary = parseTitleReply("**Title:** Photosynthesis\n**Summary:** Light becomes sugar.")
	assert.Equal(t, "Photosynthesis", title)
	assert.Equal(t, "Light becomes sugar.", summary)

	title, summary = parseTitleReply("Genetics Basics\nDNA stores information.")
	assert.Equal(t, "Genetics Basics", title)
	assert.Equal(t, "DNA stores information.", summary)
}

type scriptedGen struct {
	replies []string
	prompts []string
	err     error
}

func (s *scriptedGen) GenerateText(_ context.Context, _ string, user string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.prompts = append(s.prompts, user)
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r, nil
}

func TestBuild_DropsNearDuplicateTitles(t *testing.T) {
	gen := &scriptedGen{replies: []string{
		"Title: Cell Biology Basics\nSummary: one.",
		"Title: cell biology basics!\nSummary: two.",
		"Title: Organic Chemistry\nSummary: three.",
	}}
	out, err := Build(context.Background(), BuildDeps{Log: logger.Nop(), Gen: gen}, BuildInput{
		Texts:      []string{"t0", "t1", "t2"},
		Embeddings: [][]float32{unit(0, 3), unit(1, 3), unit(2, 3)},
	})
	require.NoError(t, err)
	require.Len(t, out.Topics, 2)
	assert.Equal(t, "Cell Biology Basics", out.Topics[0].Title)
	assert.Equal(t, "Organic Chemistry", out.Topics[1].Title)
	assert.Equal(t, 2, out.Topics[1].ClusterIndex)
	assert.Equal(t, 1, out.Deduped)
	assert.Empty(t, out.Advisory)
}

func TestBuild_AdvisoryAboveLimit(t *testing.T) {
	n := AdvisoryClusterLimit + 1
	texts := make([]string, n)
	emb := make([][]float32, n)
	replies := make([]string, n)
	for i := 0; i < n; i++ {
		texts[i] = fmt.Sprintf("text %d", i)
		emb[i] = unit(i, n)
		replies[i] = fmt.Sprintf("Title: Topic number %d\nSummary: s.", i)
	}
	out, err := Build(context.Background(), BuildDeps{Log: logger.Nop(), Gen: &scriptedGen{replies: replies}}, BuildInput{Texts: texts, Embeddings: emb})
	require.NoError(t, err)
	assert.Equal(t, n, out.ClusterCount)
	assert.NotEmpty(t, out.Advisory)
	assert.Len(t, out.Topics, n)
}

func TestBuild_TruncatesPromptContent(t *testing.T) {
	gen := &scriptedGen{replies: []string{"Title: Long\nSummary: s."}}
	long := strings.Repeat("z", 5000)
	_, err := Build(context.Background(), BuildDeps{Log: logger.Nop(), Gen: gen}, BuildInput{
		Texts:          []string{long},
		Embeddings:     [][]float32{{1}},
		PromptMaxChars: 100,
	})
	require.NoError(t, err)
	require.Len(t, gen.prompts, 1)
	assert.Equal(t, 100, strings.Count(gen.prompts[0], "z"))
}

func TestBuild_GeneratorFailure(t *testing.T) {
	_, err := Build(context.Background(), BuildDeps{Log: logger.Nop(), Gen: &scriptedGen{err: errors.New("down")}}, BuildInput{
		Texts:      []string{"x"},
		Embeddings: [][]float32{{1}},
	})
	assert.Error(t, err)
}
