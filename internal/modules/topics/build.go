package topics

import (
	"context"
	"fmt"

	"github.com/aryansondharva/Aura/internal/modules/ai"
	"github.com/aryansondharva/Aura/internal/platform/logger"
)

const AdvisoryClusterLimit = 30

type Candidate struct {
	ClusterIndex  int
	Members       []int
	Title         string
	Summary       string
	MergedContent string
}

type BuildDeps struct {
	Log *logger.Logger
	Gen ai.TextGenerator
}

type BuildInput struct {
	Texts      []string
	Embeddings [][]float32
	// Threshold <= 0 uses DefaultThreshold.
	Threshold      float64
	PromptMaxChars int
}

type BuildOutput struct {
	Topics       []Candidate
	ClusterCount int
	Deduped      int
	Advisory     string
}

// Build clusters the chunks, asks for a title and summary per cluster in order, and drops
// clusters whose title is too close to one already accepted in this run.
func Build(ctx context.Context, deps BuildDeps, in BuildInput) (BuildOutput, error) {
	out := BuildOutput{}
	if deps.Log == nil || deps.Gen == nil {
		return out, fmt.Errorf("topics_build: missing deps")
	}
	if len(in.Texts) != len(in.Embeddings) {
		return out, fmt.Errorf("topics_build: %d texts but %d embeddings", len(in.Texts), len(in.Embeddings))
	}
	if len(in.Texts) == 0 {
		return out, nil
	}
	threshold := in.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	clusters := Cluster(in.Embeddings, threshold)
	out.ClusterCount = len(clusters)
	if len(clusters) > AdvisoryClusterLimit {
		out.Advisory = fmt.Sprintf("document produced %d topics; generation may be rate limited", len(clusters))
		deps.Log.Warn("cluster count above advisory limit", "clusters", len(clusters), "limit", AdvisoryClusterLimit)
	}

	titler := Titler{Gen: deps.Gen, MaxChars: in.PromptMaxChars}
	var accepted []string
	for i, members := range clusters {
		merged := MergeContent(in.Texts, members)
		title, summary, err := titler.Title(ctx, merged)
		if err != nil {
			return out, fmt.Errorf("topics_build: title cluster %d: %w", i, err)
		}
		if dup, against := isNearDuplicate(title, accepted); dup {
			deps.Log.Info("dropping cluster with near-duplicate title", "cluster", i, "title", title, "matches", against)
			out.Deduped++
			continue
		}
		accepted = append(accepted, title)
		out.Topics = append(out.Topics, Candidate{
			ClusterIndex:  i,
			Members:       members,
			Title:         title,
			Summary:       summary,
			MergedContent: merged,
		})
	}
	return out, nil
}

func isNearDuplicate(title string, accepted []string) (bool, string) {
	for _, prev := range accepted {
		if Jaccard(title, prev) > DedupThreshold {
			return true, prev
		}
	}
	return false, ""
}
