package topics

import (
	"math"
	"sort"
	"strings"
)

const DefaultThreshold = 0.5

func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	u := &unionFind{parent: make([]int, n), size: make([]int, n)}
	for i := range u.parent {
		u.parent[i] = i
		u.size[i] = 1
	}
	return u
}

func (u *unionFind) find(x int) int {
	root := x
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[x] != root {
		next := u.parent[x]
		u.parent[x] = root
		x = next
	}
	return root
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.size[ra] < u.size[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	u.size[ra] += u.size[rb]
}

// Cluster groups embeddings by single linkage: any pair with cosine similarity strictly above
// threshold ends up in the same cluster. Clusters are ordered by their smallest member and
// members are ascending.
func Cluster(embeddings [][]float32, threshold float64) [][]int {
	n := len(embeddings)
	if n == 0 {
		return [][]int{}
	}
	uf := newUnionFind(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if uf.find(i) == uf.find(j) {
				continue
			}
			if Cosine(embeddings[i], embeddings[j]) > threshold {
				uf.union(i, j)
			}
		}
	}

	byRoot := map[int]int{}
	var out [][]int
	for i := 0; i < n; i++ {
		r := uf.find(i)
		idx, ok := byRoot[r]
		if !ok {
			idx = len(out)
			byRoot[r] = idx
			out = append(out, nil)
		}
		out[idx] = append(out[idx], i)
	}
	return out
}

// MergeContent joins the texts of the given members in ascending index order.
func MergeContent(texts []string, members []int) string {
	idx := append([]int(nil), members...)
	sort.Ints(idx)
	parts := make([]string, 0, len(idx))
	for _, i := range idx {
		if i >= 0 && i < len(texts) {
			parts = append(parts, texts[i])
		}
	}
	return strings.Join(parts, "\n")
}
