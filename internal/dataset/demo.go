package dataset

import "github.com/scholarnet/kgraph/internal/graph"

// Demo returns the built-in sample graph: five scholars, five papers, five
// keywords and three departments joined by twenty links.
func Demo() *graph.Graph {
	return graph.New(DemoNodes(), DemoLinks())
}

// DemoNodes returns the sample nodes.
func DemoNodes() []graph.Node {
	return []graph.Node{
		{ID: "scholar1", Label: "Wang Bo", Kind: graph.KindScholar, Weight: 20},
		{ID: "scholar2", Label: "Li Ming", Kind: graph.KindScholar, Weight: 18},
		{ID: "scholar3", Label: "Zhang Hua", Kind: graph.KindScholar, Weight: 22},
		{ID: "scholar4", Label: "Chen Wei", Kind: graph.KindScholar, Weight: 16},
		{ID: "scholar5", Label: "Liu Qiang", Kind: graph.KindScholar, Weight: 19},

		{ID: "paper1", Label: "Deep Learning Algorithms", Kind: graph.KindPaper, Weight: 15},
		{ID: "paper2", Label: "5G Communication Technology", Kind: graph.KindPaper, Weight: 14},
		{ID: "paper3", Label: "Robot Control Systems", Kind: graph.KindPaper, Weight: 16},
		{ID: "paper4", Label: "Image Recognition", Kind: graph.KindPaper, Weight: 13},
		{ID: "paper5", Label: "Natural Language Processing", Kind: graph.KindPaper, Weight: 17},

		{ID: "keyword1", Label: "Artificial Intelligence", Kind: graph.KindKeyword, Weight: 25},
		{ID: "keyword2", Label: "Machine Learning", Kind: graph.KindKeyword, Weight: 23},
		{ID: "keyword3", Label: "Deep Learning", Kind: graph.KindKeyword, Weight: 21},
		{ID: "keyword4", Label: "Computer Vision", Kind: graph.KindKeyword, Weight: 19},
		{ID: "keyword5", Label: "5G", Kind: graph.KindKeyword, Weight: 18},

		{ID: "dept1", Label: "School of Computer Science", Kind: graph.KindDepartment, Weight: 30},
		{ID: "dept2", Label: "School of Information and Electronics", Kind: graph.KindDepartment, Weight: 28},
		{ID: "dept3", Label: "School of Mechanical Engineering", Kind: graph.KindDepartment, Weight: 26},
	}
}

// DemoLinks returns the sample links.
func DemoLinks() []graph.Link {
	const (
		collab  = graph.LinkCollaboration
		author  = graph.LinkAuthorship
		cites   = graph.LinkCitation
		keyword = graph.LinkKeywordAssociation
	)
	return []graph.Link{
		{Source: "scholar1", Target: "paper1", Strength: 0.8, Kind: author},
		{Source: "scholar1", Target: "paper4", Strength: 0.7, Kind: author},
		{Source: "scholar2", Target: "paper2", Strength: 0.9, Kind: author},
		{Source: "scholar3", Target: "paper3", Strength: 0.8, Kind: author},
		{Source: "scholar4", Target: "paper5", Strength: 0.7, Kind: author},

		{Source: "scholar1", Target: "dept1", Strength: 1.0, Kind: collab},
		{Source: "scholar2", Target: "dept2", Strength: 1.0, Kind: collab},
		{Source: "scholar3", Target: "dept3", Strength: 1.0, Kind: collab},
		{Source: "scholar4", Target: "dept1", Strength: 1.0, Kind: collab},
		{Source: "scholar5", Target: "dept1", Strength: 1.0, Kind: collab},

		{Source: "paper1", Target: "keyword1", Strength: 0.9, Kind: keyword},
		{Source: "paper1", Target: "keyword2", Strength: 0.8, Kind: keyword},
		{Source: "paper1", Target: "keyword3", Strength: 0.9, Kind: keyword},
		{Source: "paper4", Target: "keyword4", Strength: 0.8, Kind: keyword},
		{Source: "paper2", Target: "keyword5", Strength: 0.9, Kind: keyword},

		{Source: "scholar1", Target: "scholar4", Strength: 0.6, Kind: collab},
		{Source: "scholar1", Target: "scholar5", Strength: 0.5, Kind: collab},
		{Source: "scholar2", Target: "scholar3", Strength: 0.4, Kind: collab},

		{Source: "paper1", Target: "paper4", Strength: 0.3, Kind: cites},
		{Source: "paper2", Target: "paper3", Strength: 0.2, Kind: cites},
	}
}
