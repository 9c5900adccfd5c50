package algorithms

// Community represents one connected component of a partition
type Community struct {
	ID      int
	Nodes   []int64
	Labels  []string
	Size    int
	Density float64 // Edge density within community, measured on the input graph
}

// CommunityDetectionResult contains detected communities
type CommunityDetectionResult struct {
	Communities   []*Community
	Modularity    float64       // Quality measure of the partitioning on the input graph
	NodeCommunity map[int64]int // Node ID -> Community ID
	Removed       []RankedEdge  // Edges removed to reach the partition, in removal order
}

// RankedEdge holds an edge with its betweenness centrality score.
type RankedEdge struct {
	U      int64   `json:"u"`
	V      int64   `json:"v"`
	ULabel string  `json:"u_label"`
	VLabel string  `json:"v_label"`
	Score  float64 `json:"score"`
}
