package graph

// Statement is one parameterized Cypher query.
type Statement struct {
	Cypher string
	Params map[string]any
}
