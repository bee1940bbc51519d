package smoketest

// The rubric the tool scores against. Must match the server's configured
// criteria or submits will be rejected as unknown.
var rubric = []struct {
	ID  string
	Max int
}{
	{ID: "innovation", Max: 20},
	{ID: "technical", Max: 30},
	{ID: "presentation", Max: 25},
	{ID: "usability", Max: 25},
}

// ballotCategory is the award the tool votes for.
const ballotCategory = "crowd_favorite"
