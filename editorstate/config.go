package editorstate

// Config holds the small set of knobs the teacher hard-codes as
// constants in editor/config.go, exposed as fields here so both
// production wiring and tests can vary them per case.
type Config struct {
	TabWidth        int
	LineWrapEnabled bool
	GutterWidth     int
	// ScrollThreshold is the number of lines of context EnsureVisible
	// tries to keep between the cursor and the viewport edge.
	ScrollThreshold int
	// WrapAroundAtBufferEdges controls whether MoveLeft at column 0
	// crosses to the end of the previous line and MoveRight at line end
	// crosses to the start of the next one.
	WrapAroundAtBufferEdges bool
	// PositionHistoryCapacity bounds editorstate.PositionHistory.
	PositionHistoryCapacity int
}

func DefaultConfig() Config {
	return Config{
		TabWidth:                4,
		LineWrapEnabled:         true,
		GutterWidth:             4,
		ScrollThreshold:         2,
		WrapAroundAtBufferEdges: true,
		PositionHistoryCapacity: 64,
	}
}
