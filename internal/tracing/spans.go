package tracing

// Span attribute keys.
const (
	AttrHistoryGUID  = "history.guid"
	AttrHistoryName  = "history.name"
	AttrGridWidth    = "grid.width"
	AttrGridHeight   = "grid.height"
	AttrDiffCount    = "history.diffs"
	AttrChangeCount  = "history.changes"
	AttrCursor       = "history.cursor"
	AttrDocumentPath = "document.path"
	AttrDocumentSize = "document.bytes"

	AttrErrorMessage = "error.message"
)

// Span name prefixes for consistent naming.
const (
	SpanPrefixStore = "store."
	SpanPrefixCodec = "codec."
	SpanPrefixCLI   = "cli."
)
