package ports

// RowID identifies one of the labeled usage rows on the menu surface.
type RowID string

const (
	RowSession RowID = "session"
	RowWeekly  RowID = "weekly"
	RowSonnet  RowID = "sonnet"
)

// MenuSurface is the rendering host: a title field plus labeled rows.
// Adapters (terminal UI, one-shot printer) implement it so the refresh
// cycle stays host-agnostic.
type MenuSurface interface {
	SetTitle(title string)
	SetRow(id RowID, text string)
}
