// ABOUTME: Draft row support for the mapping grid's add-row flow
// ABOUTME: Draft rows live only locally until the next bulk save

package grid

import (
	"github.com/google/uuid"

	"github.com/mappingdesk/skumap/internal/client"
)

// NewDraftRow creates a locally added row with a fresh UUID id. Row ids
// are opaque, so draftness is tracked explicitly by the grid rather than
// inferred from the id shape. Draft rows are removed, not reverted, when
// the user cancels before saving.
func NewDraftRow() client.MappingRow {
	return client.MappingRow{ID: uuid.NewString()}
}
