package ui

import (
	"strconv"

	"slate/pkg/slate"
)

// LayerRow is one display row of the layer panel. Rows run top to
// bottom, which is the reverse of storage order (storage index 0 is
// the bottom of the z-stack).
type LayerRow struct {
	LayerID      string
	Name         string
	StorageIndex int
	Visible      bool
	Active       bool
	CanMoveUp    bool
	CanMoveDown  bool
	CanDelete    bool
}

// LayerRows builds the panel model from the scene's layer list.
// Move buttons disappear at the respective boundary and delete is
// withheld while only one layer remains.
func LayerRows(layers []slate.Layer, activeID string) []LayerRow {
	n := len(layers)
	rows := make([]LayerRow, 0, n)
	for i := n - 1; i >= 0; i-- {
		l := layers[i]
		rows = append(rows, LayerRow{
			LayerID:      l.ID,
			Name:         l.Name,
			StorageIndex: i,
			Visible:      l.Visible,
			Active:       l.ID == activeID,
			CanMoveUp:    i < n-1,
			CanMoveDown:  i > 0,
			CanDelete:    n > 1,
		})
	}
	return rows
}

// NextLayerName numbers new layers past the highest existing default
// name.
func NextLayerName(layers []slate.Layer) string {
	return "Layer " + strconv.Itoa(len(layers)+1)
}
