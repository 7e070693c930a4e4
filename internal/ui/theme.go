package ui

import "image/color"

type Theme struct {
	AppBackground color.RGBA
	Toolbar       color.RGBA
	Canvas        color.RGBA
	Panel         color.RGBA
	PanelRow      color.RGBA
	PanelActive   color.RGBA
	Border        color.RGBA
	StatusBar     color.RGBA
	Accent        color.RGBA
	Shadow        color.RGBA
	Menu          color.RGBA
	MenuActive    color.RGBA
	SelectionBox  color.RGBA

	ToolbarHeightDp int
	StatusHeightDp  int
	PanelWidthDp    int
	PanelRowDp      int
	MenuHeightDp    int
}

func DefaultTheme() Theme {
	return Theme{
		AppBackground: color.RGBA{0xF3, 0xF5, 0xF8, 0xFF},
		Toolbar:       color.RGBA{0xF7, 0xF9, 0xFC, 0xFF},
		Canvas:        color.RGBA{0xFC, 0xFC, 0xFB, 0xFF},
		Panel:         color.RGBA{0xF7, 0xF9, 0xFC, 0xFF},
		PanelRow:      color.RGBA{0xFF, 0xFF, 0xFF, 0xFF},
		PanelActive:   color.RGBA{0xDB, 0xE6, 0xF6, 0xFF},
		Border:        color.RGBA{0xB2, 0xBF, 0xD0, 0xFF},
		StatusBar:     color.RGBA{0xEA, 0xEF, 0xF6, 0xFF},
		Accent:        color.RGBA{0x2B, 0x57, 0x9A, 0xFF},
		Shadow:        color.RGBA{0xC8, 0xCF, 0xDB, 0xFF},
		Menu:          color.RGBA{0x2E, 0x33, 0x3B, 0xFF},
		MenuActive:    color.RGBA{0x4A, 0x6E, 0xA9, 0xFF},
		SelectionBox:  color.RGBA{0x2B, 0x57, 0x9A, 0xFF},

		ToolbarHeightDp: 42,
		StatusHeightDp:  28,
		PanelWidthDp:    220,
		PanelRowDp:      34,
		MenuHeightDp:    32,
	}
}
