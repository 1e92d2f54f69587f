// Package ui provides shared UI constants and utilities.
package ui

// Layout constants shared by the player screen components.
const (
	// ScrollMargin is the number of verses kept visible above/below the cursor.
	ScrollMargin = 2

	// BorderHeight is the vertical space consumed by a standard panel border.
	BorderHeight = 2

	// MinWidth is the narrowest terminal the player screen renders in.
	MinWidth = 30
)
