package cli

import (
	"os"
	"testing"

	"github.com/agbru/saxpy/internal/ui"
)

// TestMain pins the theme so output assertions see no escape codes.
func TestMain(m *testing.M) {
	ui.SetCurrentTheme(ui.NoColorTheme)
	os.Exit(m.Run())
}
