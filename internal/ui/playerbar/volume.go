package playerbar

import (
	"fmt"

	"github.com/llehouerou/tilawa/internal/icons"
)

// RenderVolumeCompact renders the volume indicator, e.g. "vol  80%".
func RenderVolumeCompact(volume int, muted bool) string {
	icon := icons.Volume()
	if muted {
		icon = icons.VolumeMute()
	}
	return progressTimeStyle().Render(fmt.Sprintf("%s %3d%%", icon, volume))
}
