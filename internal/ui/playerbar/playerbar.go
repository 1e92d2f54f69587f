package playerbar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/tilawa/internal/icons"
	"github.com/llehouerou/tilawa/internal/playback"
	"github.com/llehouerou/tilawa/internal/ui/render"
)

// State holds everything needed to render the player bar.
type State struct {
	SurahName   string
	Surah       int
	Verse       int
	TotalVerses int
	Playing     bool
	Loading     bool
	Errored     bool
	Voice       string
	Mode        playback.Mode
	RepeatCount int
	RetryCount  int
	Speed       float64
	Volume      int
	Muted       bool
	Position    time.Duration
	Duration    time.Duration
}

// Height returns the total height of the player bar.
func Height() int {
	return 3 // top border + content + bottom border
}

// NewState builds a State from a session snapshot.
func NewState(snap playback.Snapshot, surahName string, totalVerses int) State {
	return State{
		SurahName:   surahName,
		Surah:       snap.CollectionID,
		Verse:       snap.CurrentNumber,
		TotalVerses: totalVerses,
		Playing:     snap.IsPlaying,
		Loading:     snap.IsLoading,
		Errored:     snap.LoadState == playback.StateErrored,
		Voice:       snap.Voice,
		Mode:        snap.Mode,
		RepeatCount: snap.RepeatCount,
		RetryCount:  snap.RetryCount,
		Speed:       snap.Speed,
		Volume:      snap.Volume,
		Muted:       snap.Muted,
		Position:    snap.Position,
		Duration:    snap.Duration,
	}
}

// Render returns the player bar for the given width.
func Render(s State, width int) string {
	innerWidth := max(width-6, 0)

	status := icons.Pause()
	switch {
	case s.Loading:
		status = icons.Loading()
	case s.Playing:
		status = icons.Play()
	}

	title := s.SurahName
	if title == "" {
		title = "Surah " + strconv.Itoa(s.Surah)
	}
	verse := fmt.Sprintf("%d:%d", s.Surah, s.Verse)
	if s.TotalVerses > 0 {
		verse = fmt.Sprintf("%d:%d/%d", s.Surah, s.Verse, s.TotalVerses)
	}

	var infoParts []string
	mode := icons.Mode(s.Mode.String())
	if s.Mode == playback.ModeRepeat && s.RepeatCount > 0 {
		mode += " ×" + strconv.Itoa(s.RepeatCount)
	}
	infoParts = append(infoParts, mode)
	if s.Voice != "" {
		infoParts = append(infoParts, icons.FormatReciter(s.Voice))
	}
	if s.Speed != 0 && s.Speed != 1 {
		infoParts = append(infoParts, strconv.FormatFloat(s.Speed, 'f', -1, 64)+"x")
	}
	info := strings.Join(infoParts, " · ")

	var right string
	switch {
	case s.Loading && s.RetryCount > 0:
		right = statusStyle().Render(fmt.Sprintf("retry %d", s.RetryCount))
	case s.Loading:
		right = statusStyle().Render("loading")
	case s.Errored:
		right = statusStyle().Render("error")
	default:
		right = progressTimeStyle().Render(fmt.Sprintf("%s / %s", formatDuration(s.Position), formatDuration(s.Duration)))
	}
	volume := RenderVolumeCompact(s.Volume, s.Muted)

	separator := "   "
	sepWidth := lipgloss.Width(separator)
	fixed := lipgloss.Width(status+"  ") + lipgloss.Width(verse) + lipgloss.Width(right) +
		lipgloss.Width(volume) + sepWidth*4
	minBarWidth := 10
	available := innerWidth - fixed - minBarWidth

	var styledTitle, styledInfo string
	var used int
	titleWidth := lipgloss.Width(title)
	infoWidth := lipgloss.Width(info)
	switch {
	case titleWidth+sepWidth+infoWidth <= available:
		styledTitle = titleStyle().Render(title)
		styledInfo = metaStyle().Render(info)
		used = titleWidth + sepWidth + infoWidth
	case titleWidth+sepWidth < available:
		maxInfo := available - titleWidth - sepWidth
		styledTitle = titleStyle().Render(title)
		styledInfo = metaStyle().Render(render.TruncateEllipsis(info, maxInfo))
		used = titleWidth + sepWidth + lipgloss.Width(render.TruncateEllipsis(info, maxInfo))
	default:
		maxTitle := max(available, 6)
		t := render.TruncateEllipsis(title, maxTitle)
		styledTitle = titleStyle().Render(t)
		used = lipgloss.Width(t)
	}

	barWidth := max(innerWidth-fixed-used, 5)
	var ratio float64
	if s.Duration > 0 {
		ratio = float64(s.Position) / float64(s.Duration)
	}
	filled := min(int(float64(barWidth)*ratio), barWidth)
	bar := progressBarFilled().Render(strings.Repeat("━", filled)) +
		progressBarEmpty().Render(strings.Repeat("─", barWidth-filled))

	// Al-Ikhlaas   112:2/4   [>>] · husary   ▶  ━━━───   0:03 / 0:08   vol  80%
	var content strings.Builder
	content.WriteString(styledTitle)
	content.WriteString(separator)
	content.WriteString(metaStyle().Render(verse))
	if styledInfo != "" {
		content.WriteString(separator)
		content.WriteString(styledInfo)
	}
	content.WriteString(separator)
	content.WriteString(status)
	content.WriteString("  ")
	content.WriteString(bar)
	content.WriteString(separator)
	content.WriteString(right)
	content.WriteString(separator)
	content.WriteString(volume)

	return barStyle.Padding(0, 2).Width(max(width-2, 0)).Render(content.String())
}

func formatDuration(d time.Duration) string {
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
